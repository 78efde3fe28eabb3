package mail

import (
	"bytes"
	"html/template"
)

const PasswordResetSubject = "Password recovery"

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<p>Hello,</p>
<p>You asked to reset your password. Click the link below to choose a new one:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request this change, you can ignore this email.</p>
`))

// PasswordResetMessage builds the recovery email carrying link.
func PasswordResetMessage(to, link string) (Message, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: PasswordResetSubject, HTML: buf.String()}, nil
}
