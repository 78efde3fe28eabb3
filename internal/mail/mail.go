package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/isdelr/taskhub-be/internal/config"
)

// Message is a single outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the Sender selected by cfg.Provider.
func New(ctx context.Context, cfg config.EmailConfig) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return NewLogSender(), nil
	case "smtp":
		if cfg.SMTPHost == "" || cfg.From == "" {
			return nil, fmt.Errorf("smtp email provider requires SMTP_HOST and EMAIL_FROM")
		}
		return NewSMTPSender(cfg), nil
	case "ses":
		if cfg.From == "" {
			return nil, fmt.Errorf("ses email provider requires EMAIL_FROM")
		}
		return NewSESSender(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}
