package mail

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogSender writes messages to the log instead of delivering them. Used in development.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.HTML).
		Msg("Email not delivered (log provider)")
	return nil
}
