package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/users-api/internal/core/ports"
)

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg ports.EmailMessage) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("category", msg.Category).
		Msg(msg.Body)
	return nil
}
