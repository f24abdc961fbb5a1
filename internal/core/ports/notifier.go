package ports

import (
	"context"

	"github.com/99minutos/users-api/internal/core/domain"
)

// EmailMessage is a single plain-text outbound email.
type EmailMessage struct {
	To       string
	Subject  string
	Body     string
	Category string
}

// MailSender delivers an email through some transport.
type MailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Notifier sends the account lifecycle emails.
type Notifier interface {
	SendWelcome(ctx context.Context, account *domain.Account) error
	NotifyAdmin(ctx context.Context, account *domain.Account) error
}
