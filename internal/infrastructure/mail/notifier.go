package mail

import (
	"context"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

const DefaultAdminAddress = "admin@example.com"

const (
	categoryWelcome = "welcome"
	categoryAdmin   = "admin_notification"
)

// Notifier composes the account lifecycle emails. Admin notifications can go
// through a different sender, such as a queue.
type Notifier struct {
	sender       ports.MailSender
	adminSender  ports.MailSender
	adminAddress string
}

func NewNotifier(sender, adminSender ports.MailSender, adminAddress string) *Notifier {
	if adminSender == nil {
		adminSender = sender
	}
	if adminAddress == "" {
		adminAddress = DefaultAdminAddress
	}
	return &Notifier{sender: sender, adminSender: adminSender, adminAddress: adminAddress}
}

func (n *Notifier) SendWelcome(ctx context.Context, account *domain.Account) error {
	return n.sender.Send(ctx, ports.EmailMessage{
		To:       account.Email,
		Subject:  "Account Created",
		Body:     "Your account has been created.",
		Category: categoryWelcome,
	})
}

func (n *Notifier) NotifyAdmin(ctx context.Context, account *domain.Account) error {
	return n.adminSender.Send(ctx, ports.EmailMessage{
		To:       n.adminAddress,
		Subject:  "New User Registered",
		Body:     "A new user has registered: " + account.Email,
		Category: categoryAdmin,
	})
}
