package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/mailer"
)

// AddressBook resolves a user's email address. The platform's account
// service implements it; this subsystem only consumes the contract.
type AddressBook interface {
	EmailFor(ctx context.Context, userID string) (string, error)
}

// EmailFallback delivers urgent notifications by transactional email when
// the user has no live connection.
type EmailFallback struct {
	sender    mailer.EmailSender
	addresses AddressBook
}

// NewEmailFallback creates the email offline deliverer.
func NewEmailFallback(sender mailer.EmailSender, addresses AddressBook) (*EmailFallback, error) {
	if sender == nil {
		return nil, ErrNilEmailSender
	}
	if addresses == nil {
		return nil, ErrNilAddressBook
	}
	return &EmailFallback{sender: sender, addresses: addresses}, nil
}

// Deliver sends the notification as an email to the user's address.
func (f *EmailFallback) Deliver(ctx context.Context, n Notification) error {
	addr, err := f.addresses.EmailFor(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve email for user %s: %w", n.UserID, err)
	}

	return f.sender.SendEmail(ctx, mailer.SendEmailParams{
		SendTo:   addr,
		Subject:  n.Title,
		BodyHTML: fmt.Sprintf("<p>%s</p>", html.EscapeString(n.Message)),
		Tag:      n.Kind,
	})
}
