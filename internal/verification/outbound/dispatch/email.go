package dispatch

import (
	"context"

	"github.com/shandysiswandi/goverify/internal/pkg/mail"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

// EmailSender delivers verification codes over the shared mail provider.
type EmailSender struct {
	mailer mail.Mail
}

// NewEmailSender wraps a mail provider as a dispatch sender.
func NewEmailSender(mailer mail.Mail) *EmailSender {
	return &EmailSender{mailer: mailer}
}

// Send delivers one code email. The mail provider owns retries and
// connection handling.
func (e *EmailSender) Send(ctx context.Context, to, subject, htmlBody string) entity.DeliveryResult {
	err := e.mailer.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: htmlBody,
	})
	if err != nil {
		return entity.DeliveryResult{Err: err}
	}
	return entity.DeliveryResult{Success: true}
}

// Close closes the underlying mail provider.
func (e *EmailSender) Close() error {
	return e.mailer.Close()
}
