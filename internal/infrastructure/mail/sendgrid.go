package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"emailsummary/internal/domain/digest"
)

// sender is the part of the SendGrid client the mailer uses.
type sender interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer delivers digests through the SendGrid v3 API
type SendGridMailer struct {
	client sender
	from   *sgmail.Email
}

var _ digest.Mailer = (*SendGridMailer)(nil)

// NewSendGridMailer creates a mailer sending as fromName <fromAddress>
func NewSendGridMailer(apiKey, fromAddress, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddress),
	}
}

// Send delivers one message. Any non-2xx reply is an error.
func (m *SendGridMailer) Send(ctx context.Context, msg digest.Message) error {
	to := sgmail.NewEmail("", msg.To)
	var message *sgmail.SGMailV3
	if msg.Text == "" {
		// SendGrid rejects empty content parts.
		message = sgmail.NewV3MailInit(m.from, msg.Subject, to, sgmail.NewContent("text/html", msg.HTML))
	} else {
		message = sgmail.NewSingleEmail(m.from, msg.Subject, to, msg.Text, msg.HTML)
	}

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email with status %d: %s", resp.StatusCode, resp.Body)
	}

	log.Printf("Mail: sent %q to %s (status %d)", msg.Subject, msg.To, resp.StatusCode)
	return nil
}
