package mail

import (
	"context"
	"log"

	"emailsummary/internal/domain/digest"
)

// LogMailer only logs what it would send. It stands in when no SendGrid key
// is configured, e.g. in development.
type LogMailer struct{}

var _ digest.Mailer = LogMailer{}

func (LogMailer) Send(ctx context.Context, msg digest.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("Mail: (not sent) %q to %s, %d bytes html, %d bytes text", msg.Subject, msg.To, len(msg.HTML), len(msg.Text))
	return nil
}
