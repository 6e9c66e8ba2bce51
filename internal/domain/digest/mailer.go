package digest

import "context"

// Message is one outgoing digest email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer defines the interface for sending digest emails.
// Implemented by the SendGrid client in the infrastructure layer.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
