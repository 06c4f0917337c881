package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer sends transactional email. Delivery is best effort for callers.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail %q: no recipients", msg.Subject)
	}
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	log.Printf("[INFO] mail sent id=%s to=%v subject=%q", sent.Id, msg.To, msg.Subject)
	return nil
}

// LogMailer only logs. Used when RESEND_API_KEY is not configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("[INFO] mail (not sent, no provider) to=%v subject=%q", msg.To, msg.Subject)
	return nil
}
