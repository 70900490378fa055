// Package mailer sends plain-text email through SES v2.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const charset = "UTF-8"

// SESAPI is the subset of the SES v2 client used by Mailer.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Email is one outgoing message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends from a fixed source address and copies a fixed operator address on every send.
type Mailer struct {
	client   SESAPI
	source   string
	operator string
}

// New returns a Mailer. An empty operator disables the copy.
func New(client SESAPI, source, operator string) *Mailer {
	return &Mailer{client: client, source: source, operator: operator}
}

// Send delivers email and returns the SES message id.
func (m *Mailer) Send(ctx context.Context, email Email) (string, error) {
	destination := &types.Destination{ToAddresses: []string{email.To}}
	if m.operator != "" {
		destination.CcAddresses = []string{m.operator}
	}

	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.source),
		Destination:      destination,
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(email.Body), Charset: aws.String(charset)},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
