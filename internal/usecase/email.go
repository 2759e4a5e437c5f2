package usecase

import "context"

// Email is one outbound message for the email sender.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

type EmailReceipt struct {
	ID string
}

type EmailSender interface {
	Send(ctx context.Context, email Email) (EmailReceipt, error)
}
