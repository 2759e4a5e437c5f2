package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

type SendEmailInput struct {
	To      []string
	Subject string
	HTML    string
	From    string
}

type EmailService struct {
	sender      EmailSender
	defaultFrom string
	logger      *logging.Logger
}

func NewEmailService(sender EmailSender, defaultFrom string, logger *logging.Logger) *EmailService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EmailService{sender: sender, defaultFrom: defaultFrom, logger: logger}
}

// Send validates the message and hands it to the email sender.
func (s *EmailService) Send(ctx context.Context, input SendEmailInput) (receipt EmailReceipt, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EmailService.Send")
	defer func() { endSpan(span, err) }()

	to := compactStrings(input.To)
	if len(to) == 0 {
		return EmailReceipt{}, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}
	for _, addr := range to {
		if _, err := mail.ParseAddress(addr); err != nil {
			return EmailReceipt{}, fmt.Errorf("%w: invalid recipient %q", ErrInvalidInput, addr)
		}
	}
	if strings.TrimSpace(input.Subject) == "" {
		return EmailReceipt{}, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.HTML) == "" {
		return EmailReceipt{}, fmt.Errorf("%w: html content is required", ErrInvalidInput)
	}
	if s.sender == nil {
		return EmailReceipt{}, fmt.Errorf("%w: email sender is not configured", ErrConfiguration)
	}

	from := strings.TrimSpace(input.From)
	if from == "" {
		from = s.defaultFrom
	}

	receipt, err = s.sender.Send(ctx, Email{From: from, To: to, Subject: input.Subject, HTML: input.HTML})
	if err != nil {
		s.logger.WarnContext(ctx, "send email failed", "recipients", len(to), "error", err)
		return EmailReceipt{}, fmt.Errorf("send email: %w", err)
	}
	s.logger.InfoContext(ctx, "email sent", "message_id", receipt.ID, "recipients", len(to))
	return receipt, nil
}
