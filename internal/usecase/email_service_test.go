package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

func TestEmailService_Validation(t *testing.T) {
	t.Parallel()

	svc := NewEmailService(&fakeSender{}, "notifications@notifesport.fr", logging.NewNop())
	cases := []struct {
		name  string
		input SendEmailInput
		want  string
	}{
		{name: "missing recipient", input: SendEmailInput{Subject: "s", HTML: "<p>x</p>"}, want: "recipient is required"},
		{name: "blank recipient", input: SendEmailInput{To: []string{" "}, Subject: "s", HTML: "<p>x</p>"}, want: "recipient is required"},
		{name: "bad recipient", input: SendEmailInput{To: []string{"not-an-address"}, Subject: "s", HTML: "<p>x</p>"}, want: "invalid recipient"},
		{name: "missing subject", input: SendEmailInput{To: []string{"a@example.com"}, HTML: "<p>x</p>"}, want: "subject is required"},
		{name: "missing html", input: SendEmailInput{To: []string{"a@example.com"}, Subject: "s"}, want: "html content is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), tc.input)
			if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEmailService_DefaultFrom(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	svc := NewEmailService(sender, "notifications@notifesport.fr", logging.NewNop())

	receipt, err := svc.Send(context.Background(), SendEmailInput{To: []string{"a@example.com"}, Subject: "Hi", HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.ID != "msg-a@example.com" || sender.sent[0].From != "notifications@notifesport.fr" {
		t.Fatalf("unexpected send: %+v %+v", receipt, sender.sent)
	}
}

func TestEmailService_SenderFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failFor: map[string]error{"a@example.com": errors.New("422")}}
	svc := NewEmailService(sender, "", logging.NewNop())
	if _, err := svc.Send(context.Background(), SendEmailInput{To: []string{"a@example.com"}, Subject: "Hi", HTML: "x"}); err == nil {
		t.Fatalf("expected sender error")
	}
}
