package httpapi

import (
	"bytes"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

// recipients accepts either "a@x" or ["a@x", "b@x"].
type recipients []string

func (r *recipients) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []string
		if err := sonic.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*r = items
		return nil
	}
	var single string
	if err := sonic.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*r = recipients{single}
	return nil
}

type sendEmailRequest struct {
	To      recipients `json:"to" validate:"max=50"`
	Subject string     `json:"subject" validate:"max=998"`
	HTML    string     `json:"html"`
	From    string     `json:"from" validate:"max=320"`
}

type sendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "SendEmail")
	defer span.End()

	var req sendEmailRequest
	if err := h.decodeBody(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	receipt, err := h.emails.Send(ctx, usecase.SendEmailInput{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
		From:    req.From,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "send email failed", "recipients", len(req.To), "error", err)
		writeFailure(ctx, w, "Failed to send email", err, nil)
		return
	}

	writeJSON(ctx, w, http.StatusOK, sendEmailResponse{
		Success: true,
		Message: "Email sent",
		ID:      receipt.ID,
	})
}
