package httpapi

import (
	"net/http"

	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

type savePreferencesRequest struct {
	Games              []string `json:"games" validate:"omitempty,max=16,dive,required,max=32"`
	Leagues            []string `json:"leagues" validate:"omitempty,max=200,dive,required,max=128"`
	EmailNotifications *bool    `json:"email_notifications"`
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "GetPreferences")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.preferences.Get(ctx, principal)
	if err != nil {
		h.logger.ErrorContext(ctx, "get preferences failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, view)
}

func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "SavePreferences")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req savePreferencesRequest
	if err := h.decodeBody(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.preferences.Save(ctx, principal, usecase.SavePreferenceInput{
		Games:              req.Games,
		Leagues:            req.Leagues,
		EmailNotifications: req.EmailNotifications,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save preferences failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, view)
}
