package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ListGames")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, h.matches.Games())
}

func (h *Handler) ListLeaguesByGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ListLeaguesByGame")
	defer span.End()

	game := r.PathValue("game")
	leagues, err := h.matches.Leagues(ctx, game)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues failed", "game", game, "error", err)
		writeFailure(ctx, w, "Failed to fetch leagues", err, nil)
		return
	}

	writeJSON(ctx, w, http.StatusOK, leagues)
}

// ListMatches returns the normalized calendar; games and phases accept
// repeated or comma-separated query values.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ListMatches")
	defer span.End()

	query := r.URL.Query()
	result, err := h.matches.Calendar(ctx, query["games"], query["phases"])
	if err != nil {
		h.logger.WarnContext(ctx, "calendar failed", "error", err)
		writeFailure(ctx, w, "Failed to fetch matches", err, result.PartialErrors)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// RawMatches proxies one provider page unmodified.
func (h *Handler) RawMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "RawMatches")
	defer span.End()

	rawGame := r.PathValue("game")
	rawPhase := r.PathValue("phase")

	page := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: page must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		page = parsed
	}

	body, err := h.matches.RawMatches(ctx, rawGame, rawPhase, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch raw matches failed", "game", rawGame, "phase", rawPhase, "error", err)
		writeFailure(ctx, w, rawFailureMessage(rawGame, rawPhase), err, nil)
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}

func rawFailureMessage(rawGame, rawPhase string) string {
	label := rawGame
	if game, ok := match.ParseGame(rawGame); ok {
		label = game.DisplayName()
	}
	return fmt.Sprintf("failed to fetch %s %s matches", strings.ToLower(strings.TrimSpace(rawPhase)), label)
}
