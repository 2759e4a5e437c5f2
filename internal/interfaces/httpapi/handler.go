package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/domain/user"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

const maxBodyBytes = 1 << 20

type MatchReader interface {
	Games() []usecase.GameInfo
	RawMatches(ctx context.Context, rawGame, rawPhase string, page int) ([]byte, error)
	Calendar(ctx context.Context, rawGames, rawPhases []string) (usecase.CalendarResult, error)
	Leagues(ctx context.Context, rawGame string) ([]match.League, error)
}

type SweepRunner interface {
	Run(ctx context.Context) (usecase.SweepResult, error)
}

type PreferenceManager interface {
	Get(ctx context.Context, principal user.Principal) (usecase.PreferenceView, error)
	Save(ctx context.Context, principal user.Principal, input usecase.SavePreferenceInput) (usecase.PreferenceView, error)
}

type EmailSender interface {
	Send(ctx context.Context, input usecase.SendEmailInput) (usecase.EmailReceipt, error)
}

type Handler struct {
	matches     MatchReader
	sweeps      SweepRunner
	preferences PreferenceManager
	emails      EmailSender
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(
	matches MatchReader,
	sweeps SweepRunner,
	preferences PreferenceManager,
	emails EmailSender,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matches:     matches,
		sweeps:      sweeps,
		preferences: preferences,
		emails:      emails,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, payload any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := sonic.Unmarshal(body, payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload", usecase.ErrInvalidInput)
	}
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
