package httpapi

import (
	"net/http"

	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

type RouterConfig struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	SweepSecretHeader  string
	SweepSecret        string
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg)
	registerPublicMatchRoutes(mux, handler)
	registerAuthorizedRoutes(mux, handler, verifier)
	registerSecretRoutes(mux, handler, cfg)

	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, []string{cfg.SweepSecretHeader}, recoverPanic(logger, mux))))
}
