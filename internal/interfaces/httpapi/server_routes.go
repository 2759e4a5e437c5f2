package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/{game}/leagues", handler.ListLeaguesByGame)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{game}/{phase}", handler.RawMatches)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/preferences", RequireAuth(verifier, http.HandlerFunc(handler.GetPreferences)))
	mux.Handle("PUT /v1/preferences", RequireAuth(verifier, http.HandlerFunc(handler.SavePreferences)))
}

func registerSecretRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	guard := func(next http.HandlerFunc) http.Handler {
		return RequireSharedSecret(cfg.SweepSecretHeader, cfg.SweepSecret, next)
	}
	mux.Handle("POST /v1/notifications/sweep", guard(handler.RunSweep))
	mux.Handle("GET /v1/notifications/sweep", guard(handler.RunSweep))
	mux.Handle("POST /v1/emails", guard(handler.SendEmail))
}
