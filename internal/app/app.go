package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/esport-notifier/external/identity"
	"github.com/riskibarqy/esport-notifier/external/jobqueue"
	"github.com/riskibarqy/esport-notifier/external/pandascore"
	"github.com/riskibarqy/esport-notifier/external/resend"
	"github.com/riskibarqy/esport-notifier/internal/config"
	"github.com/riskibarqy/esport-notifier/internal/interfaces/httpapi"
	"github.com/riskibarqy/esport-notifier/internal/observability"
	idgen "github.com/riskibarqy/esport-notifier/internal/platform/id"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

// App holds the wired services shared by the api and scheduler binaries.
type App struct {
	Config  config.Config
	Logger  *logging.Logger
	Matches *usecase.MatchService
	Sweeps  *usecase.NotificationSweepService
	Router  http.Handler

	closers []func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	st, err := openStorage(ctx, cfg)
	if err != nil {
		closeAll(ctx, st.closers)
		return nil, err
	}

	var metrics usecase.NotificationMetrics = usecase.NewNoopMetrics()
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		prom := observability.NewNotificationMetrics()
		metrics = prom
		metricsHandler = prom.Handler()
	}

	provider := pandascore.NewClient(pandascore.ClientConfig{
		BaseURL:         cfg.PandaScoreBaseURL,
		Token:           cfg.PandaScoreToken,
		Timeout:         cfg.PandaScoreTimeout,
		MaxRetries:      cfg.PandaScoreMaxRetries,
		MaxConnsPerHost: cfg.PandaScoreMaxConns,
		Logger:          logger,
		CircuitBreaker:  cfg.PandaScoreCircuit,
	})
	sender := resend.NewClient(resend.ClientConfig{
		BaseURL:        cfg.ResendBaseURL,
		APIKey:         cfg.ResendAPIKey,
		Timeout:        cfg.ResendTimeout,
		Logger:         logger,
		CircuitBreaker: cfg.ResendCircuit,
	})

	aggregator := usecase.NewMatchAggregator(provider, usecase.MatchAggregatorConfig{
		PageSize:       cfg.PandaScorePageSize,
		MaxConcurrency: cfg.NotifyFetchConcurrency,
	}, metrics, logger)
	resolver := usecase.NewNotificationResolver(st.preferences, usecase.NotificationResolverConfig{}, logger)
	renderer := usecase.NewReminderRenderer(usecase.ReminderRendererConfig{
		SiteURL:      cfg.NotifySiteURL,
		SupportEmail: cfg.NotifySupportEmail,
		Location:     cfg.NotifyLocation,
	})
	dispatcher := usecase.NewNotificationDispatcher(sender, st.ledger, renderer, usecase.NotificationDispatcherConfig{
		FromAddress:        cfg.NotifyFromAddress,
		MaxConcurrentSends: cfg.NotifyMaxConcurrentSends,
	}, metrics, logger)

	sweepCfg := usecase.NotificationSweepConfig{
		Games:   cfg.NotifyGames,
		Phases:  cfg.NotifyPhases,
		Horizon: cfg.NotifyHorizon,
		Timeout: cfg.NotifySweepTimeout,
	}
	queue := usecase.NewNoopJobQueue()
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:        cfg.QStashBaseURL,
			Token:          cfg.QStashToken,
			TargetBaseURL:  cfg.QStashTargetBaseURL,
			Retries:        cfg.QStashRetries,
			ForwardHeader:  cfg.NotifyAPIKeyHeader,
			ForwardValue:   cfg.NotifyAPIKey,
			CircuitBreaker: cfg.QStashCircuit,
		}, logger)
		sweepCfg.NextSweepDelay = cfg.SchedulerInterval
	}
	sweeps := usecase.NewNotificationSweepService(
		aggregator,
		resolver,
		dispatcher,
		queue,
		idgen.NewUUIDGenerator(),
		cfg.MissingSweepCredentials,
		sweepCfg,
		metrics,
		logger,
	)

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		cacheTTL = -1
	}
	matches := usecase.NewMatchService(provider, aggregator, usecase.MatchServiceConfig{
		PageSize: cfg.PandaScorePageSize,
		CacheTTL: cacheTTL,
	}, logger)
	preferences := usecase.NewPreferenceService(st.preferences, st.invalidator, sender, usecase.PreferenceServiceConfig{
		FromAddress:      cfg.NotifyFromAddress,
		SendConfirmation: cfg.NotifySendConfirmation,
	}, logger)
	emails := usecase.NewEmailService(sender, cfg.EmailDefaultFrom, logger)

	// A nil *identity.Client stored in the interface would pass the nil check in RequireAuth.
	var verifier httpapi.TokenVerifier
	if cfg.IdentityBaseURL != "" {
		verifier = identity.NewClient(identity.ClientConfig{
			BaseURL:        cfg.IdentityBaseURL,
			AnonKey:        cfg.IdentityAnonKey,
			Timeout:        cfg.IdentityTimeout,
			CacheTTL:       cfg.IdentityCacheTTL,
			Logger:         logger,
			CircuitBreaker: cfg.IdentityCircuit,
		})
	}

	handler := httpapi.NewHandler(matches, sweeps, preferences, emails, logger)
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SweepSecretHeader:  cfg.NotifyAPIKeyHeader,
		SweepSecret:        cfg.NotifyAPIKey,
		Metrics:            metricsHandler,
	})

	logger.Info("app wired",
		"storage_backend", cfg.StorageBackend,
		"ledger_backend", cfg.NotifyLedgerBackend,
		"cache_enabled", cfg.CacheEnabled,
		"qstash_enabled", cfg.QStashEnabled,
		"games", len(cfg.NotifyGames),
		"pandascore_circuit", cfg.PandaScoreCircuit.String(),
		"resend_circuit", cfg.ResendCircuit.String(),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Matches: matches,
		Sweeps:  sweeps,
		Router:  router,
		closers: st.closers,
	}, nil
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.Config.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	return &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      a.Router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}, nil
}

// Close releases storage connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	return closeAll(ctx, a.closers)
}

func closeAll(ctx context.Context, closers []func(context.Context) error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
