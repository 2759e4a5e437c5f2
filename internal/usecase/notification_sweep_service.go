package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/platform/id"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// JobQueue schedules a delayed HTTP callback, e.g. the next sweep.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(context.Context, string, any, time.Duration, string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type NotificationSweepConfig struct {
	Games   []match.Game
	Phases  []match.Phase
	Horizon time.Duration
	Timeout time.Duration
	// NextSweepDelay > 0 enqueues the following sweep on the job queue.
	NextSweepDelay time.Duration
	NextSweepPath  string
}

// SweepResult is the reply of one reminder sweep.
type SweepResult struct {
	RunID             string   `json:"runId"`
	Message           string   `json:"message"`
	MatchCount        int      `json:"matchCount"`
	NotificationCount int      `json:"notificationCount"`
	AttemptCount      int      `json:"attemptCount"`
	SkippedCount      int      `json:"skippedCount"`
	FailedCount       int      `json:"failedCount"`
	PartialErrors     []string `json:"partialErrors,omitempty"`
}

type NotificationSweepService struct {
	aggregator  *MatchAggregator
	resolver    *NotificationResolver
	dispatcher  *NotificationDispatcher
	queue       JobQueue
	ids         id.Generator
	credentials func() []string
	cfg         NotificationSweepConfig
	metrics     NotificationMetrics
	logger      *logging.Logger
	now         func() time.Time
}

var sweepDedupUnsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewNotificationSweepService(
	aggregator *MatchAggregator,
	resolver *NotificationResolver,
	dispatcher *NotificationDispatcher,
	queue JobQueue,
	ids id.Generator,
	credentials func() []string,
	cfg NotificationSweepConfig,
	metrics NotificationMetrics,
	logger *logging.Logger,
) *NotificationSweepService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if credentials == nil {
		credentials = func() []string { return nil }
	}
	if len(cfg.Games) == 0 {
		cfg.Games = match.AllGames()
	}
	if len(cfg.Phases) == 0 {
		cfg.Phases = []match.Phase{match.PhaseRunning, match.PhaseUpcoming}
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 5 * time.Minute
	}
	if cfg.NextSweepPath == "" {
		cfg.NextSweepPath = "/v1/notifications/sweep"
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationSweepService{
		aggregator:  aggregator,
		resolver:    resolver,
		dispatcher:  dispatcher,
		queue:       queue,
		ids:         ids,
		credentials: credentials,
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one sweep: aggregate, select imminent matches, resolve
// subscribers and dispatch reminders.
func (s *NotificationSweepService) Run(ctx context.Context) (result SweepResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationSweepService.Run")
	defer func() { endSpan(span, err) }()

	started := s.now()
	now := started.UTC()
	logger := s.logger
	defer func() {
		s.metrics.ObserveSweep(result, err, s.now().Sub(started))
	}()
	// Failed sweeps still enqueue the next slot; otherwise an outage longer
	// than the queue's retry budget ends the QStash loop.
	defer func() { s.scheduleNext(ctx, logger, now) }()

	if missing := s.credentials(); len(missing) > 0 {
		return SweepResult{}, fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return SweepResult{}, fmt.Errorf("generate sweep run id: %w", err)
	}
	result.RunID = runID
	logger = s.logger.With("run_id", runID)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	aggregate, err := s.aggregator.Aggregate(ctx, Requests(s.cfg.Games, s.cfg.Phases))
	result.PartialErrors = aggregate.PartialErrors()
	if err != nil {
		logger.ErrorContext(ctx, "sweep aggregation failed", "error", err, "partial_errors", result.PartialErrors)
		return result, fmt.Errorf("aggregate matches: %w", err)
	}

	if len(aggregate.Matches) == 0 {
		result.Message = "No matches to notify"
		return result, nil
	}

	resolved, err := s.resolver.Resolve(ctx, aggregate.Matches, now, s.cfg.Horizon)
	if err != nil {
		return result, fmt.Errorf("resolve subscribers: %w", err)
	}
	result.MatchCount = len(resolved.Imminent)
	result.PartialErrors = append(result.PartialErrors, resolved.LookupErrors...)
	if len(resolved.Imminent) == 0 {
		result.Message = fmt.Sprintf("No matches starting in the next %s", humanDuration(s.cfg.Horizon))
		return result, nil
	}

	dispatched, err := s.dispatcher.Dispatch(ctx, resolved.Candidates)
	if err != nil {
		return result, fmt.Errorf("dispatch reminders: %w", err)
	}
	result.NotificationCount = dispatched.Sent
	result.AttemptCount = dispatched.Attempted
	result.SkippedCount = dispatched.Skipped
	result.FailedCount = dispatched.Failed
	result.Message = "Notifications processed successfully"

	span.SetAttributes(
		attribute.Int("sweep.matches", result.MatchCount),
		attribute.Int("sweep.notifications", result.NotificationCount),
	)
	logger.InfoContext(ctx, "sweep finished",
		"match_count", result.MatchCount,
		"notification_count", result.NotificationCount,
		"attempt_count", result.AttemptCount,
		"skipped_count", result.SkippedCount,
		"partial_errors", len(result.PartialErrors),
	)
	return result, nil
}

// scheduleNext enqueues the following sweep once per slot; the dedup id
// collapses duplicate triggers for the same slot.
func (s *NotificationSweepService) scheduleNext(ctx context.Context, logger *logging.Logger, now time.Time) {
	if s.cfg.NextSweepDelay <= 0 {
		return
	}
	next := now.Add(s.cfg.NextSweepDelay)
	dedupID := sweepDedupKey("sweep", next, s.cfg.NextSweepDelay)
	payload := map[string]any{"scheduled_for": next.Format(time.RFC3339)}
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), s.cfg.NextSweepPath, payload, s.cfg.NextSweepDelay, dedupID); err != nil {
		logger.WarnContext(ctx, "enqueue next sweep failed", "dedup_id", dedupID, "error", err)
	}
}

func sweepDedupKey(prefix string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sweepDedupUnsafeChars.ReplaceAllString(prefix, "-") + "-" + slot
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return d.String()
}
