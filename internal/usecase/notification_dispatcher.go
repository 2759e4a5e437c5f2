package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/esport-notifier/internal/domain/notification"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type NotificationDispatcherConfig struct {
	FromAddress string
	// MaxConcurrentSends bounds in-flight sends; 1 sends sequentially in candidate order.
	MaxConcurrentSends int
}

// DispatchResult tallies one dispatch. Attempted counts send calls; Skipped
// counts candidates already delivered or in flight elsewhere.
type DispatchResult struct {
	Sent      int
	Attempted int
	Skipped   int
	Failed    int
}

type NotificationDispatcher struct {
	sender   EmailSender
	ledger   notification.Ledger
	renderer *ReminderRenderer
	cfg      NotificationDispatcherConfig
	metrics  NotificationMetrics
	logger   *logging.Logger
	now      func() time.Time
}

func NewNotificationDispatcher(
	sender EmailSender,
	ledger notification.Ledger,
	renderer *ReminderRenderer,
	cfg NotificationDispatcherConfig,
	metrics NotificationMetrics,
	logger *logging.Logger,
) *NotificationDispatcher {
	if renderer == nil {
		renderer = NewReminderRenderer(ReminderRendererConfig{})
	}
	if cfg.MaxConcurrentSends < 1 {
		cfg.MaxConcurrentSends = 1
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationDispatcher{
		sender:   sender,
		ledger:   ledger,
		renderer: renderer,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

type dispatchTally struct {
	sent      atomic.Int32
	attempted atomic.Int32
	skipped   atomic.Int32
	failed    atomic.Int32
}

// Dispatch sends one reminder per candidate. Failures are logged and counted,
// never retried within the same call; the ledger lets a later sweep retry them.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, candidates []notification.Candidate) (DispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationDispatcher.Dispatch")
	defer span.End()

	if d.sender == nil {
		return DispatchResult{}, fmt.Errorf("%w: email sender is not configured", ErrConfiguration)
	}

	var tally dispatchTally
	if d.cfg.MaxConcurrentSends == 1 || len(candidates) <= 1 {
		for _, candidate := range candidates {
			d.deliver(ctx, candidate, &tally)
		}
	} else {
		workers, err := ants.NewPool(d.cfg.MaxConcurrentSends)
		if err != nil {
			return DispatchResult{}, fmt.Errorf("create send pool: %w", err)
		}
		defer workers.Release()

		var wg sync.WaitGroup
		for _, candidate := range candidates {
			wg.Add(1)
			if err := workers.Submit(func() {
				defer wg.Done()
				d.deliver(ctx, candidate, &tally)
			}); err != nil {
				wg.Done()
				d.logger.ErrorContext(ctx, "submit send task failed", "user_id", candidate.UserID, "match_id", candidate.Match.ID, "error", err)
				tally.failed.Add(1)
			}
		}
		wg.Wait()
	}

	result := DispatchResult{
		Sent:      int(tally.sent.Load()),
		Attempted: int(tally.attempted.Load()),
		Skipped:   int(tally.skipped.Load()),
		Failed:    int(tally.failed.Load()),
	}
	span.SetAttributes(
		attribute.Int("dispatch.sent", result.Sent),
		attribute.Int("dispatch.attempted", result.Attempted),
		attribute.Int("dispatch.skipped", result.Skipped),
	)
	return result, nil
}

func (d *NotificationDispatcher) deliver(ctx context.Context, candidate notification.Candidate, tally *dispatchTally) {
	logger := d.logger.With("match_id", candidate.Match.ID, "user_id", candidate.UserID)

	rendered, err := d.renderer.Render(candidate.Match)
	if err != nil {
		logger.ErrorContext(ctx, "render reminder failed", "error", err)
		tally.failed.Add(1)
		d.metrics.ObserveDelivery(DeliveryOutcomeFailed)
		return
	}

	delivery := notification.NewDelivery(candidate, d.now().UTC())
	tracked := d.ledger != nil
	if tracked {
		claimed, claimErr := d.ledger.Claim(ctx, delivery)
		switch {
		case claimErr != nil:
			// Ledger outage must not silence reminders; send untracked.
			logger.WarnContext(ctx, "delivery ledger unavailable, sending without idempotency", "key", delivery.Key, "error", claimErr)
			tracked = false
		case !claimed:
			tally.skipped.Add(1)
			d.metrics.ObserveDelivery(DeliveryOutcomeSkipped)
			logger.DebugContext(ctx, "reminder already handled", "key", delivery.Key)
			return
		}
	}

	tally.attempted.Add(1)
	receipt, err := d.sender.Send(ctx, Email{
		From:    d.cfg.FromAddress,
		To:      []string{candidate.Email},
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
	})
	if err != nil {
		tally.failed.Add(1)
		d.metrics.ObserveDelivery(DeliveryOutcomeFailed)
		logger.ErrorContext(ctx, "send reminder failed", "error", err)
		if tracked {
			if releaseErr := d.ledger.Release(context.WithoutCancel(ctx), delivery.Key, err.Error()); releaseErr != nil {
				logger.WarnContext(ctx, "release delivery claim failed", "key", delivery.Key, "error", releaseErr)
			}
		}
		return
	}

	tally.sent.Add(1)
	d.metrics.ObserveDelivery(DeliveryOutcomeSent)
	logger.InfoContext(ctx, "reminder sent", "message_id", receipt.ID)
	if tracked {
		if markErr := d.ledger.MarkSent(context.WithoutCancel(ctx), delivery.Key, receipt.ID); markErr != nil {
			logger.WarnContext(ctx, "mark delivery sent failed", "key", delivery.Key, "error", markErr)
		}
	}
}
