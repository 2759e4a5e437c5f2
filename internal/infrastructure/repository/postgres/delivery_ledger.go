package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esport-notifier/internal/domain/notification"
	qb "github.com/riskibarqy/esport-notifier/internal/platform/querybuilder"
)

const defaultClaimTTL = 10 * time.Minute

// DeliveryLedger keeps one row per idempotency key in notification_deliveries.
type DeliveryLedger struct {
	db       *sqlx.DB
	claimTTL time.Duration
	now      func() time.Time
}

// NewDeliveryLedger builds the ledger. A pending claim older than claimTTL is
// treated as abandoned and may be claimed again.
func NewDeliveryLedger(db *sqlx.DB, claimTTL time.Duration) *DeliveryLedger {
	if claimTTL <= 0 {
		claimTTL = defaultClaimTTL
	}
	return &DeliveryLedger{db: db, claimTTL: claimTTL, now: time.Now}
}

func (l *DeliveryLedger) Claim(ctx context.Context, delivery notification.Delivery) (bool, error) {
	query, args, err := qb.InsertModel("notification_deliveries", deliveryInsertModel{
		Key:         delivery.Key,
		MatchID:     delivery.MatchID,
		UserID:      delivery.UserID,
		Email:       delivery.Email,
		ScheduledAt: delivery.ScheduledAt.UTC(),
		Status:      string(notification.DeliveryPending),
		Attempts:    1,
		UpdatedAt:   l.now().UTC(),
	}, claimConflictSuffix(l.claimTTL))
	if err != nil {
		return false, fmt.Errorf("build claim delivery query: %w", err)
	}

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim delivery %s: %w", delivery.Key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim delivery rows affected: %w", err)
	}
	return affected > 0, nil
}

func claimConflictSuffix(ttl time.Duration) string {
	return fmt.Sprintf(`ON CONFLICT (idempotency_key)
DO UPDATE SET
    status = EXCLUDED.status,
    email = EXCLUDED.email,
    attempts = notification_deliveries.attempts + 1,
    last_error = NULL,
    updated_at = EXCLUDED.updated_at
WHERE notification_deliveries.status = 'failed'
   OR (notification_deliveries.status = 'pending'
       AND notification_deliveries.updated_at < EXCLUDED.updated_at - make_interval(secs => %d))`, int64(ttl/time.Second))
}

// MarkSent records the provider message id. A row already sent keeps its
// original id and timestamp.
func (l *DeliveryLedger) MarkSent(ctx context.Context, key, messageID string) error {
	query, args, err := markSentQuery(key, messageID, l.now().UTC())
	if err != nil {
		return fmt.Errorf("build mark delivery sent query: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark delivery %s sent: %w", key, err)
	}
	return nil
}

func markSentQuery(key, messageID string, at time.Time) (string, []any, error) {
	return qb.Update("notification_deliveries").
		Set("status", string(notification.DeliverySent)).
		Set("message_id", strings.TrimSpace(messageID)).
		Set("last_error", nil).
		Set("updated_at", at).
		Where(
			qb.Eq("idempotency_key", key),
			qb.Expr("status <> ?", string(notification.DeliverySent)),
		).
		ToSQL()
}

// Release marks a pending claim failed so a later sweep can retry it.
// A sent row is never downgraded.
func (l *DeliveryLedger) Release(ctx context.Context, key, reason string) error {
	query, args, err := qb.Update("notification_deliveries").
		Set("status", string(notification.DeliveryFailed)).
		Set("last_error", truncateReason(reason)).
		Set("updated_at", l.now().UTC()).
		Where(
			qb.Eq("idempotency_key", key),
			qb.Eq("status", string(notification.DeliveryPending)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release delivery query: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("release delivery %s: %w", key, err)
	}
	return nil
}

// Get loads one ledger row; used by operators and tests.
func (l *DeliveryLedger) Get(ctx context.Context, key string) (notification.Delivery, bool, error) {
	query, args, err := qb.Select(
		"idempotency_key", "match_id", "user_id", "email", "scheduled_at",
		"status", "attempts", "COALESCE(message_id, '') AS message_id",
		"COALESCE(last_error, '') AS last_error", "updated_at",
	).
		From("notification_deliveries").
		Where(qb.Eq("idempotency_key", key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return notification.Delivery{}, false, fmt.Errorf("build get delivery query: %w", err)
	}

	var row deliveryRow
	if err := l.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return notification.Delivery{}, false, nil
		}
		return notification.Delivery{}, false, fmt.Errorf("get delivery: %w", err)
	}
	return notification.Delivery{
		Key:         row.Key,
		MatchID:     row.MatchID,
		UserID:      row.UserID,
		Email:       row.Email,
		ScheduledAt: row.ScheduledAt,
		Status:      notification.DeliveryStatus(row.Status),
		Attempts:    row.Attempts,
		MessageID:   row.MessageID,
		LastError:   row.LastError,
		UpdatedAt:   row.UpdatedAt,
	}, true, nil
}

var _ notification.Ledger = (*DeliveryLedger)(nil)
