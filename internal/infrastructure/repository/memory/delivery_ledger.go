package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/notification"
)

// DeliveryLedger is a process-local ledger. It only dedups within one process.
// Entries for matches that started more than claimTTL ago are dropped, since
// no later sweep can select those matches again.
type DeliveryLedger struct {
	mu         sync.Mutex
	items      map[string]notification.Delivery
	claimTTL   time.Duration
	now        func() time.Time
	lastPruned time.Time
}

func NewDeliveryLedger(claimTTL time.Duration) *DeliveryLedger {
	if claimTTL <= 0 {
		claimTTL = 10 * time.Minute
	}
	return &DeliveryLedger{
		items:    make(map[string]notification.Delivery),
		claimTTL: claimTTL,
		now:      time.Now,
	}
}

func (l *DeliveryLedger) Claim(_ context.Context, delivery notification.Delivery) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	l.pruneLocked(now)
	existing, ok := l.items[delivery.Key]
	if ok {
		switch existing.Status {
		case notification.DeliverySent:
			return false, nil
		case notification.DeliveryPending:
			if now.Sub(existing.UpdatedAt) < l.claimTTL {
				return false, nil
			}
		}
		delivery.Attempts = existing.Attempts + 1
	} else {
		delivery.Attempts = 1
	}

	delivery.Status = notification.DeliveryPending
	delivery.LastError = ""
	delivery.UpdatedAt = now
	l.items[delivery.Key] = delivery
	return true, nil
}

func (l *DeliveryLedger) MarkSent(_ context.Context, key, messageID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[key]
	if !ok {
		item = notification.Delivery{Key: key, Attempts: 1}
	}
	item.Status = notification.DeliverySent
	item.MessageID = messageID
	item.LastError = ""
	item.UpdatedAt = l.now().UTC()
	l.items[key] = item
	return nil
}

func (l *DeliveryLedger) Release(_ context.Context, key, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[key]
	if !ok || item.Status != notification.DeliveryPending {
		return nil
	}
	item.Status = notification.DeliveryFailed
	item.LastError = reason
	item.UpdatedAt = l.now().UTC()
	l.items[key] = item
	return nil
}

func (l *DeliveryLedger) Get(_ context.Context, key string) (notification.Delivery, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[key]
	return item, ok, nil
}

// pruneLocked runs at most once per claimTTL.
func (l *DeliveryLedger) pruneLocked(now time.Time) {
	if now.Sub(l.lastPruned) < l.claimTTL {
		return
	}
	l.lastPruned = now
	cutoff := now.Add(-l.claimTTL)
	for key, item := range l.items {
		if !item.ScheduledAt.IsZero() && item.ScheduledAt.Before(cutoff) {
			delete(l.items, key)
		}
	}
}

var _ notification.Ledger = (*DeliveryLedger)(nil)
