package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/esport-notifier/internal/domain/notification"
)

const (
	keyPrefix      = "notify:delivery:"
	pendingValue   = "pending"
	sentPrefix     = "sent:"
	defaultSentTTL = 7 * 24 * time.Hour
)

// Commands is the subset of *goredis.Client the ledger needs.
type Commands interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// DeliveryLedger stores one key per reminder. A pending claim expires after
// claimTTL; a sent marker is kept for sentTTL, well past any notify horizon.
// A released (failed) delivery simply drops its key so the next sweep can claim it.
type DeliveryLedger struct {
	client   Commands
	claimTTL time.Duration
	sentTTL  time.Duration
}

func NewDeliveryLedger(client Commands, claimTTL, sentTTL time.Duration) *DeliveryLedger {
	if claimTTL <= 0 {
		claimTTL = 10 * time.Minute
	}
	if sentTTL <= 0 {
		sentTTL = defaultSentTTL
	}
	return &DeliveryLedger{client: client, claimTTL: claimTTL, sentTTL: sentTTL}
}

func (l *DeliveryLedger) Claim(ctx context.Context, delivery notification.Delivery) (bool, error) {
	ok, err := l.client.SetNX(ctx, keyPrefix+delivery.Key, pendingValue, l.claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim delivery %s: %w", delivery.Key, err)
	}
	return ok, nil
}

func (l *DeliveryLedger) MarkSent(ctx context.Context, key, messageID string) error {
	if err := l.client.Set(ctx, keyPrefix+key, sentPrefix+strings.TrimSpace(messageID), l.sentTTL).Err(); err != nil {
		return fmt.Errorf("mark delivery %s sent: %w", key, err)
	}
	return nil
}

func (l *DeliveryLedger) Release(ctx context.Context, key, _ string) error {
	value, err := l.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read delivery %s: %w", key, err)
	}
	if value != pendingValue {
		return nil
	}
	if err := l.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release delivery %s: %w", key, err)
	}
	return nil
}

var _ notification.Ledger = (*DeliveryLedger)(nil)
