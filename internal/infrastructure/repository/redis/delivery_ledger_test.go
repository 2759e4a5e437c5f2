package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/esport-notifier/internal/domain/notification"
)

type fakeCommands struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCommands) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *goredis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return goredis.NewBoolResult(false, f.err)
	}
	if _, ok := f.values[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeCommands) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *goredis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeCommands) Get(_ context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(value, nil)
}

func (f *fakeCommands) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestDeliveryLedger_ClaimSendRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeCommands()
	ledger := NewDeliveryLedger(fake, 3*time.Minute, 0)
	delivery := notification.Delivery{Key: "reminder-7-u1-20260501T1805Z"}

	if ok, err := ledger.Claim(ctx, delivery); err != nil || !ok {
		t.Fatalf("expected claim, got %v %v", ok, err)
	}
	if fake.ttls[keyPrefix+delivery.Key] != 3*time.Minute {
		t.Fatalf("expected claim ttl, got %s", fake.ttls[keyPrefix+delivery.Key])
	}
	if ok, _ := ledger.Claim(ctx, delivery); ok {
		t.Fatalf("expected duplicate claim to be refused")
	}

	if err := ledger.Release(ctx, delivery.Key, "boom"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := ledger.Claim(ctx, delivery); !ok {
		t.Fatalf("expected released delivery to be claimable")
	}

	if err := ledger.MarkSent(ctx, delivery.Key, "msg_9"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if fake.values[keyPrefix+delivery.Key] != "sent:msg_9" || fake.ttls[keyPrefix+delivery.Key] != defaultSentTTL {
		t.Fatalf("unexpected sent marker: %q %s", fake.values[keyPrefix+delivery.Key], fake.ttls[keyPrefix+delivery.Key])
	}
	if err := ledger.Release(ctx, delivery.Key, "late"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := ledger.Claim(ctx, delivery); ok {
		t.Fatalf("sent delivery must stay claimed")
	}
}

func TestDeliveryLedger_ReleaseMissingKey(t *testing.T) {
	t.Parallel()

	ledger := NewDeliveryLedger(newFakeCommands(), 0, 0)
	if err := ledger.Release(context.Background(), "missing", ""); err != nil {
		t.Fatalf("expected nil for missing key, got %v", err)
	}
}

func TestDeliveryLedger_ClaimError(t *testing.T) {
	t.Parallel()

	fake := newFakeCommands()
	fake.err = errors.New("dial tcp: connection refused")
	ledger := NewDeliveryLedger(fake, 0, 0)
	if _, err := ledger.Claim(context.Background(), notification.Delivery{Key: "k"}); err == nil {
		t.Fatalf("expected claim error")
	}
}
