package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esport-notifier/internal/config"
	"github.com/riskibarqy/esport-notifier/internal/domain/notification"
	"github.com/riskibarqy/esport-notifier/internal/domain/preference"
	cacherepo "github.com/riskibarqy/esport-notifier/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/esport-notifier/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esport-notifier/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/esport-notifier/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/esport-notifier/internal/platform/cache"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

type storage struct {
	preferences preference.Repository
	invalidator usecase.SubscriberCacheInvalidator
	ledger      notification.Ledger
	closers     []func(context.Context) error
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	var (
		st  storage
		db  *sqlx.DB
		err error
	)

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err = openDB(ctx, cfg)
		if err != nil {
			return storage{}, err
		}
		st.closers = append(st.closers, func(context.Context) error { return db.Close() })
		st.preferences = postgres.NewPreferenceRepository(db)
	case config.StorageMemory:
		st.preferences = memory.NewPreferenceRepository(nil)
	default:
		return storage{}, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}

	if cfg.CacheEnabled {
		cached := cacherepo.NewPreferenceRepository(st.preferences, cache.NewStore[[]preference.Subscriber](cfg.CacheTTL))
		st.preferences = cached
		st.invalidator = cached
	}

	switch cfg.NotifyLedgerBackend {
	case config.StorageMemory:
		st.ledger = memory.NewDeliveryLedger(cfg.NotifyClaimTTL)
	case config.StoragePostgres:
		if db == nil {
			return st, fmt.Errorf("postgres ledger requires STORAGE_BACKEND=postgres")
		}
		st.ledger = postgres.NewDeliveryLedger(db, cfg.NotifyClaimTTL)
	case config.StorageRedis:
		client, err := redisrepo.Open(ctx, cfg.RedisURL)
		if err != nil {
			return st, err
		}
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })
		st.ledger = redisrepo.NewDeliveryLedger(client, cfg.NotifyClaimTTL, 0)
	default:
		return st, fmt.Errorf("unsupported ledger backend %q", cfg.NotifyLedgerBackend)
	}

	return st, nil
}

// SchedulerConfig adapts cfg for the standalone scheduler. Preference saves
// happen in the api process and invalidate only its own cache, so the
// scheduler reads subscribers straight from storage.
func SchedulerConfig(cfg config.Config) config.Config {
	cfg.CacheEnabled = false
	return cfg
}
