package cache

import (
	"context"
	"strings"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/domain/preference"
	basecache "github.com/riskibarqy/esport-notifier/internal/platform/cache"
)

const subscriberKeyPrefix = "subscribers:"

// PreferenceRepository caches the subscriber lookups a sweep repeats for every
// match. Reads and writes of a single user's settings go straight through.
type PreferenceRepository struct {
	next  preference.Repository
	cache *basecache.Store[[]preference.Subscriber]
}

func NewPreferenceRepository(next preference.Repository, cache *basecache.Store[[]preference.Subscriber]) *PreferenceRepository {
	return &PreferenceRepository{next: next, cache: cache}
}

func (r *PreferenceRepository) ListSubscribersByGame(ctx context.Context, game match.Game) ([]preference.Subscriber, error) {
	key := subscriberKeyPrefix + "game:" + string(game)
	return r.load(ctx, key, func(ctx context.Context) ([]preference.Subscriber, error) {
		return r.next.ListSubscribersByGame(ctx, game)
	})
}

func (r *PreferenceRepository) ListSubscribersByLeague(ctx context.Context, leagueSlug string) ([]preference.Subscriber, error) {
	slug := strings.ToLower(strings.TrimSpace(leagueSlug))
	key := subscriberKeyPrefix + "league:" + slug
	return r.load(ctx, key, func(ctx context.Context) ([]preference.Subscriber, error) {
		return r.next.ListSubscribersByLeague(ctx, slug)
	})
}

func (r *PreferenceRepository) load(ctx context.Context, key string, loader func(context.Context) ([]preference.Subscriber, error)) ([]preference.Subscriber, error) {
	items, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]preference.Subscriber, error) {
		items, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return append([]preference.Subscriber(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]preference.Subscriber(nil), items...), nil
}

func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID string) (preference.UserPreference, bool, error) {
	return r.next.GetByUserID(ctx, userID)
}

func (r *PreferenceRepository) Save(ctx context.Context, pref preference.UserPreference) error {
	if err := r.next.Save(ctx, pref); err != nil {
		return err
	}
	r.InvalidateSubscribers(ctx)
	return nil
}

// InvalidateSubscribers drops every cached lookup.
func (r *PreferenceRepository) InvalidateSubscribers(ctx context.Context) {
	r.cache.DeletePrefix(ctx, subscriberKeyPrefix)
}

var _ preference.Repository = (*PreferenceRepository)(nil)
