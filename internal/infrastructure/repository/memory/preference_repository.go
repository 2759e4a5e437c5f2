package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/domain/preference"
)

type PreferenceRepository struct {
	mu     sync.RWMutex
	byUser map[string]preference.UserPreference
	now    func() time.Time
}

func NewPreferenceRepository(seed []preference.UserPreference) *PreferenceRepository {
	r := &PreferenceRepository{
		byUser: make(map[string]preference.UserPreference, len(seed)),
		now:    time.Now,
	}
	for _, item := range seed {
		if strings.TrimSpace(item.UserID) == "" {
			continue
		}
		r.byUser[item.UserID] = clonePreference(item)
	}
	return r
}

func (r *PreferenceRepository) ListSubscribersByGame(_ context.Context, game match.Game) ([]preference.Subscriber, error) {
	return r.collect(func(item preference.UserPreference) bool {
		return slices.Contains(item.Games, game)
	}), nil
}

func (r *PreferenceRepository) ListSubscribersByLeague(_ context.Context, leagueSlug string) ([]preference.Subscriber, error) {
	slug := strings.ToLower(strings.TrimSpace(leagueSlug))
	if slug == "" {
		return nil, nil
	}
	return r.collect(func(item preference.UserPreference) bool {
		return slices.Contains(item.Leagues, slug)
	}), nil
}

func (r *PreferenceRepository) collect(keep func(preference.UserPreference) bool) []preference.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]preference.Subscriber, 0)
	for _, item := range r.byUser {
		if !keep(item) {
			continue
		}
		out = append(out, preference.Subscriber{
			UserID:               item.UserID,
			Email:                item.Email,
			NotificationsEnabled: item.NotificationsEnabled,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (r *PreferenceRepository) GetByUserID(_ context.Context, userID string) (preference.UserPreference, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byUser[userID]
	if !ok {
		return preference.UserPreference{}, false, nil
	}
	return clonePreference(item), true, nil
}

func (r *PreferenceRepository) Save(_ context.Context, pref preference.UserPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := clonePreference(pref)
	item.UpdatedAt = r.now().UTC()
	r.byUser[item.UserID] = item
	return nil
}

func clonePreference(item preference.UserPreference) preference.UserPreference {
	item.Games = append([]match.Game(nil), item.Games...)
	item.Leagues = append([]string(nil), item.Leagues...)
	return item
}

var _ preference.Repository = (*PreferenceRepository)(nil)
