package preference

import (
	"context"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

// Repository is the preference store. Lookups return subscribers regardless of the
// notifications flag; callers filter with Subscriber.Reachable.
type Repository interface {
	ListSubscribersByGame(ctx context.Context, game match.Game) ([]Subscriber, error)
	ListSubscribersByLeague(ctx context.Context, leagueSlug string) ([]Subscriber, error)
	GetByUserID(ctx context.Context, userID string) (UserPreference, bool, error)
	Save(ctx context.Context, pref UserPreference) error
}
