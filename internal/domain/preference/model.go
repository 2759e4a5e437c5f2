package preference

import (
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

// Subscriber is one row returned by the by-game and by-league lookups.
type Subscriber struct {
	UserID               string
	Email                string
	NotificationsEnabled bool
}

// Reachable reports whether a reminder can be sent to this subscriber.
func (s Subscriber) Reachable() bool {
	return s.Email != "" && s.NotificationsEnabled
}

// UserPreference is written only by an explicit settings save.
type UserPreference struct {
	UserID               string
	Email                string
	NotificationsEnabled bool
	Games                []match.Game
	Leagues              []string
	UpdatedAt            time.Time
}
