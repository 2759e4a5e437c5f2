package match

import "time"

// PlaceholderLogo is used when the provider sends no team image.
const PlaceholderLogo = "/placeholder.svg"

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

// Team is one side of a match. Score is nil until the provider reports one.
type Team struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Logo  string `json:"logo"`
	Score *int   `json:"score,omitempty"`
}

// Match is the canonical, provider-independent match record.
type Match struct {
	ID          int64     `json:"id"`
	Team1       Team      `json:"team1"`
	Team2       Team      `json:"team2"`
	Status      Status    `json:"status"`
	Game        Game      `json:"game"`
	GameName    string    `json:"gameName"`
	LeagueName  string    `json:"league"`
	LeagueSlug  string    `json:"leagueSlug"`
	ScheduledAt time.Time `json:"time"`
	StreamURL   string    `json:"streamUrl,omitempty"`
}

// StartsWithin reports whether the match starts in (now, now+horizon].
func (m Match) StartsWithin(now time.Time, horizon time.Duration) bool {
	delta := m.ScheduledAt.Sub(now)
	return delta > 0 && delta <= horizon
}

// League is a provider league entry exposed to the settings page.
type League struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"imageUrl,omitempty"`
}
