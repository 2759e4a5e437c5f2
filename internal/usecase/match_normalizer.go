package usecase

import (
	"strings"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

// NormalizeMatch converts a provider record into a canonical match.
// It reports false when the record cannot be represented: not exactly two
// opponents with teams, no scheduling time, a canceled or unknown status, or
// a videogame outside the supported set.
func NormalizeMatch(raw ProviderMatch) (match.Match, bool) {
	if len(raw.Opponents) != 2 || raw.Opponents[0].Opponent == nil || raw.Opponents[1].Opponent == nil {
		return match.Match{}, false
	}

	scheduled := raw.ScheduledAt
	if scheduled == nil {
		scheduled = raw.BeginAt
	}
	if scheduled == nil || scheduled.IsZero() {
		return match.Match{}, false
	}

	status, ok := normalizeStatus(raw.Status)
	if !ok {
		return match.Match{}, false
	}

	game, ok := match.ParseGame(raw.Videogame.Slug)
	if !ok {
		return match.Match{}, false
	}

	gameName := strings.TrimSpace(raw.Videogame.Name)
	if gameName == "" {
		gameName = game.DisplayName()
	}

	return match.Match{
		ID:          raw.ID,
		Team1:       normalizeTeam(raw.Opponents[0].Opponent, raw.Results, "Team 1"),
		Team2:       normalizeTeam(raw.Opponents[1].Opponent, raw.Results, "Team 2"),
		Status:      status,
		Game:        game,
		GameName:    gameName,
		LeagueName:  strings.TrimSpace(raw.League.Name),
		LeagueSlug:  strings.TrimSpace(raw.League.Slug),
		ScheduledAt: scheduled.UTC(),
		StreamURL:   pickStreamURL(raw.Streams, raw.LiveEmbedURL),
	}, true
}

func normalizeStatus(raw string) (match.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "finished":
		return match.StatusCompleted, true
	case "running":
		return match.StatusLive, true
	case "not_started", "postponed":
		return match.StatusUpcoming, true
	default:
		return "", false
	}
}

func normalizeTeam(team *ProviderTeam, results []ProviderResult, fallbackName string) match.Team {
	name := strings.TrimSpace(team.Name)
	if name == "" {
		name = fallbackName
	}
	logo := strings.TrimSpace(team.ImageURL)
	if logo == "" {
		logo = match.PlaceholderLogo
	}

	out := match.Team{ID: team.ID, Name: name, Logo: logo}
	for _, result := range results {
		if result.TeamID == team.ID {
			score := result.Score
			out.Score = &score
			break
		}
	}
	return out
}

// pickStreamURL prefers the main official stream, then any main stream, then the live embed.
func pickStreamURL(streams []ProviderStream, liveEmbedURL string) string {
	var mainURL string
	for _, stream := range streams {
		if !stream.Main || stream.RawURL == "" {
			continue
		}
		if stream.Official {
			return stream.RawURL
		}
		if mainURL == "" {
			mainURL = stream.RawURL
		}
	}
	if mainURL != "" {
		return mainURL
	}
	return strings.TrimSpace(liveEmbedURL)
}
