package pandascore

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

type wireMatch struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	ScheduledAt  *string        `json:"scheduled_at"`
	BeginAt      *string        `json:"begin_at"`
	EndAt        *string        `json:"end_at"`
	Status       string         `json:"status"`
	Opponents    []wireOpponent `json:"opponents"`
	League       *wireLeague    `json:"league"`
	Videogame    *wireVideogame `json:"videogame"`
	Results      []wireResult   `json:"results"`
	Streams      []wireStream   `json:"streams_list"`
	LiveEmbedURL *string        `json:"live_embed_url"`
}

type wireOpponent struct {
	Type     string    `json:"type"`
	Opponent *wireTeam `json:"opponent"`
}

type wireTeam struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Acronym  *string `json:"acronym"`
	ImageURL *string `json:"image_url"`
}

type wireLeague struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ImageURL *string `json:"image_url"`
}

type wireVideogame struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type wireResult struct {
	TeamID *int64 `json:"team_id"`
	Score  int    `json:"score"`
}

type wireStream struct {
	Language string  `json:"language"`
	Main     bool    `json:"main"`
	Official bool    `json:"official"`
	RawURL   string  `json:"raw_url"`
	EmbedURL *string `json:"embed_url"`
}

type wireID struct {
	ID int64 `json:"id"`
}

// rawPage keeps elements undecoded so one bad record cannot fail the page.
type rawPage []json.RawMessage

func (w wireMatch) toProvider() (usecase.ProviderMatch, string) {
	if w.ID <= 0 {
		return usecase.ProviderMatch{}, "missing id"
	}

	out := usecase.ProviderMatch{
		ID:           w.ID,
		Name:         strings.TrimSpace(w.Name),
		Status:       strings.TrimSpace(w.Status),
		LiveEmbedURL: deref(w.LiveEmbedURL),
	}

	var reason string
	if out.ScheduledAt, reason = parseInstant("scheduled_at", w.ScheduledAt); reason != "" {
		return usecase.ProviderMatch{}, reason
	}
	if out.BeginAt, reason = parseInstant("begin_at", w.BeginAt); reason != "" {
		return usecase.ProviderMatch{}, reason
	}
	if out.EndAt, reason = parseInstant("end_at", w.EndAt); reason != "" {
		return usecase.ProviderMatch{}, reason
	}

	for _, item := range w.Opponents {
		opponent := usecase.ProviderOpponent{Type: item.Type}
		if item.Opponent != nil {
			opponent.Opponent = &usecase.ProviderTeam{
				ID:       item.Opponent.ID,
				Name:     item.Opponent.Name,
				Acronym:  deref(item.Opponent.Acronym),
				ImageURL: deref(item.Opponent.ImageURL),
			}
		}
		out.Opponents = append(out.Opponents, opponent)
	}
	if w.League != nil {
		out.League = usecase.ProviderLeague{
			ID:       w.League.ID,
			Name:     w.League.Name,
			Slug:     w.League.Slug,
			ImageURL: deref(w.League.ImageURL),
		}
	}
	if w.Videogame != nil {
		out.Videogame = usecase.ProviderVideogame{ID: w.Videogame.ID, Name: w.Videogame.Name, Slug: w.Videogame.Slug}
	}
	for _, item := range w.Results {
		if item.TeamID == nil {
			continue
		}
		out.Results = append(out.Results, usecase.ProviderResult{TeamID: *item.TeamID, Score: item.Score})
	}
	for _, item := range w.Streams {
		out.Streams = append(out.Streams, usecase.ProviderStream{
			Language: item.Language,
			Main:     item.Main,
			Official: item.Official,
			RawURL:   item.RawURL,
			EmbedURL: deref(item.EmbedURL),
		})
	}
	return out, ""
}

// parseInstant accepts null or an RFC 3339 instant; anything else rejects the record.
func parseInstant(field string, raw *string) (*time.Time, string) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, ""
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, "invalid " + field + " " + *raw
	}
	parsed = parsed.UTC()
	return &parsed, ""
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
