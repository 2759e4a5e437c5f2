package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

func providerFixture() ProviderMatch {
	scheduled := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	return ProviderMatch{
		ID:          100,
		ScheduledAt: &scheduled,
		Status:      "not_started",
		Opponents: []ProviderOpponent{
			{Type: "Team", Opponent: &ProviderTeam{ID: 1, Name: "G2 Esports", ImageURL: "https://cdn.example.com/g2.png"}},
			{Type: "Team", Opponent: &ProviderTeam{ID: 2, Name: "Fnatic", ImageURL: "https://cdn.example.com/fnc.png"}},
		},
		League:    ProviderLeague{ID: 4197, Name: "LEC", Slug: "league-of-legends-lec"},
		Videogame: ProviderVideogame{ID: 1, Name: "League of Legends", Slug: "league-of-legends"},
	}
}

func TestNormalizeMatch_FinishedWithScores(t *testing.T) {
	t.Parallel()

	raw := providerFixture()
	raw.Status = "finished"
	raw.Results = []ProviderResult{{TeamID: 1, Score: 2}, {TeamID: 2, Score: 1}}

	got, ok := NormalizeMatch(raw)
	if !ok {
		t.Fatalf("expected match to be normalized")
	}
	if got.Status != match.StatusCompleted {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.Game != match.GameLoL || got.GameName != "League of Legends" {
		t.Fatalf("unexpected game: %s %q", got.Game, got.GameName)
	}
	if got.Team1.Score == nil || *got.Team1.Score != 2 || got.Team2.Score == nil || *got.Team2.Score != 1 {
		t.Fatalf("unexpected scores: %+v %+v", got.Team1.Score, got.Team2.Score)
	}
	if got.LeagueName != "LEC" || got.LeagueSlug != "league-of-legends-lec" {
		t.Fatalf("unexpected league: %q %q", got.LeagueName, got.LeagueSlug)
	}
	if !got.ScheduledAt.Equal(*raw.ScheduledAt) {
		t.Fatalf("unexpected scheduled time: %s", got.ScheduledAt)
	}
}

// minimalProviderMatch is the smallest record PandaScore returns for a
// scheduled match: no logos, results, streams or game name.
func minimalProviderMatch() ProviderMatch {
	scheduled := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	return ProviderMatch{
		ID:          1,
		ScheduledAt: &scheduled,
		Status:      "not_started",
		Opponents: []ProviderOpponent{
			{Opponent: &ProviderTeam{ID: 10, Name: "A"}},
			{Opponent: &ProviderTeam{ID: 20, Name: "B"}},
		},
		League:    ProviderLeague{Name: "LEC", Slug: "lec"},
		Videogame: ProviderVideogame{Slug: "lol"},
	}
}

func TestNormalizeMatch_MinimalUpcoming(t *testing.T) {
	t.Parallel()

	got, ok := NormalizeMatch(minimalProviderMatch())
	if !ok {
		t.Fatalf("expected match to be normalized")
	}

	want := match.Match{
		ID:          1,
		Team1:       match.Team{ID: 10, Name: "A", Logo: match.PlaceholderLogo},
		Team2:       match.Team{ID: 20, Name: "B", Logo: match.PlaceholderLogo},
		Status:      match.StatusUpcoming,
		Game:        match.GameLoL,
		GameName:    match.GameLoL.DisplayName(),
		LeagueName:  "LEC",
		LeagueSlug:  "lec",
		ScheduledAt: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	if got.ID != want.ID || got.Team1 != want.Team1 || got.Team2 != want.Team2 ||
		got.Status != want.Status || got.Game != want.Game || got.GameName != want.GameName ||
		got.LeagueName != want.LeagueName || got.LeagueSlug != want.LeagueSlug ||
		!got.ScheduledAt.Equal(want.ScheduledAt) || got.StreamURL != "" {
		t.Fatalf("unexpected match:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestNormalizeMatch_Rejections(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*ProviderMatch){
		"one opponent": func(m *ProviderMatch) { m.Opponents = m.Opponents[:1] },
		"three opponents": func(m *ProviderMatch) {
			m.Opponents = append(m.Opponents, ProviderOpponent{Opponent: &ProviderTeam{ID: 3}})
		},
		"missing team":        func(m *ProviderMatch) { m.Opponents[1].Opponent = nil },
		"no time":             func(m *ProviderMatch) { m.ScheduledAt = nil; m.BeginAt = nil },
		"canceled":            func(m *ProviderMatch) { m.Status = "canceled" },
		"unknown status":      func(m *ProviderMatch) { m.Status = "delayed" },
		"unsupported game":    func(m *ProviderMatch) { m.Videogame.Slug = "starcraft-2" },
		"empty videogame slug": func(m *ProviderMatch) { m.Videogame.Slug = "" },
	}

	for name, mutate := range cases {
		raw := providerFixture()
		mutate(&raw)
		if _, ok := NormalizeMatch(raw); ok {
			t.Fatalf("%s: expected record to be rejected", name)
		}
	}
}

func TestNormalizeMatch_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := map[string]match.Status{
		"finished":    match.StatusCompleted,
		"running":     match.StatusLive,
		"not_started": match.StatusUpcoming,
		"postponed":   match.StatusUpcoming,
	}
	for raw, want := range cases {
		m := providerFixture()
		m.Status = raw
		got, ok := NormalizeMatch(m)
		if !ok || got.Status != want {
			t.Fatalf("status %q: got %q ok=%v want %q", raw, got.Status, ok, want)
		}
	}
}

func TestNormalizeMatch_Fallbacks(t *testing.T) {
	t.Parallel()

	begin := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	raw := providerFixture()
	raw.ScheduledAt = nil
	raw.BeginAt = &begin
	raw.Opponents[0].Opponent.Name = ""
	raw.Opponents[0].Opponent.ImageURL = ""
	raw.Opponents[1].Opponent.Name = "  "
	raw.Videogame.Name = ""
	raw.Videogame.Slug = "Dota-2"
	raw.Results = []ProviderResult{{TeamID: 999, Score: 5}}

	got, ok := NormalizeMatch(raw)
	if !ok {
		t.Fatalf("expected match to be normalized")
	}
	if !got.ScheduledAt.Equal(begin) {
		t.Fatalf("expected begin_at fallback, got %s", got.ScheduledAt)
	}
	if got.Team1.Name != "Team 1" || got.Team2.Name != "Team 2" {
		t.Fatalf("unexpected fallback names: %q %q", got.Team1.Name, got.Team2.Name)
	}
	if got.Team1.Logo != match.PlaceholderLogo {
		t.Fatalf("unexpected fallback logo: %q", got.Team1.Logo)
	}
	if got.Team1.Score != nil || got.Team2.Score != nil {
		t.Fatalf("unmatched results must leave scores unset")
	}
	if got.Game != match.GameDota2 || got.GameName != "Dota 2" {
		t.Fatalf("unexpected game fallback: %s %q", got.Game, got.GameName)
	}
}

func TestNormalizeMatch_StreamPreference(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		streams []ProviderStream
		embed   string
		want    string
	}{
		{
			name: "main official wins",
			streams: []ProviderStream{
				{Main: true, RawURL: "https://twitch.tv/main"},
				{Main: true, Official: true, RawURL: "https://twitch.tv/official"},
			},
			embed: "https://embed",
			want:  "https://twitch.tv/official",
		},
		{
			name:    "main without official",
			streams: []ProviderStream{{Official: true, RawURL: "https://twitch.tv/side"}, {Main: true, RawURL: "https://twitch.tv/main"}},
			want:    "https://twitch.tv/main",
		},
		{
			name:    "embed fallback",
			streams: []ProviderStream{{Official: true, RawURL: "https://twitch.tv/side"}},
			embed:   "https://player.twitch.tv/?channel=lec",
			want:    "https://player.twitch.tv/?channel=lec",
		},
		{name: "none", want: ""},
	}

	for _, tc := range cases {
		raw := providerFixture()
		raw.Streams = tc.streams
		raw.LiveEmbedURL = tc.embed
		got, ok := NormalizeMatch(raw)
		if !ok {
			t.Fatalf("%s: expected match", tc.name)
		}
		if got.StreamURL != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got.StreamURL, tc.want)
		}
	}
}

func TestNormalizeMatch_Pure(t *testing.T) {
	t.Parallel()

	raw := providerFixture()
	raw.Results = []ProviderResult{{TeamID: 1, Score: 3}}
	first, _ := NormalizeMatch(raw)
	second, _ := NormalizeMatch(raw)

	if first.Team1.Score == second.Team1.Score {
		t.Fatalf("scores must not share memory between calls")
	}
	if *first.Team1.Score != *second.Team1.Score || first.ID != second.ID || first.StreamURL != second.StreamURL {
		t.Fatalf("expected identical output for identical input")
	}
	if raw.Opponents[0].Opponent.Name != "G2 Esports" {
		t.Fatalf("input must not be mutated")
	}
}
