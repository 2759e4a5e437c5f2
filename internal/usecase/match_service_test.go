package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

func newMatchServiceForTest(provider MatchProvider) *MatchService {
	logger := logging.NewNop()
	return NewMatchService(provider, NewMatchAggregator(provider, MatchAggregatorConfig{PageSize: 50}, nil, logger), MatchServiceConfig{PageSize: 25, CacheTTL: time.Minute}, logger)
}

func TestMatchService_RawMatchesCachedPerPage(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.raw["valorant/upcoming"] = []byte(`[{"id":1}]`)
	svc := newMatchServiceForTest(provider)

	for i := 0; i < 3; i++ {
		body, err := svc.RawMatches(context.Background(), "Valorant", "upcoming", 0)
		if err != nil {
			t.Fatalf("raw matches: %v", err)
		}
		if string(body) != `[{"id":1}]` {
			t.Fatalf("body must pass through unchanged, got %s", body)
		}
	}
	if provider.rawHits != 1 {
		t.Fatalf("expected one provider call, got %d", provider.rawHits)
	}
	query, ok := provider.queryFor("valorant/upcoming")
	if !ok || query.Page != 1 || query.PerPage != 25 || query.Sort != "begin_at" {
		t.Fatalf("unexpected query: %+v", query)
	}
}

func TestMatchService_RawMatchesRejectsUnknownRoute(t *testing.T) {
	t.Parallel()

	svc := newMatchServiceForTest(newFakeProvider())
	if _, err := svc.RawMatches(context.Background(), "chess", "upcoming", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for game, got %v", err)
	}
	if _, err := svc.RawMatches(context.Background(), "lol", "tomorrow", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for phase, got %v", err)
	}
}

func TestMatchService_RawMatchesErrorNotCached(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.errs["lol/past"] = errors.New("status 503")
	svc := newMatchServiceForTest(provider)

	if _, err := svc.RawMatches(context.Background(), "lol", "past", 1); err == nil {
		t.Fatalf("expected provider error")
	}
	delete(provider.errs, "lol/past")
	provider.raw["lol/past"] = []byte(`[]`)
	if _, err := svc.RawMatches(context.Background(), "lol", "past", 1); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestMatchService_Calendar(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	provider := newFakeProvider()
	provider.pages["lol/upcoming"] = ProviderMatchPage{Matches: []ProviderMatch{providerMatchFor(7, "league-of-legends", at)}}
	svc := newMatchServiceForTest(provider)

	result, err := svc.Calendar(context.Background(), []string{"lol"}, []string{"upcoming"})
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(result.Matches) != 1 || result.Matches[0].ID != 7 {
		t.Fatalf("unexpected matches: %+v", result.Matches)
	}

	if _, err := svc.Calendar(context.Background(), []string{"lol,chess"}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_CalendarAllSourcesFailed(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.errs["rl/upcoming"] = errors.New("timeout")
	svc := newMatchServiceForTest(provider)

	result, err := svc.Calendar(context.Background(), []string{"rl"}, []string{"upcoming"})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if result.Matches == nil || len(result.PartialErrors) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMatchService_LeaguesCachedAndFiltered(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.leagues[match.GameCSGO] = []ProviderLeague{
		{ID: 1, Name: "ESL Pro League", Slug: "esl-pro-league"},
		{ID: 0, Name: "broken"},
	}
	svc := newMatchServiceForTest(provider)

	leagues, err := svc.Leagues(context.Background(), "cs-go")
	if err != nil {
		t.Fatalf("leagues: %v", err)
	}
	if len(leagues) != 1 || leagues[0].Slug != "esl-pro-league" {
		t.Fatalf("unexpected leagues: %+v", leagues)
	}

	provider.errs["leagues/csgo"] = errors.New("down")
	if _, err := svc.Leagues(context.Background(), "csgo"); err != nil {
		t.Fatalf("expected cached leagues, got %v", err)
	}
}

func TestMatchService_Games(t *testing.T) {
	t.Parallel()

	games := newMatchServiceForTest(newFakeProvider()).Games()
	if len(games) != 5 || games[0].Tag != match.GameLoL || games[0].Name != "League of Legends" {
		t.Fatalf("unexpected catalog: %+v", games)
	}
}
