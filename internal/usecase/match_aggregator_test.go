package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

func providerMatchFor(id int64, game string, at time.Time) ProviderMatch {
	m := providerFixture()
	m.ID = id
	m.Videogame.Slug = game
	m.ScheduledAt = &at
	return m
}

func TestMatchAggregator_PartialFailures(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	provider := newFakeProvider()
	games := []match.Game{match.GameLoL, match.GameValorant, match.GameCSGO, match.GameRL}
	requests := Requests(games, match.AllPhases())
	if len(requests) != 12 {
		t.Fatalf("expected 12 requests, got %d", len(requests))
	}

	var id int64
	for _, req := range requests {
		id++
		provider.pages[req.Label()] = ProviderMatchPage{
			Matches: []ProviderMatch{providerMatchFor(id, string(req.Game), base.Add(time.Duration(id)*time.Minute))},
		}
	}
	for _, label := range []string{"rl/past", "rl/running", "rl/upcoming"} {
		provider.errs[label] = errors.New("status 500")
	}

	aggregator := NewMatchAggregator(provider, MatchAggregatorConfig{PageSize: 50}, nil, logging.NewNop())
	result, err := aggregator.Aggregate(context.Background(), requests)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(result.Matches) != 9 {
		t.Fatalf("expected 9 matches, got %d", len(result.Matches))
	}
	partial := result.PartialErrors()
	if len(partial) != 3 {
		t.Fatalf("expected 3 partial errors, got %v", partial)
	}
	for i, label := range []string{"rl/past", "rl/running", "rl/upcoming"} {
		if !strings.HasPrefix(partial[i], label+": ") {
			t.Fatalf("unexpected partial error %d: %q", i, partial[i])
		}
	}
	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i].ScheduledAt.Before(result.Matches[i-1].ScheduledAt) {
			t.Fatalf("matches must be sorted by scheduled time")
		}
	}
}

func TestMatchAggregator_AllSourcesFailed(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	requests := Requests([]match.Game{match.GameLoL}, []match.Phase{match.PhaseRunning, match.PhaseUpcoming})
	for _, req := range requests {
		provider.errs[req.Label()] = errors.New("connection refused")
	}

	aggregator := NewMatchAggregator(provider, MatchAggregatorConfig{}, nil, logging.NewNop())
	result, err := aggregator.Aggregate(context.Background(), requests)
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("expected ErrAllSourcesFailed, got %v", err)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected every labeled error to be kept, got %d", len(result.Errors))
	}
}

func TestMatchAggregator_QueryShapeAndDedup(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	provider := newFakeProvider()
	dropped := providerMatchFor(3, "lol", at)
	dropped.Status = "canceled"
	provider.pages["lol/past"] = ProviderMatchPage{
		Matches: []ProviderMatch{
			providerMatchFor(1, "lol", at),
			providerMatchFor(1, "lol", at),
			providerMatchFor(2, "lol", at),
			dropped,
		},
		Rejected: []ProviderParseError{{Index: 4, Reason: "invalid begin_at"}},
	}
	provider.pages["lol/upcoming"] = ProviderMatchPage{
		Matches: []ProviderMatch{providerMatchFor(2, "lol", at)},
	}

	aggregator := NewMatchAggregator(provider, MatchAggregatorConfig{PageSize: 25, MaxConcurrency: 1}, nil, logging.NewNop())
	result, err := aggregator.Aggregate(context.Background(), []MatchRequest{
		{Game: match.GameLoL, Phase: match.PhasePast},
		{Game: match.GameLoL, Phase: match.PhaseUpcoming},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	// id 1 collapses within its page, id 2 stays duplicated across pages.
	if len(result.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(result.Matches))
	}
	if result.Rejected != 2 {
		t.Fatalf("expected 2 rejected records, got %d", result.Rejected)
	}

	past, ok := provider.queryFor("lol/past")
	if !ok || past.Sort != "-end_at" || past.PerPage != 25 {
		t.Fatalf("unexpected past query: %+v", past)
	}
	upcoming, ok := provider.queryFor("lol/upcoming")
	if !ok || upcoming.Sort != "begin_at" {
		t.Fatalf("unexpected upcoming query: %+v", upcoming)
	}
}

func TestMatchAggregator_NoRequests(t *testing.T) {
	t.Parallel()

	aggregator := NewMatchAggregator(newFakeProvider(), MatchAggregatorConfig{}, nil, logging.NewNop())
	result, err := aggregator.Aggregate(context.Background(), nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(result.Matches) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
