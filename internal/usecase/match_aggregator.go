package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

// MatchRequest is one (game, phase) source of the aggregate.
type MatchRequest struct {
	Game  match.Game
	Phase match.Phase
}

func (r MatchRequest) Label() string {
	return string(r.Game) + "/" + string(r.Phase)
}

// Requests builds the cross product of games and phases.
func Requests(games []match.Game, phases []match.Phase) []MatchRequest {
	out := make([]MatchRequest, 0, len(games)*len(phases))
	for _, game := range games {
		for _, phase := range phases {
			out = append(out, MatchRequest{Game: game, Phase: phase})
		}
	}
	return out
}

// SourceError is a failed source, labeled game/phase.
type SourceError struct {
	Label string
	Err   error
}

func (e SourceError) Error() string {
	return e.Label + ": " + e.Err.Error()
}

func (e SourceError) Unwrap() error {
	return e.Err
}

type AggregateResult struct {
	Matches  []match.Match
	Errors   []SourceError
	Rejected int
	Sources  int
}

// PartialErrors renders the failed sources as "game/phase: reason".
func (r AggregateResult) PartialErrors() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Errors))
	for _, item := range r.Errors {
		out = append(out, item.Error())
	}
	return out
}

type MatchAggregatorConfig struct {
	PageSize int
	// MaxConcurrency caps in-flight provider calls; 0 runs every source at once.
	MaxConcurrency int
}

type MatchAggregator struct {
	provider MatchProvider
	cfg      MatchAggregatorConfig
	metrics  NotificationMetrics
	logger   *logging.Logger
}

func NewMatchAggregator(provider MatchProvider, cfg MatchAggregatorConfig, metrics NotificationMetrics, logger *logging.Logger) *MatchAggregator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchAggregator{
		provider: provider,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

type sourceOutcome struct {
	index    int
	label    string
	matches  []match.Match
	rejected int
	err      error
}

// Aggregate queries every source concurrently and waits for all of them.
// A failed source contributes no matches; only when every source fails does
// Aggregate return an error (wrapping ErrAllSourcesFailed) alongside the result.
func (a *MatchAggregator) Aggregate(ctx context.Context, requests []MatchRequest) (AggregateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAggregator.Aggregate")
	defer span.End()

	result := AggregateResult{Sources: len(requests)}
	if len(requests) == 0 {
		return result, nil
	}

	p := pool.NewWithResults[sourceOutcome]()
	if a.cfg.MaxConcurrency > 0 {
		p = p.WithMaxGoroutines(a.cfg.MaxConcurrency)
	}
	for i, req := range requests {
		p.Go(func() sourceOutcome {
			return a.fetchSource(ctx, i, req)
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	for _, outcome := range outcomes {
		a.metrics.ObserveSource(outcome.label, len(outcome.matches), outcome.rejected, outcome.err)
		result.Rejected += outcome.rejected
		if outcome.err != nil {
			a.logger.WarnContext(ctx, "match source failed", "source", outcome.label, "error", outcome.err)
			result.Errors = append(result.Errors, SourceError{Label: outcome.label, Err: outcome.err})
			continue
		}
		result.Matches = append(result.Matches, outcome.matches...)
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		if !result.Matches[i].ScheduledAt.Equal(result.Matches[j].ScheduledAt) {
			return result.Matches[i].ScheduledAt.Before(result.Matches[j].ScheduledAt)
		}
		return result.Matches[i].ID < result.Matches[j].ID
	})

	span.SetAttributes(
		attribute.Int("aggregate.sources", len(requests)),
		attribute.Int("aggregate.failed_sources", len(result.Errors)),
		attribute.Int("aggregate.matches", len(result.Matches)),
	)

	if len(result.Errors) == len(requests) {
		return result, fmt.Errorf("%w: %d of %d sources failed", ErrAllSourcesFailed, len(result.Errors), len(requests))
	}
	return result, nil
}

func (a *MatchAggregator) fetchSource(ctx context.Context, index int, req MatchRequest) sourceOutcome {
	outcome := sourceOutcome{index: index, label: req.Label()}
	if a.provider == nil {
		outcome.err = fmt.Errorf("%w: match provider is not configured", ErrConfiguration)
		return outcome
	}

	page, err := a.provider.ListMatches(ctx, ProviderQuery{
		Game:    req.Game,
		Phase:   req.Phase,
		Sort:    req.Phase.SortOrder(),
		PerPage: a.cfg.PageSize,
	})
	if err != nil {
		outcome.err = err
		return outcome
	}

	for _, rejected := range page.Rejected {
		a.logger.DebugContext(ctx, "provider record rejected", "source", outcome.label, "reason", rejected.Error())
	}
	outcome.rejected = len(page.Rejected)

	seen := make(map[int64]struct{}, len(page.Matches))
	outcome.matches = make([]match.Match, 0, len(page.Matches))
	for _, raw := range page.Matches {
		normalized, ok := NormalizeMatch(raw)
		if !ok {
			outcome.rejected++
			continue
		}
		if _, dup := seen[normalized.ID]; dup {
			continue
		}
		seen[normalized.ID] = struct{}{}
		outcome.matches = append(outcome.matches, normalized)
	}
	return outcome
}
