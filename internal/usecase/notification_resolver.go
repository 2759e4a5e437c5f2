package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/domain/notification"
	"github.com/riskibarqy/esport-notifier/internal/domain/preference"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// SelectImminent keeps matches scheduled in (now, now+horizon], in input order.
// A live match whose start is already past is never selected.
func SelectImminent(matches []match.Match, now time.Time, horizon time.Duration) []match.Match {
	out := make([]match.Match, 0)
	for _, item := range matches {
		if item.StartsWithin(now, horizon) {
			out = append(out, item)
		}
	}
	return out
}

type ResolveResult struct {
	Imminent       []match.Match
	Candidates     []notification.Candidate
	SkippedMatches int
	LookupErrors   []string
}

type NotificationResolverConfig struct {
	// MaxConcurrency bounds matches resolved in parallel; values below 1 mean 4.
	MaxConcurrency int
}

type NotificationResolver struct {
	prefs  preference.Repository
	cfg    NotificationResolverConfig
	logger *logging.Logger
}

func NewNotificationResolver(prefs preference.Repository, cfg NotificationResolverConfig, logger *logging.Logger) *NotificationResolver {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationResolver{prefs: prefs, cfg: cfg, logger: logger}
}

type matchResolution struct {
	candidates []notification.Candidate
	errs       []string
	skipped    bool
}

// Resolve selects imminent matches and expands them into one candidate per
// subscribed, reachable user. Candidates are ordered by start time, match id
// and user id.
func (r *NotificationResolver) Resolve(ctx context.Context, matches []match.Match, now time.Time, horizon time.Duration) (ResolveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationResolver.Resolve")
	defer span.End()

	result := ResolveResult{Imminent: SelectImminent(matches, now, horizon)}
	if len(result.Imminent) == 0 {
		return result, nil
	}

	p := pool.NewWithResults[matchResolution]().WithMaxGoroutines(r.cfg.MaxConcurrency)
	for _, item := range result.Imminent {
		p.Go(func() matchResolution {
			return r.resolveMatch(ctx, item)
		})
	}
	for _, resolution := range p.Wait() {
		result.Candidates = append(result.Candidates, resolution.candidates...)
		result.LookupErrors = append(result.LookupErrors, resolution.errs...)
		if resolution.skipped {
			result.SkippedMatches++
		}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		if !a.Match.ScheduledAt.Equal(b.Match.ScheduledAt) {
			return a.Match.ScheduledAt.Before(b.Match.ScheduledAt)
		}
		if a.Match.ID != b.Match.ID {
			return a.Match.ID < b.Match.ID
		}
		return a.UserID < b.UserID
	})
	sort.Strings(result.LookupErrors)
	return result, nil
}

// resolveMatch unions game and league subscribers. One failed lookup still
// yields the other's users; both failing skips the match.
func (r *NotificationResolver) resolveMatch(ctx context.Context, item match.Match) matchResolution {
	var out matchResolution

	byGame, gameErr := r.prefs.ListSubscribersByGame(ctx, item.Game)
	if gameErr != nil {
		r.logger.WarnContext(ctx, "subscriber lookup by game failed", "match_id", item.ID, "game", string(item.Game), "error", gameErr)
		out.errs = append(out.errs, "match "+item.Team1.Name+" vs "+item.Team2.Name+": game lookup: "+gameErr.Error())
	}

	var byLeague []preference.Subscriber
	var leagueErr error
	if item.LeagueSlug != "" {
		byLeague, leagueErr = r.prefs.ListSubscribersByLeague(ctx, item.LeagueSlug)
		if leagueErr != nil {
			r.logger.WarnContext(ctx, "subscriber lookup by league failed", "match_id", item.ID, "league", item.LeagueSlug, "error", leagueErr)
			out.errs = append(out.errs, "match "+item.Team1.Name+" vs "+item.Team2.Name+": league lookup: "+leagueErr.Error())
		}
	}

	if gameErr != nil && (leagueErr != nil || item.LeagueSlug == "") {
		r.logger.ErrorContext(ctx, "skipping match, no subscriber lookup succeeded", "match_id", item.ID)
		out.skipped = true
		return out
	}

	seen := make(map[string]struct{}, len(byGame)+len(byLeague))
	for _, group := range [][]preference.Subscriber{byGame, byLeague} {
		for _, sub := range group {
			if sub.UserID == "" || !sub.Reachable() {
				continue
			}
			if _, dup := seen[sub.UserID]; dup {
				continue
			}
			seen[sub.UserID] = struct{}{}
			out.candidates = append(out.candidates, notification.Candidate{
				Match:  item,
				UserID: sub.UserID,
				Email:  sub.Email,
			})
		}
	}
	return out
}
