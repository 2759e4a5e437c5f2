package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/platform/cache"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

// GameInfo is one entry of the game catalog.
type GameInfo struct {
	Tag  match.Game `json:"tag"`
	Name string     `json:"name"`
}

type CalendarResult struct {
	Matches       []match.Match `json:"matches"`
	PartialErrors []string      `json:"partialErrors,omitempty"`
}

type MatchServiceConfig struct {
	PageSize int
	CacheTTL time.Duration
}

// MatchService serves the read-only match routes.
type MatchService struct {
	provider   MatchProvider
	aggregator *MatchAggregator
	cfg        MatchServiceConfig
	logger     *logging.Logger

	rawCache    *cache.Store[[]byte]
	leagueCache *cache.Store[[]match.League]
}

func NewMatchService(provider MatchProvider, aggregator *MatchAggregator, cfg MatchServiceConfig, logger *logging.Logger) *MatchService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		provider:    provider,
		aggregator:  aggregator,
		cfg:         cfg,
		logger:      logger,
		rawCache:    cache.NewStore[[]byte](cfg.CacheTTL),
		leagueCache: cache.NewStore[[]match.League](cfg.CacheTTL),
	}
}

func (s *MatchService) Games() []GameInfo {
	games := match.AllGames()
	out := make([]GameInfo, 0, len(games))
	for _, game := range games {
		out = append(out, GameInfo{Tag: game, Name: game.DisplayName()})
	}
	return out
}

// RawMatches returns the provider's page for one game and phase unmodified.
func (s *MatchService) RawMatches(ctx context.Context, rawGame, rawPhase string, page int) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RawMatches")
	defer span.End()

	game, ok := match.ParseGame(rawGame)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported game %q", ErrNotFound, rawGame)
	}
	phase, ok := match.ParsePhase(rawPhase)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported phase %q", ErrNotFound, rawPhase)
	}
	if page <= 0 {
		page = 1
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: match provider is not configured", ErrConfiguration)
	}

	query := ProviderQuery{
		Game:    game,
		Phase:   phase,
		Sort:    phase.SortOrder(),
		PerPage: s.cfg.PageSize,
		Page:    page,
	}
	key := query.Label() + "/" + strconv.Itoa(page)
	return s.rawCache.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		return s.provider.FetchRawMatches(ctx, query)
	})
}

// Calendar aggregates normalized matches for the requested games and phases.
// Empty selections mean every supported game and every phase.
func (s *MatchService) Calendar(ctx context.Context, rawGames, rawPhases []string) (CalendarResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Calendar")
	defer span.End()

	games := match.AllGames()
	if len(compactStrings(rawGames)) > 0 {
		parsed, err := match.ParseGames(compactStrings(rawGames))
		if err != nil {
			return CalendarResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		games = parsed
	}
	phases := match.AllPhases()
	if len(compactStrings(rawPhases)) > 0 {
		parsed, err := match.ParsePhases(compactStrings(rawPhases))
		if err != nil {
			return CalendarResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		phases = parsed
	}
	if s.aggregator == nil {
		return CalendarResult{}, fmt.Errorf("%w: match aggregator is not configured", ErrConfiguration)
	}

	result, err := s.aggregator.Aggregate(ctx, Requests(games, phases))
	out := CalendarResult{Matches: result.Matches, PartialErrors: result.PartialErrors()}
	if out.Matches == nil {
		out.Matches = []match.Match{}
	}
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return out, nil
}

// Leagues lists provider leagues for a game, cached per game.
func (s *MatchService) Leagues(ctx context.Context, rawGame string) ([]match.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Leagues")
	defer span.End()

	game, ok := match.ParseGame(rawGame)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported game %q", ErrNotFound, rawGame)
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: match provider is not configured", ErrConfiguration)
	}

	return s.leagueCache.GetOrLoad(ctx, string(game), func(ctx context.Context) ([]match.League, error) {
		items, err := s.provider.ListLeagues(ctx, game)
		if err != nil {
			return nil, err
		}
		out := make([]match.League, 0, len(items))
		for _, item := range items {
			if item.ID <= 0 || strings.TrimSpace(item.Name) == "" {
				continue
			}
			out = append(out, match.League{ID: item.ID, Name: item.Name, Slug: item.Slug, ImageURL: item.ImageURL})
		}
		s.logger.DebugContext(ctx, "leagues loaded", "game", game, "count", len(out))
		return out, nil
	})
}

func compactStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
