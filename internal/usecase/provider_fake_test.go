package usecase

import (
	"context"
	"sync"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

type fakeProvider struct {
	mu      sync.Mutex
	pages   map[string]ProviderMatchPage
	errs    map[string]error
	raw     map[string][]byte
	leagues map[match.Game][]ProviderLeague
	queries []ProviderQuery
	rawHits int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		pages:   make(map[string]ProviderMatchPage),
		errs:    make(map[string]error),
		raw:     make(map[string][]byte),
		leagues: make(map[match.Game][]ProviderLeague),
	}
}

func (f *fakeProvider) ListMatches(_ context.Context, query ProviderQuery) (ProviderMatchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := f.errs[query.Label()]; err != nil {
		return ProviderMatchPage{}, err
	}
	return f.pages[query.Label()], nil
}

func (f *fakeProvider) FetchRawMatches(_ context.Context, query ProviderQuery) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.rawHits++
	if err := f.errs[query.Label()]; err != nil {
		return nil, err
	}
	return f.raw[query.Label()], nil
}

func (f *fakeProvider) ListLeagues(_ context.Context, game match.Game) ([]ProviderLeague, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["leagues/"+string(game)]; err != nil {
		return nil, err
	}
	return f.leagues[game], nil
}

func (f *fakeProvider) queryFor(label string) (ProviderQuery, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q.Label() == label {
			return q, true
		}
	}
	return ProviderQuery{}, false
}
