package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

// ProviderQuery is one paginated, sorted and filtered match list request.
type ProviderQuery struct {
	Game    match.Game
	Phase   match.Phase
	Sort    string
	PerPage int
	Page    int
	Filter  map[string]string
	Range   map[string]string
	Search  map[string]string
}

// Label identifies the query in logs and partial error lists, e.g. "lol/upcoming".
func (q ProviderQuery) Label() string {
	return string(q.Game) + "/" + string(q.Phase)
}

// ProviderMatch is a provider record that passed the gateway's strict parse.
// Fields the provider may omit stay nil or empty; the normalizer decides what is usable.
type ProviderMatch struct {
	ID           int64
	Name         string
	ScheduledAt  *time.Time
	BeginAt      *time.Time
	EndAt        *time.Time
	Status       string
	Opponents    []ProviderOpponent
	League       ProviderLeague
	Videogame    ProviderVideogame
	Results      []ProviderResult
	Streams      []ProviderStream
	LiveEmbedURL string
}

type ProviderOpponent struct {
	Type     string
	Opponent *ProviderTeam
}

type ProviderTeam struct {
	ID       int64
	Name     string
	Acronym  string
	ImageURL string
}

type ProviderLeague struct {
	ID       int64
	Name     string
	Slug     string
	ImageURL string
}

type ProviderVideogame struct {
	ID   int64
	Name string
	Slug string
}

type ProviderResult struct {
	TeamID int64
	Score  int
}

type ProviderStream struct {
	Language string
	Main     bool
	Official bool
	RawURL   string
	EmbedURL string
}

// ProviderParseError describes one array element the gateway refused to decode.
type ProviderParseError struct {
	Index  int
	ID     int64
	Reason string
}

func (e ProviderParseError) Error() string {
	if e.ID > 0 {
		return "record " + strconv.Itoa(e.Index) + " (id " + strconv.FormatInt(e.ID, 10) + "): " + e.Reason
	}
	return "record " + strconv.Itoa(e.Index) + ": " + e.Reason
}

// ProviderMatchPage is one decoded page. Rejected elements do not fail the page.
type ProviderMatchPage struct {
	Matches  []ProviderMatch
	Rejected []ProviderParseError
}

// MatchProvider is the provider gateway.
type MatchProvider interface {
	ListMatches(ctx context.Context, query ProviderQuery) (ProviderMatchPage, error)
	FetchRawMatches(ctx context.Context, query ProviderQuery) ([]byte, error)
	ListLeagues(ctx context.Context, game match.Game) ([]ProviderLeague, error)
}
