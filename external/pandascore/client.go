package pandascore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/riskibarqy/esport-notifier/internal/platform/resilience"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL   = "https://api.pandascore.co"
	maxResponseBytes = 8 << 20
	leaguesPerPage   = 100
)

var errPandaScoreTransient = crerr.New("pandascore transient failure")

type ClientConfig struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxConnsPerHost int
	Logger          *logging.Logger
	CircuitBreaker  resilience.CircuitBreakerConfig
}

// Client is the PandaScore gateway. It implements usecase.MatchProvider.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	token   string
	timeout time.Duration
	retry   resilience.RetryPolicy
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
	flight  resilience.Group[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxConns := cfg.MaxConnsPerHost
	if maxConns <= 0 {
		maxConns = 32
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "esport-notifier",
			MaxConnsPerHost:     maxConns,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
			MaxResponseBodySize: maxResponseBytes,
		},
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		retry:   resilience.RetryPolicy{MaxRetries: max(cfg.MaxRetries, 0), Backoff: cfg.RetryBackoff},
		logger:  logger.Named("pandascore"),
		breaker: resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

// ListMatches fetches one page and decodes it element by element. Records that
// fail to decode are reported in Rejected instead of failing the page.
func (c *Client) ListMatches(ctx context.Context, query usecase.ProviderQuery) (usecase.ProviderMatchPage, error) {
	raw, err := c.FetchRawMatches(ctx, query)
	if err != nil {
		return usecase.ProviderMatchPage{}, err
	}
	page, err := decodeMatchPage(raw)
	if err != nil {
		return usecase.ProviderMatchPage{}, fmt.Errorf("decode %s matches: %w", query.Label(), err)
	}
	if len(page.Rejected) > 0 {
		c.logger.WarnContext(ctx, "pandascore records rejected", "source", query.Label(), "rejected", len(page.Rejected))
	}
	return page, nil
}

// FetchRawMatches returns the provider body for /<game>/matches/<phase> unmodified.
func (c *Client) FetchRawMatches(ctx context.Context, query usecase.ProviderQuery) ([]byte, error) {
	if !query.Game.Valid() {
		return nil, fmt.Errorf("%w: unsupported game %q", usecase.ErrInvalidInput, query.Game)
	}
	if _, ok := match.ParsePhase(string(query.Phase)); !ok {
		return nil, fmt.Errorf("%w: unsupported phase %q", usecase.ErrInvalidInput, query.Phase)
	}
	path := "/" + string(query.Game) + "/matches/" + string(query.Phase)
	return c.get(ctx, path, encodeQuery(query))
}

// ListLeagues fetches leagues for a game, sorted by name.
func (c *Client) ListLeagues(ctx context.Context, game match.Game) ([]usecase.ProviderLeague, error) {
	if !game.Valid() {
		return nil, fmt.Errorf("%w: unsupported game %q", usecase.ErrInvalidInput, game)
	}
	values := url.Values{}
	values.Set("sort", "name")
	values.Set("per_page", strconv.Itoa(leaguesPerPage))

	raw, err := c.get(ctx, "/videogames/"+game.ProviderSlug()+"/leagues", values)
	if err != nil {
		return nil, err
	}
	var items []wireLeague
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s leagues: %w", game, err)
	}
	out := make([]usecase.ProviderLeague, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.ProviderLeague{ID: item.ID, Name: item.Name, Slug: item.Slug, ImageURL: deref(item.ImageURL)})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: pandascore token is not configured", usecase.ErrConfiguration)
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "pandascore circuit breaker rejected request", "path", path, "state", c.breaker.State())
		return nil, fmt.Errorf("%w: esports data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("pandascore.path", path))
	}

	raw, err, shared := c.flight.Do(fullURL, func() ([]byte, error) {
		var body []byte
		reqErr := c.retry.Do(ctx, isTransient, func(attempt int) error {
			var callErr error
			body, callErr = c.execute(ctx, fullURL)
			if callErr != nil && attempt < c.retry.MaxRetries && isTransient(callErr) {
				c.logger.DebugContext(ctx, "pandascore request retrying", "path", path, "attempt", attempt+1, "error", callErr)
			}
			return callErr
		})
		c.breaker.Record(reqErr, isTransient)
		return body, reqErr
	})
	if err != nil {
		c.logger.WarnContext(ctx, "pandascore request failed", "path", path, "error", err)
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "pandascore request shared", "path", path)
	}
	return raw, nil
}

func (c *Client) execute(ctx context.Context, fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: send request: %s", errPandaScoreTransient, sanitize(err.Error(), c.token))
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < 200 || status >= 300 {
		callErr := fmt.Errorf("request failed with status %d: %s", status, providerMessage(body))
		if isRetryableStatus(status) {
			return nil, crerr.Mark(callErr, errPandaScoreTransient)
		}
		return nil, callErr
	}

	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func decodeMatchPage(raw []byte) (usecase.ProviderMatchPage, error) {
	var elements rawPage
	if err := sonic.Unmarshal(raw, &elements); err != nil {
		return usecase.ProviderMatchPage{}, err
	}

	page := usecase.ProviderMatchPage{Matches: make([]usecase.ProviderMatch, 0, len(elements))}
	for i, element := range elements {
		var decoded wireMatch
		if err := sonic.Unmarshal(element, &decoded); err != nil {
			var id wireID
			_ = sonic.Unmarshal(element, &id)
			page.Rejected = append(page.Rejected, usecase.ProviderParseError{Index: i, ID: id.ID, Reason: err.Error()})
			continue
		}
		item, reason := decoded.toProvider()
		if reason != "" {
			page.Rejected = append(page.Rejected, usecase.ProviderParseError{Index: i, ID: decoded.ID, Reason: reason})
			continue
		}
		page.Matches = append(page.Matches, item)
	}
	return page, nil
}

func encodeQuery(query usecase.ProviderQuery) url.Values {
	values := url.Values{}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(query.PerPage))
	}
	if query.Sort != "" {
		values.Set("sort", query.Sort)
	}
	appendBracketed(values, "filter", query.Filter)
	appendBracketed(values, "range", query.Range)
	appendBracketed(values, "search", query.Search)
	return values
}

func appendBracketed(values url.Values, prefix string, params map[string]string) {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values.Set(prefix+"["+key+"]", params[key])
	}
}

func providerMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 240 {
		text = text[:240] + "..."
	}
	return text
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errPandaScoreTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func sanitize(value, token string) string {
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}
