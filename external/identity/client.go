package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esport-notifier/internal/domain/user"
	"github.com/riskibarqy/esport-notifier/internal/platform/cache"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/riskibarqy/esport-notifier/internal/platform/resilience"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const userPath = "/auth/v1/user"

var errIdentityTransient = crerr.New("identity provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	AnonKey        string
	Timeout        time.Duration
	CacheTTL       time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client verifies bearer tokens against the hosted auth service's user endpoint.
type Client struct {
	httpClient *http.Client
	userURL    string
	anonKey    string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	cache      *cache.Store[user.Principal]
	cacheTTL   time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &Client{
		httpClient: httpClient,
		userURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + userPath,
		anonKey:    strings.TrimSpace(cfg.AnonKey),
		logger:     logger.Named("identity"),
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		cache:      cache.NewStore[user.Principal](cfg.CacheTTL),
		cacheTTL:   cfg.CacheTTL,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// VerifyAccessToken resolves the token to a principal. Verified tokens are
// cached by hash for the configured TTL.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if c.cacheTTL <= 0 {
		return c.verify(ctx, token)
	}
	return c.cache.GetOrLoad(ctx, hashToken(token), func(ctx context.Context) (user.Principal, error) {
		return c.verify(ctx, token)
	})
}

func (c *Client) verify(ctx context.Context, token string) (user.Principal, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "identity circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: identity provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	principal, err := c.fetchUser(ctx, token)
	c.breaker.Record(err, isTransient)
	return principal, err
}

func (c *Client) fetchUser(ctx context.Context, token string) (user.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "create user request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request user: %v", errIdentityTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: token rejected", usecase.ErrUnauthorized)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read user response: %v", errIdentityTransient, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "identity user lookup non-200", "status_code", resp.StatusCode)
		callErr := fmt.Errorf("identity lookup failed with status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return user.Principal{}, crerr.Mark(callErr, errIdentityTransient)
		}
		return user.Principal{}, callErr
	}

	var decoded userResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "decode user response")
	}
	if strings.TrimSpace(decoded.ID) == "" {
		return user.Principal{}, fmt.Errorf("%w: user id is empty", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: decoded.ID, Email: strings.TrimSpace(decoded.Email)}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errIdentityTransient)
}
