package resend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/riskibarqy/esport-notifier/internal/platform/resilience"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultBaseURL = "https://api.resend.com"

var errResendTransient = crerr.New("resend transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client sends transactional email through the Resend API. It implements usecase.EmailSender.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
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
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger.Named("resend"),
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (c *Client) Send(ctx context.Context, email usecase.Email) (usecase.EmailReceipt, error) {
	if c.apiKey == "" {
		return usecase.EmailReceipt{}, fmt.Errorf("%w: resend api key is not configured", usecase.ErrConfiguration)
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "resend circuit breaker rejected request", "state", c.breaker.State())
		return usecase.EmailReceipt{}, fmt.Errorf("%w: email provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	receipt, err := c.send(ctx, email)
	c.breaker.Record(err, isTransient)
	return receipt, err
}

func (c *Client) send(ctx context.Context, email usecase.Email) (usecase.EmailReceipt, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	payload := sendRequest{From: email.From, To: email.To, Subject: email.Subject, HTML: email.HTML}
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return usecase.EmailReceipt{}, crerr.Wrap(err, "marshal resend request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(buf.B))
	if err != nil {
		return usecase.EmailReceipt{}, crerr.Wrap(err, "create resend request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return usecase.EmailReceipt{}, fmt.Errorf("%w: send request: %v", errResendTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usecase.EmailReceipt{}, fmt.Errorf("%w: read response body: %v", errResendTransient, err)
	}

	if resp.StatusCode/100 != 2 {
		callErr := fmt.Errorf("resend status=%d: %s", resp.StatusCode, errorMessage(body))
		if isRetryableStatus(resp.StatusCode) {
			return usecase.EmailReceipt{}, crerr.Mark(callErr, errResendTransient)
		}
		return usecase.EmailReceipt{}, callErr
	}

	// A 2xx means Resend accepted the mail. Failing here would release the
	// delivery claim and send it again on the next sweep.
	var decoded sendResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		c.logger.WarnContext(ctx, "resend accepted email but response did not decode",
			"status", resp.StatusCode,
			"body", errorMessage(body),
			"error", err,
		)
		return usecase.EmailReceipt{}, nil
	}
	return usecase.EmailReceipt{ID: decoded.ID}, nil
}

func errorMessage(body []byte) string {
	var decoded errorResponse
	if err := sonic.Unmarshal(body, &decoded); err == nil && decoded.Message != "" {
		if decoded.Name != "" {
			return decoded.Name + ": " + decoded.Message
		}
		return decoded.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 240 {
		return text[:240] + "..."
	}
	return text
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errResendTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
