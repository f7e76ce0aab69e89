// Package poolapi is the HTTP transport for the pool search API.
package poolapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"gravex-pools/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRetries is zero: failed pages are retried by the next
	// revalidation, not by the transport.
	DefaultMaxRetries = 0
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultMaxDelay   = 5 * time.Second
)

const maxErrorBody = 256

// ErrorReporter receives transport errors that were not suppressed with
// SkipErrorReport, e.g. to raise a user-facing notification.
type ErrorReporter func(url string, err error)

// Client performs GET requests against the pool API.
type Client struct {
	http     *resty.Client
	reporter ErrorReporter
	logger   *zap.Logger
}

type clientConfig struct {
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
	httpClient *http.Client
	reporter   ErrorReporter
	logger     *zap.Logger
}

// ClientOption configures Client.
type ClientOption func(*clientConfig)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithErrorReporter sets the client-wide error reporter.
func WithErrorReporter(r ErrorReporter) ClientOption {
	return func(c *clientConfig) {
		c.reporter = r
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// NewClient creates a pool API client.
func NewClient(opts ...ClientOption) *Client {
	cfg := clientConfig{
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var rc *resty.Client
	if cfg.httpClient != nil {
		rc = resty.NewWithClient(cfg.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(cfg.timeout).
		SetRetryCount(cfg.maxRetries).
		SetRetryWaitTime(cfg.retryDelay).
		SetRetryMaxWaitTime(cfg.maxDelay).
		SetHeader("Accept", "application/json").
		SetLogger(cfg.logger.Sugar()).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			// Rate limiting and server errors are retried; other statuses are final.
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:     rc,
		reporter: cfg.reporter,
		logger:   cfg.logger,
	}
}

type requestConfig struct {
	skipErrorReport bool
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

// SkipErrorReport suppresses the error reporter for this call. Use it where
// failures are expected, such as pool searches that may legitimately fail.
func SkipErrorReport() RequestOption {
	return func(c *requestConfig) {
		c.skipErrorReport = true
	}
}

// GetPools fetches one page of pools from url.
func (c *Client) GetPools(ctx context.Context, url string, opts ...RequestOption) (*PageData, error) {
	var rcfg requestConfig
	for _, opt := range opts {
		opt(&rcfg)
	}

	start := time.Now()
	data, err := c.getPools(ctx, url)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		observability.RecordPoolFetch("error", elapsed, 0)
		c.logger.Debug("pool request failed", zap.String("url", url), zap.Error(err))
		if c.reporter != nil && !rcfg.skipErrorReport {
			c.reporter(url, err)
		}
		return nil, err
	}

	observability.RecordPoolFetch("ok", elapsed, len(data.Data))
	return data, nil
}

func (c *Client) getPools(ctx context.Context, url string) (*PageData, error) {
	var env Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&env).
		ForceContentType("application/json").
		Get(url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &TransportError{
			URL:     url,
			Status:  resp.StatusCode(),
			Message: truncate(strings.TrimSpace(resp.String()), maxErrorBody),
		}
	}

	if !env.Success {
		return nil, &TransportError{
			URL:     url,
			Status:  resp.StatusCode(),
			Message: env.Msg,
			Err:     ErrUnsuccessful,
		}
	}

	return &env.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
