package stooq

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	domsvc "FinLab/internal/domain/service"
	"FinLab/pkg/cache"
	pkghttp "FinLab/pkg/http"
	"FinLab/pkg/logger"
)

// DefaultBaseURL is the daily CSV export endpoint.
const DefaultBaseURL = "https://stooq.com/q/d/l/"

// ErrNoData is returned when the provider answers without a CSV carrying a date column.
var ErrNoData = errors.New("stooq: no data")

// Option configures Client.
type Option func(*Client)

// Client downloads daily bars as CSV. Requests are rate limited and guarded by a
// circuit breaker; successful bodies are cached.
type Client struct {
	baseURL   string
	attempts  int
	threshold uint32
	http      *pkghttp.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	cache     cache.Service
	cacheTTL  time.Duration
	log       *logger.Logger
}

// New creates a Stooq client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		attempts:  3,
		threshold: 3,
		http:      pkghttp.NewClient(),
		limiter:   rate.NewLimiter(rate.Limit(5), 1),
		cacheTTL:  6 * time.Hour,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	threshold := c.threshold
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "stooq",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return c
}

// Download returns the raw CSV body for a Stooq symbol such as "spy.us".
func (c *Client) Download(ctx context.Context, code string) ([]byte, error) {
	key := cache.Key("stooq", code)
	if c.cache != nil {
		var body []byte
		if err := c.cache.Get(ctx, key, &body); err == nil {
			c.log.Debug("stooq cache hit", logger.String("code", code))
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.http.GetWithRetry(ctx, c.baseURL, map[string][]string{
			"s": {code},
			"i": {"d"},
		}, c.attempts)
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", code, err)
	}
	body := res.([]byte)

	if !hasDateHeader(body) {
		return nil, fmt.Errorf("download %s: %w", code, ErrNoData)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.log.Warn("stooq cache set failed", logger.String("code", code), logger.Error(err))
		}
	}
	return body, nil
}

func hasDateHeader(body []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(body))
	if !sc.Scan() {
		return false
	}
	for _, col := range strings.Split(sc.Text(), ",") {
		if strings.EqualFold(strings.TrimSpace(col), "date") {
			return true
		}
	}
	return false
}

// WithBaseURL overrides the endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the transport client.
func WithHTTPClient(h *pkghttp.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithAttempts sets per-request retry attempts.
func WithAttempts(n int) Option {
	return func(c *Client) {
		c.attempts = n
	}
}

// WithRate sets requests per second and burst.
func WithRate(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreakerThreshold sets consecutive failures before the breaker opens.
func WithBreakerThreshold(n uint32) Option {
	return func(c *Client) {
		c.threshold = n
	}
}

// WithCache caches successful bodies for ttl.
func WithCache(svc cache.Service, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = svc
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

var _ domsvc.BarDownloader = (*Client)(nil)
