// Package mailtm is the client for the disposable-email REST API: account
// and session management, message operations, and a read-through TTL cache
// over authenticated HTTP calls.
package mailtm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pryvon/tempmail-cli/internal/cache"
	"github.com/pryvon/tempmail-cli/internal/config"
)

// Cache lifetimes per response family.
const (
	domainsTTL  = time.Hour
	messagesTTL = 5 * time.Minute
	messageTTL  = 30 * time.Minute
)

// Client talks to the mail API. It holds at most one authenticated session
// and must be driven from a single goroutine at a time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Store
	log        zerolog.Logger

	maxRetries      int
	retryBaseDelay  time.Duration
	maxRetryDelay   time.Duration
	minInterval     time.Duration
	defaultPageSize int

	token   string
	account *Account

	requestCount int64
	lastRequest  time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithRetryBaseDelay sets the first backoff delay; each further attempt
// doubles it.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = d
	}
}

// New creates a client from the given configuration and cache store.
func New(cfg *config.Config, store *cache.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.APITimeoutDuration(),
		},
		cache:           store,
		log:             zerolog.Nop(),
		maxRetries:      cfg.MaxRetries,
		retryBaseDelay:  time.Second,
		maxRetryDelay:   30 * time.Second,
		minInterval:     cfg.RequestInterval(),
		defaultPageSize: cfg.MaxMessagesDisplay,
		now:             time.Now,
	}

	c.sleep = func(ctx context.Context, d time.Duration) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IsLoggedIn reports whether the client holds a token and account.
func (c *Client) IsLoggedIn() bool {
	return c.token != "" && c.account != nil
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	return c.token
}

// CurrentAccount returns the logged-in account, nil when logged out.
func (c *Client) CurrentAccount() *Account {
	return c.account
}

// RequestCount returns the number of outbound HTTP calls made so far.
func (c *Client) RequestCount() int64 {
	return c.requestCount
}

// RestoreSession installs a previously saved token and account, for example
// from the on-disk session snapshot. Both must be present.
func (c *Client) RestoreSession(token string, account *Account) error {
	if token == "" || account == nil {
		return fmt.Errorf("%w: session requires both token and account", ErrValidation)
	}
	c.token = token
	c.account = account
	return nil
}

// Logout clears the session. Account-scoped cache entries are invalidated
// before the account reference is dropped, since the key is derived from it.
func (c *Client) Logout() {
	if c.account != nil {
		c.log.Info().Str("address", c.account.Address).Msg("logging out")
		c.cache.Delete(c.firstPageKey(c.account.ID))
	}

	c.token = ""
	c.account = nil
	c.httpClient.CloseIdleConnections()
}

// AccountStats returns usage statistics for the logged-in account.
func (c *Client) AccountStats() (*AccountStats, error) {
	if !c.IsLoggedIn() {
		return nil, fmt.Errorf("%w: no account logged in", ErrAuthentication)
	}

	percentage := 0.0
	if c.account.Quota > 0 {
		percentage = float64(c.account.Used) / float64(c.account.Quota) * 100
		percentage = math.Round(percentage*100) / 100
	}

	return &AccountStats{
		Address:         c.account.Address,
		QuotaUsed:       c.account.Used,
		QuotaTotal:      c.account.Quota,
		QuotaPercentage: percentage,
		CreatedAt:       c.account.CreatedAt,
		UpdatedAt:       c.account.UpdatedAt,
		RequestCount:    c.requestCount,
	}, nil
}

// CacheStats returns statistics from the underlying cache store.
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// ClearCache empties the cache store.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.log.Info().Msg("cache cleared")
}
