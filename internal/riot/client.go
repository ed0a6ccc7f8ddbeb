package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pable/lol-wrapped/internal/logging"
	"github.com/pable/lol-wrapped/internal/model"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	// Used when a 429 carries no Retry-After header.
	defaultRetryAfter = time.Second
)

var (
	ErrNotFound    = errors.New("riot: not found")
	ErrForbidden   = errors.New("riot: forbidden (check the API key)")
	ErrRateLimited = errors.New("riot: rate limited")
)

// StatusError is returned for unexpected non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("riot: %s returned status %d", e.URL, e.Code)
}

// Client is a rate-limited Riot API client bound to one region.
type Client struct {
	apiKey      string
	region      Region
	baseURL     string // overrides both hosts when non-empty
	httpClient  *http.Client
	limiter     *limiter
	maxAttempts int
	log         logging.Interface
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sends every request to url instead of the Riot hosts (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the default 30s-timeout HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimits replaces the development-key windows.
func WithRateLimits(limits ...RateLimit) Option {
	return func(c *Client) {
		c.limiter = newLimiter(limits)
	}
}

// WithMaxAttempts bounds how many times a 429 response is retried.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for rate-limit notices.
func WithLogger(l logging.Interface) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new Riot API client for region.
func NewClient(apiKey string, region Region, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		region: region,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter:     newLimiter(defaultLimits),
		maxAttempts: defaultMaxAttempts,
		log:         logging.Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Region returns the region the client is bound to.
func (c *Client) Region() Region {
	return c.region
}

func (c *Client) regionalURL(path string) string {
	if c.baseURL != "" {
		return c.baseURL + path
	}
	return c.region.RegionalHost() + path
}

func (c *Client) platformURL(path string) string {
	if c.baseURL != "" {
		return c.baseURL + path
	}
	return c.region.PlatformHost() + path
}

// get performs a rate-limited GET and returns the body of a 200 response.
// 429 responses are retried after Retry-After, up to maxAttempts in total.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		if err := c.limiter.wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusNotFound:
			return nil, ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, ErrForbidden
		case http.StatusTooManyRequests:
			if attempt >= c.maxAttempts {
				return nil, ErrRateLimited
			}
			wait := retryAfter(resp.Header.Get("Retry-After"))
			c.log.Warnf("429 from Riot API, waiting %s (attempt %d/%d)", wait, attempt, c.maxAttempts)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		default:
			return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
		}
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, result interface{}) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h string) time.Duration {
	if h == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(h)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// GetAccountByRiotID fetches account info by Riot ID (gameName#tagLine)
func (c *Client) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*AccountResponse, error) {
	u := c.regionalURL(fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine)))

	var account AccountResponse
	if err := c.getJSON(ctx, u, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetSummonerByPUUID fetches the platform summoner record (level, icon).
func (c *Client) GetSummonerByPUUID(ctx context.Context, puuid string) (*SummonerResponse, error) {
	u := c.platformURL("/lol/summoner/v4/summoners/by-puuid/" + url.PathEscape(puuid))

	var summoner SummonerResponse
	if err := c.getJSON(ctx, u, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// GetMatchIDs fetches one page of match ids, newest first. queue 0 means all queues.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, start, count, queue int) ([]string, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("count", strconv.Itoa(count))
	if queue != 0 {
		q.Set("queue", strconv.Itoa(queue))
	}
	u := c.regionalURL("/lol/match/v5/matches/by-puuid/" + url.PathEscape(puuid) + "/ids?" + q.Encode())

	var ids []string
	if err := c.getJSON(ctx, u, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetMatchRaw fetches match details as the undecoded JSON payload.
func (c *Client) GetMatchRaw(ctx context.Context, matchID string) ([]byte, error) {
	return c.get(ctx, c.regionalURL("/lol/match/v5/matches/"+url.PathEscape(matchID)))
}

// GetMatch fetches and decodes match details.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	raw, err := c.GetMatchRaw(ctx, matchID)
	if err != nil {
		return nil, err
	}
	var m model.Match
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode match %s: %w", matchID, err)
	}
	return &m, nil
}
