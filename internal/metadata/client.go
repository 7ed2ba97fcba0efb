// Package metadata is a rate-limited, retrying client for the MusicBrainz
// discography service. All requests — regardless of caller — funnel through
// a single FIFO worker so the upstream never sees more than one outstanding
// request and never less than a one-second gap between attempts.
package metadata

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Config configures a Client. Zero values are replaced with the spec's
// defaults in NewClient.
type Config struct {
	BaseURL        string
	UserAgent      string
	MinInterval    time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
}

const defaultBaseURL = "https://musicbrainz.org/ws/2"

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = "crate/dev (selfhosted)"
	}
	if c.MinInterval == 0 {
		c.MinInterval = time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	return c
}

// Client is the process-wide FIFO-serialized MusicBrainz client.
type Client struct {
	cfg        Config
	httpClient *http.Client
	work       chan workRequest

	mu             sync.Mutex
	lastAttemptEnd time.Time
}

type workRequest struct {
	ctx      context.Context
	path     string
	resultCh chan workResult
}

type workResult struct {
	body []byte
	err  error
}

// NewClient starts the background worker goroutine and returns a ready
// Client. There is exactly one worker per Client; callers should share a
// single process-wide instance.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		work:       make(chan workRequest, 64),
	}
	go c.runWorker()
	return c
}

func (c *Client) runWorker() {
	for req := range c.work {
		body, err := c.executeWithRetry(req.ctx, req.path)
		req.resultCh <- workResult{body: body, err: err}
	}
}

// get enqueues path onto the FIFO queue and blocks for its result.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resultCh := make(chan workResult, 1)
	select {
	case c.work <- workRequest{ctx: ctx, path: path, resultCh: resultCh}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-resultCh:
		return res.body, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// executeWithRetry performs up to cfg.MaxRetries+1 attempts for one logical
// request, pacing every attempt (including retries) against the global
// last-attempt-end timestamp.
func (c *Client) executeWithRetry(ctx context.Context, path string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		c.paceAttempt()

		body, status, retryAfter, err := c.attemptOnce(ctx, path)

		c.mu.Lock()
		c.lastAttemptEnd = time.Now()
		c.mu.Unlock()

		if err != nil {
			lastErr = fmt.Errorf("request %s: %w", path, err)
			if attempt == c.cfg.MaxRetries {
				return nil, lastErr
			}
			continue
		}

		if status == http.StatusOK {
			return body, nil
		}

		lastErr = NewUpstreamError(status, body)

		if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
			if attempt == c.cfg.MaxRetries {
				return nil, lastErr
			}
			if retryAfter > 0 {
				time.Sleep(retryAfter)
			} else {
				backoff := time.Duration(500*math.Pow(2, float64(attempt))) * time.Millisecond
				time.Sleep(backoff)
			}
			continue
		}

		return nil, lastErr
	}

	return nil, lastErr
}

func (c *Client) paceAttempt() {
	c.mu.Lock()
	wait := c.cfg.MinInterval - time.Since(c.lastAttemptEnd)
	c.mu.Unlock()
	if wait > 0 {
		time.Sleep(wait)
	}
}

// attemptOnce performs a single HTTP GET, returning the body, status code,
// and (for 429/503) the parsed Retry-After duration.
func (c *Client) attemptOnce(ctx context.Context, path string) ([]byte, int, time.Duration, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, 0, err
	}

	var retryAfter time.Duration
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		if raw := resp.Header.Get("Retry-After"); raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
	}

	return body, resp.StatusCode, retryAfter, nil
}
