package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/observability"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 32 << 20
)

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Source reports where the body of a [Response] came from.
type Source string

const (
	SourceNetwork     Source = "network"     // fetched from the origin
	SourceCache       Source = "cache"       // fresh cache entry, no request made
	SourceRevalidated Source = "revalidated" // origin answered 304 Not Modified
	SourceStale       Source = "stale"       // origin unreachable, expired entry served
)

// Response is a fetched document.
type Response struct {
	Body   []byte
	Source Source
}

// entry is what the response cache stores per URL.
type entry struct {
	Body         []byte `json:"body"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// Client performs GET requests with default headers, retry and an optional
// response cache.
type Client struct {
	http     *http.Client
	cache    *Cache
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithCache enables the revalidating response cache.
func WithCache(c *Cache) ClientOption { return func(cl *Client) { cl.cache = c } }

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.http.Timeout = d }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(cl *Client) { cl.headers[key] = value }
}

// WithRetry overrides the retry policy.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(cl *Client) {
		cl.attempts = attempts
		cl.delay = delay
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(cl *Client) {
		if h != nil {
			cl.http = h
		}
	}
}

// NewClient creates a Client. Without options it has a 10 second timeout,
// 3 attempts with a 1 second initial backoff and no cache.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:     &http.Client{Timeout: defaultTimeout},
		headers:  map[string]string{"Accept": "application/json"},
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBytes fetches url and returns its body.
func (c *Client) GetBytes(ctx context.Context, url string) (*Response, error) {
	var (
		cached entry
		stale  bool
	)
	if c.cache != nil {
		ok, err := c.cache.Get(url, &cached)
		switch {
		case ok:
			return &Response{Body: cached.Body, Source: SourceCache}, nil
		case errors.Is(err, ErrExpired):
			stale = true
		}
	}

	var (
		fetched     *entry
		notModified bool
	)
	err := Retry(ctx, c.attempts, c.delay, func() error {
		var prev *entry
		if stale {
			prev = &cached
		}
		e, nm, err := c.fetch(ctx, url, prev)
		if err != nil {
			return err
		}
		fetched, notModified = e, nm
		return nil
	})
	if err != nil {
		if stale && IsRetryable(err) {
			return &Response{Body: cached.Body, Source: SourceStale}, nil
		}
		return nil, classify(url, err)
	}

	if notModified {
		if c.cache != nil {
			_ = c.cache.Touch(url)
		}
		return &Response{Body: cached.Body, Source: SourceRevalidated}, nil
	}
	if c.cache != nil {
		_ = c.cache.Set(url, fetched)
	}
	return &Response{Body: fetched.Body, Source: SourceNetwork}, nil
}

func (c *Client) fetch(ctx context.Context, url string, prev *entry) (*entry, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if prev != nil {
		if prev.ETag != "" {
			req.Header.Set("If-None-Match", prev.ETag)
		}
		if prev.LastModified != "" {
			req.Header.Set("If-Modified-Since", prev.LastModified)
		}
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, false, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotModified && prev != nil {
		return prev, true, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, false, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, false, Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	if len(body) > maxBodySize {
		return nil, false, fmt.Errorf("response larger than %d bytes", maxBodySize)
	}
	return &entry{
		Body:         body,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, false, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return Retryable(&apperrors.RateLimitedError{RetryAfter: time.Duration(secs) * time.Second})
	case code >= 500:
		return Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// classify attaches an error code so callers up the stack can map it to a
// CLI message or an HTTP status.
func classify(url string, err error) error {
	var rl *apperrors.RateLimitedError
	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeNotFound, err, "fetch %s", url)
	case errors.As(err, &rl):
		return apperrors.Wrap(apperrors.ErrCodeRateLimited, err, "fetch %s", url)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "fetch %s", url)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch %s", url)
	}
}
