package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/flowtower/pkg/buildinfo"
	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/httputil"
	"github.com/matzehuels/flowtower/pkg/observability"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

const (
	// DefaultTTL is how long list and detail responses stay cached.
	DefaultTTL = time.Minute

	// StatsTTL matches the dashboard's refresh interval so a poll never
	// reads a stale entry.
	StatsTTL = 5 * time.Second

	// DiagramTTL applies to workflow definition diagrams, which change only
	// when the workflow is redeployed.
	DiagramTTL = 10 * time.Minute

	maxErrorBody = 4 << 10
)

// Client talks to the workflow engine's REST API.
type Client struct {
	base     *url.URL
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	attempts int
	delay    time.Duration
	headers  map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = httputil.NewHTTPClient(d) }
}

// WithCache stores responses in cc. A non-positive ttl keeps [DefaultTTL].
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyer replaces the cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// NewClient creates a client for baseURL, or [DefaultBaseURL] if it is empty.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base URL")
	}

	c := &Client{
		base:     base,
		http:     httputil.NewHTTPClient(0),
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		ttl:      DefaultTTL,
		attempts: 3,
		delay:    500 * time.Millisecond,
		headers:  map[string]string{"Accept": "application/json", "User-Agent": buildinfo.UserAgent()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// get fetches path, decoding the body into T. Responses are cached under
// the key for q.
func get[T any](ctx context.Context, c *Client, q cache.Query, path string, values url.Values, ttl time.Duration) (T, error) {
	var v T
	data, err := c.cached(ctx, q, ttl, path, values)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return v, nil
}

// cached returns the body for path from the cache, or fetches and stores it.
func (c *Client) cached(ctx context.Context, q cache.Query, ttl time.Duration, path string, values url.Values) ([]byte, error) {
	key := c.keyer.QueryKey(q)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	var data []byte
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		data, err = c.fetch(ctx, path, values)
		return err
	})
	if err != nil {
		err = unwrapRetryable(err)
		if errors.GetCode(err) == "" && stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "GET %s", path)
		}
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, ttl)
	return data, nil
}

// fetch performs one GET request and returns the body of a 2xx response.
func (c *Client) fetch(ctx context.Context, path string, values url.Values) ([]byte, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if len(values) > 0 {
		u.RawQuery = values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		return nil, classify(ctx, path, err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, path); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", path))
	}
	return body, nil
}

func classify(ctx context.Context, path string, err error) error {
	if ctx.Err() != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "GET %s", path)
		}
		return ctx.Err()
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return httputil.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "GET %s", path))
	}
	return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", path))
}

func checkStatus(resp *http.Response, path string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", path)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return httputil.Retryable(errors.Wrap(errors.ErrCodeRateLimited,
			&errors.RateLimitedError{RetryAfter: retryAfter}, "GET %s", path))
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeUpstream, "GET %s: status %d%s", path, code, detail(resp)))
	default:
		return errors.New(errors.ErrCodeUpstream, "GET %s: status %d%s", path, code, detail(resp))
	}
}

// detail extracts the "detail" field FastAPI puts in error bodies.
func detail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != nil {
		return fmt.Sprintf(": %v", payload.Detail)
	}
	return ""
}

func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}
