// Package transport is the shared HTTP client for upstream place and
// knowledge sources. Every request is paced by a rate limiter, guarded by a
// circuit breaker and retried with linear backoff on HTTP 429.
package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client performs paced, retried HTTP requests against one upstream.
type Client struct {
	source    string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	userAgent string
	retries   int
	backoff   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithInterval sets the minimum spacing between requests. Zero disables
// pacing.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, constants.BurstSize)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), constants.BurstSize)
	}
}

// WithRetries sets how often a 429 response is retried and the backoff
// unit; attempt n waits n+1 units.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// New creates a client for the named upstream.
func New(source string, opts ...Option) *Client {
	c := &Client{
		source:    source,
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		limiter:   rate.NewLimiter(rate.Every(constants.DefaultSleep), constants.BurstSize),
		userAgent: constants.DefaultUserAgent,
		retries:   constants.MaxRetries,
		backoff:   constants.RetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    source,
		Timeout: constants.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= constants.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logging.Warn().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
	return c
}

// Source returns the upstream name the client was created for.
func (c *Client) Source() string {
	return c.source
}

// Get performs a GET request with query appended to rawURL.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (*http.Response, error) {
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, rawURL, nil, "")
}

// PostForm performs a form-encoded POST request.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, rawURL, []byte(form.Encode()), "application/x-www-form-urlencoded")
}

// GetJSON performs a GET request and decodes a JSON response into target.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, target any) error {
	resp, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, c.source, target)
}

// PostFormJSON performs a form POST and decodes a JSON response into target.
func (c *Client) PostFormJSON(ctx context.Context, rawURL string, form url.Values, target any) error {
	resp, err := c.PostForm(ctx, rawURL, form)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, c.source, target)
}

// Do sends a request, waiting on the limiter before every attempt. A 429
// is retried until the retry budget is spent; the final 429 is returned as
// an APIError. Server errors and transport failures count against the
// circuit breaker.
func (c *Client) Do(ctx context.Context, method, rawURL string, body []byte, contentType string) (*http.Response, error) {
	log := logging.FromContext(ctx)

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.execute(ctx, method, rawURL, body, contentType)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		msg := drain(resp)
		if attempt >= c.retries {
			return nil, &errors.APIError{Source: c.source, StatusCode: resp.StatusCode, Message: msg, Endpoint: rawURL}
		}

		wait := c.backoff * time.Duration(attempt+1)
		if wait > constants.MaxRetryBackoff {
			wait = constants.MaxRetryBackoff
		}
		log.Debug().
			Str("source", c.source).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("Rate limited, backing off")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) execute(ctx context.Context, method, rawURL string, body []byte, contentType string) (*http.Response, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
		if err != nil {
			return nil, errors.WrapResource("create", "request", method+" "+rawURL, err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &errors.APIError{Source: c.source, StatusCode: resp.StatusCode, Message: drain(resp), Endpoint: rawURL}
		}
		return resp, nil
	})
	if err != nil {
		switch err {
		case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
			return nil, &errors.APIError{Source: c.source, StatusCode: http.StatusServiceUnavailable, Message: "circuit open", Endpoint: rawURL, Err: err}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		return nil, &errors.APIError{Source: c.source, Message: err.Error(), Endpoint: rawURL, Err: err}
	}
	return out.(*http.Response), nil
}

// drain reads and closes the body, returning at most 512 bytes of it.
func drain(resp *http.Response) string {
	defer resp.Body.Close() //nolint:errcheck
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return strings.TrimSpace(string(data))
}
