// Package api is the client of the microblogging REST API. Every call is
// rate limited, guarded by a circuit breaker and classified into the
// domain error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/metrics"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// CredentialSource yields the Authorization header value, or "" when
// nobody is logged in.
type CredentialSource interface {
	Authorization() string
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	RPS         float64
	Burst       int
	MaxAttempts int
	BaseBackoff time.Duration
	Breaker     BreakerOptions
}

// BreakerOptions configures the circuit breaker.
type BreakerOptions struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// Client is the HTTP client of the REST API.
type Client struct {
	baseURL     string
	creds       CredentialSource
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	maxAttempts int
	baseBackoff time.Duration
}

// New creates a client. creds may be nil for anonymous use.
func New(opts Options, creds CredentialSource) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.RPS <= 0 {
		opts.RPS = 20
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		creds:       creds,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		breaker:     newBreaker(opts.Breaker),
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
	}
}

func newBreaker(o BreakerOptions) *gobreaker.CircuitBreaker {
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = 0.6
	}
	if o.MinRequests == 0 {
		o.MinRequests = 10
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "api",
		MaxRequests: o.MaxRequests,
		Interval:    o.Interval,
		Timeout:     o.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < o.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= o.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			log.GlobalWarn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return !isOutage(err)
		},
	})
}

// isOutage reports errors that say the API is unhealthy. Rejections of a
// single request (4xx) do not count against the breaker.
func isOutage(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrNetworkUnavailable) {
		return true
	}
	var rej *domain.RejectedError
	return errors.As(err, &rej) && rej.Status >= http.StatusInternalServerError
}

// call is the single path every endpoint goes through. notFound is the
// sentinel a 404 should match, or nil.
func (c *Client) call(ctx context.Context, endpoint, method, path string, in, out any, notFound error) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, endpoint, method, path, in, out, notFound)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}

	metrics.ObserveAPICall(endpoint, outcome(err), start)
	if err != nil {
		log.GlobalDebugCtx(ctx, "api call failed", "endpoint", endpoint, "method", method, "path", path, "error", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, endpoint, method, path string, in, out any, notFound error) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	c.headers(ctx, req, body != nil)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}

	var resp *http.Response
	if method == http.MethodGet {
		resp, err = c.doWithRetry(ctx, endpoint, req)
	} else {
		resp, err = c.httpClient.Do(req)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &domain.RejectedError{
			Status:   resp.StatusCode,
			Detail:   readDetail(resp.Body),
			NotFound: notFound,
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, endpoint, err)
	}
	return nil
}

func (c *Client) headers(ctx context.Context, req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if auth := c.creds.Authorization(); auth != "" {
			req.Header.Set("Authorization", auth)
		}
	}
	id := log.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", id)
}

// doWithRetry retries idempotent requests on transport errors, 429 and 5xx
// with exponential backoff, honouring Retry-After.
func (c *Client) doWithRetry(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.IncAPIRetry(endpoint)
		}
		resp, err := c.httpClient.Do(req.Clone(ctx))
		last := attempt == c.maxAttempts
		if err == nil {
			if !retryable(resp.StatusCode) || last {
				return resp, nil
			}
			wait := retryAfter(resp.Header.Get("Retry-After"), backoff)
			_ = resp.Body.Close()
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			backoff *= 2
			continue
		}
		lastErr = err
		if last || ctx.Err() != nil {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func retryAfter(header string, fallback time.Duration) time.Duration {
	if header == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readDetail extracts the API's "detail" message: either a string or a
// list of validation errors carrying "msg".
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "breaker_open"
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "network"
	case errors.Is(err, domain.ErrAuthRequired):
		return "auth"
	case errors.Is(err, domain.ErrServerRejected):
		return "rejected"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}
