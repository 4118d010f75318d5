package web

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/tubededentifrice/twitter-clone/internal/metrics"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// ActionLimiter caps state-changing requests (posting, reacting,
// following) per client IP over a sliding window.
type ActionLimiter struct {
	actions map[string][]time.Time
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewActionLimiter creates a limiter allowing limit actions per window.
func NewActionLimiter(limit int, window time.Duration) *ActionLimiter {
	rl := &ActionLimiter{
		actions: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

// Allow records an action for ip and reports whether it is within the limit.
// Rejected actions are not recorded.
func (rl *ActionLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	recent := recentSince(rl.actions[ip], now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.actions[ip] = recent
		return false
	}
	rl.actions[ip] = append(recent, now)
	return true
}

// Middleware rejects requests over the limit with 429.
func (rl *ActionLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.limit <= 0 || rl.Allow(c.IP()) {
			return c.Next()
		}
		log.GlobalWarnCtx(c.UserContext(), "action rate limit exceeded", "ip", c.IP(), "path", c.Path())
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rl.retryAfter()))
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many actions. Please wait a moment and try again.")
	}
}

// retryAfter is the window in whole seconds, rounded up.
func (rl *ActionLimiter) retryAfter() int {
	secs := int((rl.window + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Close stops the cleanup loop.
func (rl *ActionLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

func recentSince(timestamps []time.Time, cutoff time.Time) []time.Time {
	var recent []time.Time
	for _, t := range timestamps {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}

// cleanup periodically removes IPs with no recent actions.
func (rl *ActionLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-rl.window)
			for ip, timestamps := range rl.actions {
				if recent := recentSince(timestamps, cutoff); len(recent) == 0 {
					delete(rl.actions, ip)
				} else {
					rl.actions[ip] = recent
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RequestIDConfig returns the configuration for Fiber's requestid middleware.
// Uses X-Request-ID header, generates UUID if not present.
func RequestIDConfig() requestid.Config {
	return requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: "requestid",
	}
}

// RequestIDToContextMiddleware bridges Fiber's requestid to pkg/log context,
// from where the API client forwards it upstream.
// Must be used AFTER requestid.New() middleware.
func RequestIDToContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			c.SetUserContext(log.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// ViewerSource reports the logged-in username, "" when anonymous.
type ViewerSource interface {
	Viewer() string
}

// ViewerToContextMiddleware tags the request context with the logged-in
// viewer so every log line of the request carries it.
func ViewerToContextMiddleware(sessions ViewerSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if viewer := sessions.Viewer(); viewer != "" {
			c.SetUserContext(log.WithViewer(c.UserContext(), viewer))
		}
		return c.Next()
	}
}

// RequestLoggerMiddleware logs HTTP requests in structured JSON format.
// Must be used AFTER RequestIDToContextMiddleware.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := responseStatus(c, err)

		ctx := c.UserContext()
		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"ip", c.IP(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
		}
		if c.Get("HX-Request") == "true" {
			fields = append(fields, "htmx", true)
		}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case status >= 500:
			log.GlobalErrorCtx(ctx, "request completed", fields...)
		case status >= 400:
			log.GlobalWarnCtx(ctx, "request completed", fields...)
		default:
			log.GlobalInfoCtx(ctx, "request completed", fields...)
		}

		return err
	}
}

// MetricsMiddleware counts handled requests by route pattern and status class.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, metrics.StatusClass(responseStatus(c, err))).Inc()
		return err
	}
}

// responseStatus is the status the client will see, including errors
// that the app's error handler has not turned into a response yet.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code
	}
	return fiber.StatusInternalServerError
}
