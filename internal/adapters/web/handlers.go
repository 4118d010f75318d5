package web

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/usecases"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
	"github.com/tubededentifrice/twitter-clone/templates/components"
	"github.com/tubededentifrice/twitter-clone/templates/pages"
)

// pageTimeout bounds everything a single page needs from the API.
const pageTimeout = 30 * time.Second

// UseCases groups the application operations the handlers drive.
type UseCases struct {
	Feed    *usecases.GetFeedUseCase
	Tweet   *usecases.GetTweetUseCase
	Post    *usecases.PostTweetUseCase
	React   *usecases.ReactToTweetUseCase
	Profile *usecases.GetProfileUseCase
	Follow  *usecases.FollowUseCase
	Auth    *usecases.AuthUseCase
}

// HealthChecker reports whether the upstream API answers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	uc       UseCases
	sessions ViewerSource
	health   HealthChecker
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(uc UseCases, sessions ViewerSource, health HealthChecker) *Handlers {
	return &Handlers{
		uc:       uc,
		sessions: sessions,
		health:   health,
		now:      time.Now,
	}
}

// render is a helper to render templ components.
func render(c *fiber.Ctx, component templ.Component) error {
	return renderStatus(c, fiber.StatusOK, component)
}

func renderStatus(c *fiber.Ctx, status int, component templ.Component) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(status)))(c)
}

func isHTMX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

func (h *Handlers) layout(title string, flash components.Flash) pages.Layout {
	return pages.Layout{Title: title, Viewer: h.sessions.Viewer(), Flash: flash}
}

// viewerKey identifies one browsing viewer for stale-response detection.
func (h *Handlers) viewerKey(c *fiber.Ctx) string {
	return h.sessions.Viewer() + "@" + c.IP()
}

func errorFlash(msg string) components.Flash {
	return components.Flash{Message: msg, Kind: "error"}
}

func infoFlash(msg string) components.Flash {
	return components.Flash{Message: msg, Kind: "info"}
}

// authRedirect sends the viewer to the login page. HTMX requests are told
// to navigate with HX-Redirect since a 303 would be followed in place.
func (h *Handlers) authRedirect(c *fiber.Ctx) error {
	if isHTMX(c) {
		c.Set("HX-Redirect", "/login")
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// backTo returns the local path of the Referer, or fallback. Only the path
// and query are kept so the redirect never leaves this site.
func backTo(c *fiber.Ctx, fallback string) string {
	ref := c.Get(fiber.HeaderReferer)
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// Health reports liveness and whether the upstream API answers.
func (h *Handlers) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := h.health.Health(ctx); err != nil {
		log.GlobalWarnCtx(ctx, "upstream health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"api":    err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "api": "ok"})
}

// ErrorHandler renders errors that escaped a handler: the error placeholder
// for HTMX requests, the error page otherwise.
func (h *Handlers) ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := friendlyError(err)

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		status = ferr.Code
		msg = ferr.Message
		if status == fiber.StatusNotFound && strings.HasPrefix(msg, "Cannot ") {
			msg = "This page doesn't exist."
		}
	} else {
		status = statusFor(err)
	}

	if isHTMX(c) {
		return renderStatus(c, status, components.ErrorMessage(msg))
	}
	return renderStatus(c, status, pages.Error(pages.ErrorData{
		Layout:  h.layout("Error", components.Flash{}),
		Message: msg,
	}))
}

// friendlyError returns a neutral, non-blaming error message.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrTweetNotFound):
		return "This tweet couldn't be found. It might have been deleted."
	case errors.Is(err, domain.ErrUserNotFound):
		return "This user doesn't exist."
	case errors.Is(err, domain.ErrInvalidTweetRef):
		return "That doesn't look like a tweet. Paste a tweet id or a link to a tweet."
	case errors.Is(err, domain.ErrEmptyContent):
		return "Your tweet is empty. Write something first."
	case errors.Is(err, domain.ErrContentTooLong):
		return "Your tweet is over 280 characters. Shorten it and try again."
	case errors.Is(err, domain.ErrInvalidReaction):
		return "That reaction isn't supported."
	case errors.Is(err, usecases.ErrMissingCredentials):
		return "Username and password are required."
	case errors.Is(err, domain.ErrAuthRequired):
		return "Please log in to continue."
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "The service is having trouble right now. Please try again in a moment."
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "Can't reach the server. Check your connection and try again."
	case errors.Is(err, domain.ErrMalformedResponse):
		return "The server sent an unexpected answer. Please try again."
	case errors.Is(err, domain.ErrServerRejected):
		if detail := domain.DetailOf(err); detail != "" {
			return sentence(detail)
		}
		return "The server couldn't complete that request. Please try again."
	default:
		return "Something went wrong. Please try again in a moment."
	}
}

// statusFor picks the response status for a failed operation.
func statusFor(err error) int {
	var rej *domain.RejectedError
	switch {
	case errors.Is(err, domain.ErrTweetNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrEmptyContent), errors.Is(err, domain.ErrContentTooLong):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTweetRef), errors.Is(err, domain.ErrInvalidReaction),
		errors.Is(err, usecases.ErrMissingCredentials):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAuthRequired):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrServiceUnavailable), errors.Is(err, domain.ErrNetworkUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &rej) && rej.Status >= 400 && rej.Status < 500:
		return rej.Status
	case errors.Is(err, domain.ErrServerRejected), errors.Is(err, domain.ErrMalformedResponse):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
