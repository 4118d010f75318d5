package web

import (
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/view"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
	"github.com/tubededentifrice/twitter-clone/templates/components"
	"github.com/tubededentifrice/twitter-clone/templates/pages"
)

// Profile renders a user's profile with their tweets and follow lists.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	return h.renderProfile(c, c.Params("username"), fiber.StatusOK, components.Flash{})
}

func (h *Handlers) renderProfile(c *fiber.Ctx, username string, status int, flash components.Flash) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	data := pages.ProfileData{Layout: h.layout("@"+username, flash)}

	page, err := h.uc.Profile.Execute(ctx, h.sessions.Viewer(), username)
	if err != nil {
		log.GlobalErrorCtx(ctx, "load profile failed", "username", username, "error", err)
		data.LoadError = friendlyError(err)
		if status == fiber.StatusOK {
			status = statusFor(err)
		}
		return renderStatus(c, status, pages.Profile(data))
	}

	data.Profile = page.Profile
	if !page.Profile.CreatedAt.IsZero() {
		data.Joined = page.Profile.CreatedAt.Format("January 2006")
	}
	data.Tweets = view.NewFeed(page.Tweets, h.now(), false)
	data.TweetCount = page.TweetCount
	data.Followers = page.Followers
	data.Following = page.Following
	data.IsSelf = page.IsSelf

	return renderStatus(c, status, pages.Profile(data))
}

// Follow follows the user in the route.
func (h *Handlers) Follow(c *fiber.Ctx) error {
	return h.changeFollow(c, true)
}

// Unfollow unfollows the user in the route.
func (h *Handlers) Unfollow(c *fiber.Ctx) error {
	return h.changeFollow(c, false)
}

func (h *Handlers) changeFollow(c *fiber.Ctx, follow bool) error {
	if h.sessions.Viewer() == "" {
		return h.authRedirect(c)
	}

	username := c.Params("username")
	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	if err := h.uc.Follow.Execute(ctx, username, follow); err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return h.authRedirect(c)
		}
		log.GlobalWarnCtx(ctx, "follow change failed", "username", username, "follow", follow, "error", err)
		return h.renderProfile(c, username, statusFor(err), errorFlash(friendlyError(err)))
	}
	return c.Redirect(view.ProfilePath(username), fiber.StatusSeeOther)
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	if h.sessions.Viewer() != "" {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	var flash components.Flash
	if c.Query("registered") != "" {
		flash = infoFlash("Your account is ready. Log in to start tweeting.")
	}
	return render(c, pages.Login(pages.LoginData{
		Layout:   h.layout("Log in", flash),
		Username: c.Query("username"),
	}))
}

// Login exchanges the submitted credentials for a session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := bindForm(c, &form); err != nil {
		return h.renderLogin(c, fiber.StatusBadRequest, sentence(err.Error()), form.Username)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	_, err := h.uc.Auth.Login(ctx, domain.Credentials{Username: form.Username, Password: form.Password})
	if err != nil {
		log.GlobalWarnCtx(ctx, "login failed", "username", form.Username, "error", err)
		msg := friendlyError(err)
		if errors.Is(err, domain.ErrAuthRequired) {
			msg = "Invalid username or password."
			if detail := domain.DetailOf(err); detail != "" {
				msg = sentence(detail)
			}
		}
		return h.renderLogin(c, statusFor(err), msg, form.Username)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handlers) renderLogin(c *fiber.Ctx, status int, msg, username string) error {
	return renderStatus(c, status, pages.Login(pages.LoginData{
		Layout:   h.layout("Log in", errorFlash(msg)),
		Username: username,
	}))
}

// Logout ends the session.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if err := h.uc.Auth.Logout(c.UserContext()); err != nil {
		log.GlobalErrorCtx(c.UserContext(), "logout failed", "error", err)
		return err
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// RegisterPage renders the sign-up form.
func (h *Handlers) RegisterPage(c *fiber.Ctx) error {
	if h.sessions.Viewer() != "" {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return render(c, pages.Register(pages.RegisterData{Layout: h.layout("Sign up", components.Flash{})}))
}

// Register creates an account and sends the viewer to the login form.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var form registerForm
	if err := bindForm(c, &form); err != nil {
		return h.renderRegister(c, fiber.StatusBadRequest, sentence(err.Error()), form)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	err := h.uc.Auth.Register(ctx, domain.Registration{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		log.GlobalWarnCtx(ctx, "registration failed", "username", form.Username, "error", err)
		return h.renderRegister(c, statusFor(err), friendlyError(err), form)
	}
	return c.Redirect("/login?registered=1&username="+url.QueryEscape(form.Username), fiber.StatusSeeOther)
}

func (h *Handlers) renderRegister(c *fiber.Ctx, status int, msg string, form registerForm) error {
	return renderStatus(c, status, pages.Register(pages.RegisterData{
		Layout:   h.layout("Sign up", errorFlash(msg)),
		Username: form.Username,
		Email:    form.Email,
	}))
}
