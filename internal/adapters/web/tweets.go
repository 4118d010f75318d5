package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/view"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
	"github.com/tubededentifrice/twitter-clone/templates/components"
	"github.com/tubededentifrice/twitter-clone/templates/pages"
	"github.com/tubededentifrice/twitter-clone/templates/partials"
)

// Feed renders the home timeline with the compose form.
func (h *Handlers) Feed(c *fiber.Ctx) error {
	return h.renderFeed(c, fiber.StatusOK, components.Flash{}, "")
}

// renderFeed renders the home page. draft is kept in the compose form
// after a failed submit.
func (h *Handlers) renderFeed(c *fiber.Ctx, status int, flash components.Flash, draft string) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	data := pages.HomeData{
		Layout:  h.layout("Home", flash),
		Compose: components.NewComposeForm("/tweets", "", draft),
	}

	tweets, err := h.uc.Feed.Execute(ctx)
	if err != nil {
		log.GlobalErrorCtx(ctx, "load feed failed", "error", err)
		data.LoadError = friendlyError(err)
		if status == fiber.StatusOK {
			status = statusFor(err)
		}
	} else {
		data.Feed = view.NewFeed(tweets, h.now(), true)
	}

	return renderStatus(c, status, pages.Home(data))
}

// PostTweet creates a tweet, or a reply when the route carries a parent id.
func (h *Handlers) PostTweet(c *fiber.Ctx) error {
	if h.sessions.Viewer() == "" {
		return h.authRedirect(c)
	}

	var form tweetForm
	formErr := bindForm(c, &form)

	parentID := c.Params("id")
	if parentID == "" {
		parentID = form.ParentID
	}
	if formErr != nil {
		return h.renderComposeFailure(c, parentID, fiber.StatusBadRequest, sentence(formErr.Error()), form.Content)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	tweet, err := h.uc.Post.Execute(ctx, form.Content, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return h.authRedirect(c)
		}
		log.GlobalWarnCtx(ctx, "post tweet failed", "parent_id", parentID, "error", err)
		return h.renderComposeFailure(c, parentID, statusFor(err), friendlyError(err), form.Content)
	}

	if parentID != "" {
		return c.Redirect(view.TweetPath(parentID)+"#tweet-"+tweet.ID, fiber.StatusSeeOther)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handlers) renderComposeFailure(c *fiber.Ctx, parentID string, status int, msg, draft string) error {
	if parentID != "" {
		return h.renderTweet(c, parentID, status, errorFlash(msg), draft)
	}
	return h.renderFeed(c, status, errorFlash(msg), draft)
}

// TweetDetail renders a tweet with its nested replies and the reply form.
func (h *Handlers) TweetDetail(c *fiber.Ctx) error {
	return h.renderTweet(c, c.Params("id"), fiber.StatusOK, components.Flash{}, "")
}

func (h *Handlers) renderTweet(c *fiber.Ctx, id string, status int, flash components.Flash, draft string) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	tweet, err := h.uc.Tweet.Execute(ctx, h.viewerKey(c), id)
	if errors.Is(err, domain.ErrStaleResponse) {
		// The viewer already asked for another page; nothing to show.
		return c.SendStatus(fiber.StatusNoContent)
	}

	data := pages.TweetData{
		Layout:  h.layout("Tweet", flash),
		TweetID: id,
		Reply:   components.NewComposeForm(view.TweetPath(id)+"/replies", id, draft),
	}
	if err != nil {
		log.GlobalErrorCtx(ctx, "load tweet failed", "tweet_id", id, "error", err)
		data.LoadError = friendlyError(err)
		if status == fiber.StatusOK {
			status = statusFor(err)
		}
	} else {
		data.Title = "@" + tweet.AuthorUsername
		data.Thread = view.RenderReplyTree(tweet, h.now())
	}

	return renderStatus(c, status, pages.Tweet(data))
}

// Replies renders only the replies section of a tweet, for HTMX refreshes.
func (h *Handlers) Replies(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	id := c.Params("id")
	tweet, err := h.uc.Tweet.Execute(ctx, h.viewerKey(c), id)
	if errors.Is(err, domain.ErrStaleResponse) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		log.GlobalErrorCtx(ctx, "load replies failed", "tweet_id", id, "error", err)
		return renderStatus(c, statusFor(err), components.ErrorMessage(friendlyError(err)))
	}
	return render(c, partials.Replies(view.RenderReplyTree(tweet, h.now())))
}

// React applies a like or dislike. HTMX requests get the updated reaction
// bar; plain form posts are redirected back to where they came from.
func (h *Handlers) React(c *fiber.Ctx) error {
	if h.sessions.Viewer() == "" {
		return h.authRedirect(c)
	}

	id := c.Params("id")
	var form reactionForm
	if err := bindForm(c, &form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, sentence(err.Error()))
	}
	reaction, err := domain.ParseReaction(form.ReactionType)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, friendlyError(err))
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), pageTimeout)
	defer cancel()

	tweet, err := h.uc.React.Execute(ctx, id, reaction)
	var flash components.Flash
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return h.authRedirect(c)
		}
		log.GlobalWarnCtx(ctx, "reaction failed", "tweet_id", id, "reaction", reaction, "error", err)
		if tweet.ID == "" {
			// Nothing was applied locally, e.g. the tweet does not exist.
			return fiber.NewError(statusFor(err), friendlyError(err))
		}
		flash = errorFlash("Your reaction couldn't be saved. " + friendlyError(err))
	}

	if isHTMX(c) {
		return render(c, partials.ReactionUpdate(view.NewCard(tweet, h.now(), view.CardOptions{}), flash))
	}
	return c.Redirect(backTo(c, view.TweetPath(id)), fiber.StatusSeeOther)
}

// Open navigates to a tweet typed or pasted into the "open tweet" box.
func (h *Handlers) Open(c *fiber.Ctx) error {
	var form openForm
	if err := bindForm(c, &form); err != nil {
		return h.renderFeed(c, fiber.StatusBadRequest, errorFlash(friendlyError(domain.ErrInvalidTweetRef)), "")
	}

	id, err := ParseTweetRef(form.Ref)
	if err != nil {
		log.GlobalInfoCtx(c.UserContext(), "invalid tweet reference", "ref", form.Ref)
		return h.renderFeed(c, fiber.StatusBadRequest, errorFlash(friendlyError(err)), "")
	}
	return c.Redirect(view.TweetPath(id), fiber.StatusSeeOther)
}
