// Package view maps domain tweets to render-ready view models.
// Everything here is pure: no I/O, no mutation of inputs.
package view

import (
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// CardOptions controls how a tweet card is built.
type CardOptions struct {
	ShowAuthor bool
	Navigable  bool // Clicking the card opens the tweet's detail view
}

// Card is the view model of a single tweet card.
type Card struct {
	ID            string
	Author        string
	ProfileURL    string
	DetailURL     string // Empty when the card is not navigable
	Content       string
	CreatedAt     string // Relative, e.g. "3 minutes ago"
	CreatedAtISO  string
	LikesCount    int
	DislikesCount int
	Liked         bool
	Disliked      bool
	RepliesCount  int
	ShowAuthor    bool
	Navigable     bool
}

// NewCard builds the card for t.
func NewCard(t domain.Tweet, now time.Time, opts CardOptions) Card {
	c := Card{
		ID:            t.ID,
		Author:        t.AuthorUsername,
		ProfileURL:    ProfilePath(t.AuthorUsername),
		Content:       t.Content,
		CreatedAt:     FormatRelativeTime(now, t.CreatedAt),
		CreatedAtISO:  t.CreatedAt.UTC().Format(time.RFC3339),
		LikesCount:    t.LikesCount,
		DislikesCount: t.DislikesCount,
		Liked:         t.UserReaction == domain.ReactionLike,
		Disliked:      t.UserReaction == domain.ReactionDislike,
		RepliesCount:  t.RepliesCount,
		ShowAuthor:    opts.ShowAuthor,
		Navigable:     opts.Navigable,
	}
	if opts.Navigable {
		c.DetailURL = TweetPath(t.ID)
	}
	return c
}

// NewFeed builds navigable cards for a list of tweets.
func NewFeed(tweets []domain.Tweet, now time.Time, showAuthor bool) []Card {
	cards := make([]Card, 0, len(tweets))
	for _, t := range tweets {
		cards = append(cards, NewCard(t, now, CardOptions{ShowAuthor: showAuthor, Navigable: true}))
	}
	return cards
}

// TweetPath is the detail page of a tweet.
func TweetPath(id string) string {
	return "/tweets/" + url.PathEscape(id)
}

// ReactionPath is the form target for reacting to a tweet.
func ReactionPath(id string) string {
	return TweetPath(id) + "/reaction"
}

// ProfilePath is the profile page of a user.
func ProfilePath(username string) string {
	return "/users/" + url.PathEscape(username)
}

// CounterWarnAt is the length after which the compose counter turns red.
const CounterWarnAt = 230

// Counter is the compose form character counter.
type Counter struct {
	Text string // e.g. "12/280"
	Warn bool
}

// ContentCounter returns the counter for a draft.
func ContentCounter(content string) Counter {
	n := utf8.RuneCountInString(content)
	return Counter{
		Text: fmt.Sprintf("%d/%d", n, domain.MaxContentLength),
		Warn: n > CounterWarnAt,
	}
}
