// Package domain contains the core business entities and rules.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength is the maximum number of characters in a tweet.
const MaxContentLength = 280

// Tweet represents a single posted message, optionally a reply to another tweet.
type Tweet struct {
	ID             string
	AuthorID       string
	AuthorUsername string
	Content        string
	CreatedAt      time.Time // Server owned, never mutated locally
	ParentID       string    // Empty for top-level tweets
	LikesCount     int
	DislikesCount  int
	UserReaction   Reaction // The current viewer's reaction
	RepliesCount   int
	Replies        []Tweet // Populated on detail fetches only
}

// IsReply reports whether the tweet answers another tweet.
func (t Tweet) IsReply() bool {
	return t.ParentID != ""
}

// HasReplies reports whether the tweet carries a non-empty reply tree.
func (t Tweet) HasReplies() bool {
	return len(t.Replies) > 0
}

// ReactionState returns the reaction part of the tweet's local state.
func (t Tweet) ReactionState() ReactionState {
	return ReactionState{
		LikesCount:    t.LikesCount,
		DislikesCount: t.DislikesCount,
		UserReaction:  t.UserReaction,
	}
}

// WithReactionState returns a copy of the tweet carrying the given reaction state.
func (t Tweet) WithReactionState(s ReactionState) Tweet {
	t.LikesCount = s.LikesCount
	t.DislikesCount = s.DislikesCount
	t.UserReaction = s.UserReaction
	return t
}

// Walk visits the tweet and every reply in depth-first pre-order.
// depth is 0 for the receiver. Returning false stops descent into that
// tweet's replies.
func (t Tweet) Walk(fn func(tw Tweet, depth int) bool) {
	t.walk(fn, 0)
}

func (t Tweet) walk(fn func(Tweet, int) bool, depth int) {
	if !fn(t, depth) {
		return
	}
	for _, r := range t.Replies {
		r.walk(fn, depth+1)
	}
}

// Size returns the number of tweets in the tree rooted at t.
func (t Tweet) Size() int {
	n := 0
	t.Walk(func(Tweet, int) bool {
		n++
		return true
	})
	return n
}

// ValidateContent trims the content and checks the length bounds.
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}
