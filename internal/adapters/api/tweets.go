package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// ListTweets returns the top-level feed, newest first.
func (c *Client) ListTweets(ctx context.Context) ([]domain.Tweet, error) {
	var dtos []tweetDTO
	if err := c.call(ctx, "list_tweets", http.MethodGet, "/api/tweets/", nil, &dtos, nil); err != nil {
		return nil, err
	}
	return tweetsToDomain(dtos)
}

// GetTweet returns a tweet with its reply tree.
func (c *Client) GetTweet(ctx context.Context, tweetID string) (domain.Tweet, error) {
	var dto tweetDTO
	path := "/api/tweets/" + url.PathEscape(tweetID)
	if err := c.call(ctx, "get_tweet", http.MethodGet, path, nil, &dto, domain.ErrTweetNotFound); err != nil {
		return domain.Tweet{}, err
	}
	return dto.toDomain()
}

// ListUserTweets returns a user's top-level tweets.
func (c *Client) ListUserTweets(ctx context.Context, username string) ([]domain.Tweet, error) {
	var dtos []tweetDTO
	path := "/api/tweets/user/" + url.PathEscape(username)
	if err := c.call(ctx, "list_user_tweets", http.MethodGet, path, nil, &dtos, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return tweetsToDomain(dtos)
}

// CountUserTweets returns how many tweets (replies included) a user wrote.
func (c *Client) CountUserTweets(ctx context.Context, username string) (int, error) {
	var out countResponse
	path := "/api/tweets/count/" + url.PathEscape(username)
	if err := c.call(ctx, "count_user_tweets", http.MethodGet, path, nil, &out, domain.ErrUserNotFound); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// CreateTweet posts a tweet, or a reply when parentID is set.
func (c *Client) CreateTweet(ctx context.Context, content, parentID string) (domain.Tweet, error) {
	in := createTweetRequest{Content: content}
	if parentID != "" {
		pid := id(parentID)
		in.ParentID = &pid
	}
	var dto tweetDTO
	if err := c.call(ctx, "create_tweet", http.MethodPost, "/api/tweets/", in, &dto, domain.ErrTweetNotFound); err != nil {
		return domain.Tweet{}, err
	}
	return dto.toDomain()
}

// React sends one reaction. The server toggles or switches it the same way
// domain.ApplyReaction does.
func (c *Client) React(ctx context.Context, tweetID string, r domain.Reaction) (domain.ReactionSummary, error) {
	var out reactionResponse
	path := "/api/tweets/" + url.PathEscape(tweetID) + "/reaction"
	in := reactionRequest{ReactionType: string(r)}
	if err := c.call(ctx, "react", http.MethodPost, path, in, &out, domain.ErrTweetNotFound); err != nil {
		return domain.ReactionSummary{}, err
	}
	return out.toDomain()
}
