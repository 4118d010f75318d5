package usecases

import (
	"context"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// TweetStore is the local snapshot store optimistic state lives in.
type TweetStore interface {
	Put(t domain.Tweet)
	PutTree(root domain.Tweet)
	Get(id string) (domain.Tweet, bool)
	Tree(id string) (domain.Tweet, bool)
	Update(id string, fn func(domain.Tweet) (domain.Tweet, error)) (domain.Tweet, error)
	MarkStale(id string)
	IsStale(id string) bool
	Reset()
}

// TweetFetcher reads tweets from the API.
type TweetFetcher interface {
	ListTweets(ctx context.Context) ([]domain.Tweet, error)
	GetTweet(ctx context.Context, tweetID string) (domain.Tweet, error)
	ListUserTweets(ctx context.Context, username string) ([]domain.Tweet, error)
}
