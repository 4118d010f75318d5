package usecases

import (
	"context"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// GetFeedUseCase loads the home feed.
type GetFeedUseCase struct {
	api   TweetFetcher
	store TweetStore
}

// NewGetFeedUseCase creates a new GetFeedUseCase.
func NewGetFeedUseCase(api TweetFetcher, store TweetStore) *GetFeedUseCase {
	return &GetFeedUseCase{api: api, store: store}
}

// Execute fetches the feed and replaces the local snapshot of every tweet
// in it.
func (uc *GetFeedUseCase) Execute(ctx context.Context) ([]domain.Tweet, error) {
	tweets, err := uc.api.ListTweets(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tweets {
		uc.store.Put(t)
	}
	log.GlobalDebugCtx(ctx, "feed loaded", "count", len(tweets))
	return tweets, nil
}
