package usecases

import (
	"context"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// TweetCreator creates tweets through the API.
type TweetCreator interface {
	CreateTweet(ctx context.Context, content, parentID string) (domain.Tweet, error)
}

// PostTweetUseCase publishes a tweet or a reply.
type PostTweetUseCase struct {
	api   TweetCreator
	store TweetStore
}

// NewPostTweetUseCase creates a new PostTweetUseCase.
func NewPostTweetUseCase(api TweetCreator, store TweetStore) *PostTweetUseCase {
	return &PostTweetUseCase{api: api, store: store}
}

// Execute validates and posts content. For a reply, the parent's reply
// count is bumped locally and its tree is marked stale so the next detail
// view shows the new reply.
func (uc *PostTweetUseCase) Execute(ctx context.Context, content, parentID string) (domain.Tweet, error) {
	content, err := domain.ValidateContent(content)
	if err != nil {
		return domain.Tweet{}, err
	}

	tweet, err := uc.api.CreateTweet(ctx, content, parentID)
	if err != nil {
		return domain.Tweet{}, err
	}
	uc.store.Put(tweet)

	if parentID != "" {
		_, _ = uc.store.Update(parentID, func(p domain.Tweet) (domain.Tweet, error) {
			p.RepliesCount++
			return p, nil
		})
		uc.store.MarkStale(parentID)
	}

	log.GlobalInfoCtx(ctx, "tweet posted", "tweet_id", tweet.ID, "parent_id", parentID)
	return tweet, nil
}
