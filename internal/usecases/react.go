package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/metrics"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// Reactor sends reactions to the API.
type Reactor interface {
	React(ctx context.Context, tweetID string, r domain.Reaction) (domain.ReactionSummary, error)
}

// ReactToTweetUseCase applies a reaction locally at once, then confirms it
// with the server.
type ReactToTweetUseCase struct {
	api     Reactor
	fetcher TweetFetcher
	store   TweetStore
}

// NewReactToTweetUseCase creates a new ReactToTweetUseCase.
func NewReactToTweetUseCase(api Reactor, fetcher TweetFetcher, store TweetStore) *ReactToTweetUseCase {
	return &ReactToTweetUseCase{api: api, fetcher: fetcher, store: store}
}

// Execute reacts to a tweet and returns its resulting local state.
//
// The reaction is applied to the stored snapshot before the request is
// sent. On success, counters in the response overwrite the local ones. On
// failure the pre-action state is restored, unless another change landed
// in the meantime, and the tweet is marked stale; the returned tweet is
// then the restored state and the error is the API's.
func (uc *ReactToTweetUseCase) Execute(ctx context.Context, tweetID string, r domain.Reaction) (domain.Tweet, error) {
	if r != domain.ReactionLike && r != domain.ReactionDislike {
		return domain.Tweet{}, domain.ErrInvalidReaction
	}
	if err := uc.ensureStored(ctx, tweetID); err != nil {
		return domain.Tweet{}, err
	}

	var before domain.ReactionState
	optimistic, err := uc.store.Update(tweetID, func(t domain.Tweet) (domain.Tweet, error) {
		before = t.ReactionState()
		next, err := domain.ApplyReaction(before, r)
		if err != nil {
			return t, err
		}
		return t.WithReactionState(next), nil
	})
	if err != nil {
		return domain.Tweet{}, err
	}
	metrics.OptimisticReactions.WithLabelValues(string(r)).Inc()

	summary, err := uc.api.React(ctx, tweetID, r)
	if err != nil {
		return uc.rollback(ctx, tweetID, before, optimistic.ReactionState(), err)
	}

	confirmed, err := uc.store.Update(tweetID, func(t domain.Tweet) (domain.Tweet, error) {
		return t.WithReactionState(summary.Reconcile(t.ReactionState())), nil
	})
	if err != nil {
		// Expired between the two updates; the optimistic state is the best we have.
		confirmed = optimistic
	}
	log.GlobalDebugCtx(ctx, "reaction confirmed", "tweet_id", tweetID, "reaction", r.String(),
		"authoritative", summary.Authoritative(), "message", summary.Message)
	return confirmed, nil
}

func (uc *ReactToTweetUseCase) ensureStored(ctx context.Context, tweetID string) error {
	if _, ok := uc.store.Get(tweetID); ok {
		return nil
	}
	tweet, err := uc.fetcher.GetTweet(ctx, tweetID)
	if err != nil {
		return err
	}
	uc.store.PutTree(tweet)
	return nil
}

func (uc *ReactToTweetUseCase) rollback(ctx context.Context, tweetID string, before, optimistic domain.ReactionState, cause error) (domain.Tweet, error) {
	restored, err := uc.store.Update(tweetID, func(t domain.Tweet) (domain.Tweet, error) {
		if t.ReactionState() != optimistic {
			return t, nil
		}
		return t.WithReactionState(before), nil
	})
	uc.store.MarkStale(tweetID)
	metrics.ReactionRollbacks.Inc()

	fields := []any{"tweet_id", tweetID, "error", cause}
	switch {
	case errors.Is(cause, domain.ErrAuthRequired):
		log.GlobalInfoCtx(ctx, "reaction rejected, login required", fields...)
	default:
		log.GlobalWarnCtx(ctx, "reaction failed, rolled back", fields...)
	}

	wrapped := fmt.Errorf("react to %s: %w", tweetID, cause)
	if err != nil {
		return domain.Tweet{}, wrapped
	}
	return restored, wrapped
}
