package usecases

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// ProfileSource reads profiles and the follow graph.
type ProfileSource interface {
	GetProfile(ctx context.Context, username string) (domain.Profile, error)
	Followers(ctx context.Context, username string) ([]domain.FollowUser, error)
	Following(ctx context.Context, username string) ([]domain.FollowUser, error)
	CountUserTweets(ctx context.Context, username string) (int, error)
}

// FollowGraph changes who the viewer follows.
type FollowGraph interface {
	Follow(ctx context.Context, username string) error
	Unfollow(ctx context.Context, username string) error
}

// ProfilePage is everything the profile view shows.
type ProfilePage struct {
	Profile    domain.Profile
	Tweets     []domain.Tweet
	TweetCount int
	Followers  []domain.FollowUser
	Following  []domain.FollowUser
	IsSelf     bool
}

// GetProfileUseCase loads a profile page.
type GetProfileUseCase struct {
	profiles ProfileSource
	tweets   TweetFetcher
	store    TweetStore
}

// NewGetProfileUseCase creates a new GetProfileUseCase.
func NewGetProfileUseCase(profiles ProfileSource, tweets TweetFetcher, store TweetStore) *GetProfileUseCase {
	return &GetProfileUseCase{profiles: profiles, tweets: tweets, store: store}
}

// Execute fetches the profile, its tweets and follow lists concurrently.
// viewer is the logged-in username ("" when anonymous); the profile is
// followed when viewer appears among its followers. A failing tweet count
// is not fatal.
func (uc *GetProfileUseCase) Execute(ctx context.Context, viewer, username string) (ProfilePage, error) {
	var page ProfilePage
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := uc.profiles.GetProfile(gctx, username)
		page.Profile = p
		return err
	})
	g.Go(func() error {
		tweets, err := uc.tweets.ListUserTweets(gctx, username)
		page.Tweets = tweets
		return err
	})
	g.Go(func() error {
		users, err := uc.profiles.Followers(gctx, username)
		page.Followers = users
		return err
	})
	g.Go(func() error {
		users, err := uc.profiles.Following(gctx, username)
		page.Following = users
		return err
	})
	g.Go(func() error {
		n, err := uc.profiles.CountUserTweets(gctx, username)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.GlobalWarnCtx(ctx, "tweet count unavailable", "username", username, "error", err)
			}
			n = 0
		}
		page.TweetCount = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return ProfilePage{}, err
	}

	for _, t := range page.Tweets {
		uc.store.Put(t)
	}
	if page.TweetCount < len(page.Tweets) {
		page.TweetCount = len(page.Tweets)
	}
	page.IsSelf = viewer != "" && viewer == page.Profile.Username
	page.Profile.IsFollowed = viewer != "" && domain.ContainsUser(page.Followers, viewer)
	return page, nil
}

// FollowUseCase follows or unfollows a user.
type FollowUseCase struct {
	api FollowGraph
}

// NewFollowUseCase creates a new FollowUseCase.
func NewFollowUseCase(api FollowGraph) *FollowUseCase {
	return &FollowUseCase{api: api}
}

// Execute follows username when follow is true, unfollows otherwise.
func (uc *FollowUseCase) Execute(ctx context.Context, username string, follow bool) error {
	var err error
	if follow {
		err = uc.api.Follow(ctx, username)
	} else {
		err = uc.api.Unfollow(ctx, username)
	}
	if err != nil {
		return err
	}
	log.GlobalInfoCtx(ctx, "follow graph changed", "username", username, "follow", follow)
	return nil
}
