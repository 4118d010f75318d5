package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/metrics"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// navigatorIdle is how long a viewer's last navigation is remembered. It is
// well above any request timeout, so a pruned viewer has nothing in flight.
const navigatorIdle = 30 * time.Minute

// Navigator remembers, per viewer, which tweet detail was requested last.
// A response that arrives after the viewer moved on belongs to a view that
// no longer exists and must not be applied. Viewers idle for longer than
// navigatorIdle are forgotten on a later Begin.
type Navigator struct {
	mu        sync.Mutex
	views     map[string]navigation
	next      uint64
	now       func() time.Time
	lastSweep time.Time
}

type navigation struct {
	seq  uint64
	seen time.Time
}

// Ticket identifies one navigation.
type Ticket struct {
	viewer string
	seq    uint64
}

func NewNavigator() *Navigator {
	return &Navigator{views: make(map[string]navigation), now: time.Now}
}

// Begin starts a navigation and supersedes any earlier one by the viewer.
// Sequence numbers are global so a forgotten viewer never reuses one.
func (n *Navigator) Begin(viewer string) Ticket {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	n.sweep(now)
	n.next++
	n.views[viewer] = navigation{seq: n.next, seen: now}
	return Ticket{viewer: viewer, seq: n.next}
}

// Current reports whether t is still the viewer's latest navigation.
func (n *Navigator) Current(t Ticket) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.views[t.viewer].seq == t.seq
}

// Len is the number of viewers remembered.
func (n *Navigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.views)
}

// sweep must be called with mu held. It runs at most once per idle period.
func (n *Navigator) sweep(now time.Time) {
	if now.Sub(n.lastSweep) < navigatorIdle {
		return
	}
	n.lastSweep = now
	cutoff := now.Add(-navigatorIdle)
	for viewer, nav := range n.views {
		if nav.seen.Before(cutoff) {
			delete(n.views, viewer)
		}
	}
}

// GetTweetUseCase loads a tweet with its full reply tree, store first.
type GetTweetUseCase struct {
	api   TweetFetcher
	store TweetStore
	nav   *Navigator
}

// NewGetTweetUseCase creates a new GetTweetUseCase.
func NewGetTweetUseCase(api TweetFetcher, store TweetStore, nav *Navigator) *GetTweetUseCase {
	return &GetTweetUseCase{api: api, store: store, nav: nav}
}

// Execute returns the tweet and its replies. A fresh, non-stale tree in the
// store is served as is; otherwise the tree is fetched and replaces the
// local state wholesale. If viewer navigated elsewhere while the fetch was
// in flight, the response is dropped with domain.ErrStaleResponse.
func (uc *GetTweetUseCase) Execute(ctx context.Context, viewer, tweetID string) (domain.Tweet, error) {
	ticket := uc.nav.Begin(viewer)

	if tweet, found := uc.store.Tree(tweetID); found {
		log.GlobalDebugCtx(ctx, "store hit", "tweet_id", tweetID)
		return tweet, nil
	}

	log.GlobalDebugCtx(ctx, "store miss, fetching", "tweet_id", tweetID, "stale", uc.store.IsStale(tweetID))

	tweet, err := uc.api.GetTweet(ctx, tweetID)
	if !uc.nav.Current(ticket) {
		metrics.StaleResponses.Inc()
		log.GlobalInfoCtx(ctx, "discarding response for abandoned view", "tweet_id", tweetID)
		return domain.Tweet{}, domain.ErrStaleResponse
	}
	if err != nil {
		return domain.Tweet{}, err
	}

	uc.store.PutTree(tweet)
	return tweet, nil
}
