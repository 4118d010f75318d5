// Package store keeps the process-local tweet state that optimistic
// reactions are applied to.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// ErrNotStored is returned by Update when no fresh snapshot exists.
var ErrNotStored = errors.New("tweet not in store")

// TweetStore is an in-memory, TTL-bound store of tweet snapshots keyed by
// tweet ID. Reply trees are kept flat (each node stores its children's IDs)
// so that a reaction on a reply is visible in every tree containing it.
type TweetStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type entry struct {
	tweet     domain.Tweet // Replies always nil
	children  []string
	full      bool // children are every reply the server counts
	stale     bool
	expiresAt time.Time
}

// NewTweetStore creates a store whose snapshots expire after ttl, and starts
// the cleanup loop. Call Close to stop it.
func NewTweetStore(ttl time.Duration) *TweetStore {
	s := &TweetStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go s.cleanup(time.Minute)
	return s
}

// Put replaces the reaction and content snapshot of a tweet from a list
// fetch. A previously fetched reply tree is kept, including its stale flag.
func (s *TweetStore) Put(t domain.Tweet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.Replies = nil
	e, ok := s.entries[t.ID]
	if !ok || s.expired(e) {
		e = &entry{}
		s.entries[t.ID] = e
	}
	e.tweet = t
	e.expiresAt = s.now().Add(s.ttl)
}

// PutTree replaces the state of a tweet and of every reply below it, and
// clears their stale flags. The root's children are taken as complete. A
// nested reply whose list is shorter than its RepliesCount was cut off by
// the server, so its own tree must be fetched before it can be served.
func (s *TweetStore) PutTree(root domain.Tweet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)
	root.Walk(func(t domain.Tweet, depth int) bool {
		children := make([]string, 0, len(t.Replies))
		for _, r := range t.Replies {
			children = append(children, r.ID)
		}
		full := depth == 0 || len(t.Replies) >= t.RepliesCount
		t.Replies = nil
		s.entries[t.ID] = &entry{tweet: t, children: children, full: full, expiresAt: expiresAt}
		return true
	})
}

// Get returns the flat snapshot of a tweet (without replies).
func (s *TweetStore) Get(id string) (domain.Tweet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return domain.Tweet{}, false
	}
	return e.tweet, true
}

// Tree rebuilds the reply tree of a tweet. It reports false when the
// tweet's replies were never fetched in full, or when any node is stale or
// has expired. Nested replies are rebuilt from whatever children are known.
func (s *TweetStore) Tree(id string) (domain.Tweet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.lookup(id); !ok || !e.full {
		return domain.Tweet{}, false
	}
	return s.assemble(id)
}

func (s *TweetStore) assemble(id string) (domain.Tweet, bool) {
	e, ok := s.lookup(id)
	if !ok || e.stale {
		return domain.Tweet{}, false
	}
	t := e.tweet
	if len(e.children) > 0 {
		t.Replies = make([]domain.Tweet, 0, len(e.children))
		for _, childID := range e.children {
			child, ok := s.assemble(childID)
			if !ok {
				return domain.Tweet{}, false
			}
			t.Replies = append(t.Replies, child)
		}
	}
	return t, true
}

// Update applies fn to the stored snapshot atomically and stores the result.
// If fn fails, nothing is written.
func (s *TweetStore) Update(id string, fn func(domain.Tweet) (domain.Tweet, error)) (domain.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return domain.Tweet{}, ErrNotStored
	}
	updated, err := fn(e.tweet)
	if err != nil {
		return domain.Tweet{}, err
	}
	updated.Replies = nil
	e.tweet = updated
	return updated, nil
}

// MarkStale flags a tweet so its reply tree is fetched again on next view.
// Unknown IDs are ignored.
func (s *TweetStore) MarkStale(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.stale = true
	}
}

// IsStale reports whether a tweet was marked stale since its last fetch.
func (s *TweetStore) IsStale(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	return ok && e.stale
}

// Reset drops every snapshot. Reaction state is per viewer, so this runs
// whenever the session changes.
func (s *TweetStore) Reset() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
}

// Len is the number of snapshots held, expired ones included.
func (s *TweetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the cleanup loop.
func (s *TweetStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// lookup must be called with mu held. Expired entries are removed.
func (s *TweetStore) lookup(id string) (*entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.entries, id)
		return nil, false
	}
	return e, true
}

func (s *TweetStore) expired(e *entry) bool {
	return s.now().After(e.expiresAt)
}

// cleanup periodically removes expired entries.
func (s *TweetStore) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.purge()
		case <-s.stop:
			return
		}
	}
}

func (s *TweetStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}
