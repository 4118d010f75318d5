package store

import (
	"errors"
	"testing"
	"time"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*TweetStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	s := NewTweetStore(ttl)
	s.now = clock.Now
	return s, clock
}

func thread() domain.Tweet {
	return domain.Tweet{
		ID: "42", Content: "root",
		Replies: []domain.Tweet{{
			ID: "43", ParentID: "42",
			Replies: []domain.Tweet{{ID: "44", ParentID: "43"}},
		}},
	}
}

func TestTweetStore_PutTreeAndTree_RebuildsReplies(t *testing.T) {
	// Arrange
	s, _ := newTestStore(time.Minute)
	defer s.Close()

	// Act
	s.PutTree(thread())
	got, ok := s.Tree("42")

	// Assert
	if !ok {
		t.Fatal("expected tree to be found")
	}
	if len(got.Replies) != 1 || got.Replies[0].ID != "43" {
		t.Fatalf("replies: got %+v", got.Replies)
	}
	if len(got.Replies[0].Replies) != 1 || got.Replies[0].Replies[0].ID != "44" {
		t.Errorf("nested replies: got %+v", got.Replies[0].Replies)
	}
	if s.Len() != 3 {
		t.Errorf("Len: got %d, want 3", s.Len())
	}
}

func TestTweetStore_UpdateReply_VisibleInTree(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	defer s.Close()
	s.PutTree(thread())

	_, err := s.Update("44", func(tw domain.Tweet) (domain.Tweet, error) {
		tw.LikesCount = 9
		return tw, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree, _ := s.Tree("42")
	if got := tree.Replies[0].Replies[0].LikesCount; got != 9 {
		t.Errorf("LikesCount: got %d, want 9", got)
	}
}

func TestTweetStore_Update_FailureWritesNothing(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	defer s.Close()
	s.Put(domain.Tweet{ID: "1", LikesCount: 3})
	boom := errors.New("boom")

	_, err := s.Update("1", func(tw domain.Tweet) (domain.Tweet, error) {
		tw.LikesCount = 100
		return tw, boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("err: got %v, want boom", err)
	}
	if got, _ := s.Get("1"); got.LikesCount != 3 {
		t.Errorf("LikesCount: got %d, want 3", got.LikesCount)
	}
}

func TestTweetStore_Update_Missing(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	defer s.Close()

	_, err := s.Update("nope", func(tw domain.Tweet) (domain.Tweet, error) { return tw, nil })

	if !errors.Is(err, ErrNotStored) {
		t.Errorf("err: got %v, want ErrNotStored", err)
	}
}

func TestTweetStore_MarkStale_HidesTreeUntilRefetch(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	defer s.Close()
	s.PutTree(thread())

	s.MarkStale("43")

	if !s.IsStale("43") {
		t.Error("expected 43 to be stale")
	}
	if _, ok := s.Tree("42"); ok {
		t.Error("tree containing a stale node should not be served")
	}

	s.PutTree(thread())
	if s.IsStale("43") {
		t.Error("refetch should clear the stale flag")
	}
	if _, ok := s.Tree("42"); !ok {
		t.Error("tree should be served after refetch")
	}
}

func TestTweetStore_PutTree_TruncatedReplyNeedsOwnFetch(t *testing.T) {
	// Arrange
	s, _ := newTestStore(time.Minute)
	defer s.Close()
	root := domain.Tweet{
		ID: "42", RepliesCount: 1,
		Replies: []domain.Tweet{{ID: "43", ParentID: "42", RepliesCount: 1}},
	}

	// Act
	s.PutTree(root)
	_, rootOK := s.Tree("42")
	_, replyOK := s.Tree("43")

	// Assert
	if !rootOK {
		t.Error("fetched root should be served from the store")
	}
	if replyOK {
		t.Error("reply with missing children should not be served as a full tree")
	}
	if _, ok := s.Get("43"); !ok {
		t.Error("reply snapshot should still be stored for reactions")
	}

	s.PutTree(domain.Tweet{
		ID: "43", ParentID: "42", RepliesCount: 1,
		Replies: []domain.Tweet{{ID: "44", ParentID: "43"}},
	})
	got, ok := s.Tree("43")
	if !ok || len(got.Replies) != 1 || got.Replies[0].ID != "44" {
		t.Errorf("reply tree after its own fetch: got %+v, %v", got, ok)
	}
}

func TestTweetStore_Put_KeepsTreeAndStaleFlag(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	defer s.Close()
	s.PutTree(thread())
	s.MarkStale("42")

	s.Put(domain.Tweet{ID: "42", Content: "root", LikesCount: 5, Replies: []domain.Tweet{{ID: "x"}}})

	got, _ := s.Get("42")
	if got.LikesCount != 5 || got.Replies != nil {
		t.Errorf("snapshot: got %+v", got)
	}
	if !s.IsStale("42") {
		t.Error("list fetch should not clear the stale flag")
	}
}

func TestTweetStore_Expiry(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	defer s.Close()
	s.Put(domain.Tweet{ID: "1"})

	clock.t = clock.t.Add(2 * time.Minute)

	if _, ok := s.Get("1"); ok {
		t.Error("expected expired snapshot to be gone")
	}
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
}

func TestTweetStore_Purge_RemovesExpired(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	defer s.Close()
	s.Put(domain.Tweet{ID: "old"})
	clock.t = clock.t.Add(30 * time.Second)
	s.Put(domain.Tweet{ID: "new"})
	clock.t = clock.t.Add(45 * time.Second)

	s.purge()

	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}
}

func TestTweetStore_Reset(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	defer s.Close()
	s.PutTree(thread())

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
}
