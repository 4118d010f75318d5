package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
	"github.com/tubededentifrice/twitter-clone/test/fixtures"
)

type staticCreds string

func (s staticCreds) Authorization() string { return string(s) }

func newTestClient(ts *httptest.Server, creds CredentialSource) *Client {
	c := New(Options{
		BaseURL:     ts.URL,
		Timeout:     2 * time.Second,
		RPS:         1000,
		Burst:       1000,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Breaker:     BreakerOptions{MinRequests: 100, FailureThreshold: 1, Timeout: time.Minute},
	}, creds)
	c.httpClient = ts.Client()
	c.httpClient.Timeout = 2 * time.Second
	return c
}

func serveJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestListTweets_DecodesFeed(t *testing.T) {
	// Arrange
	ts := httptest.NewServer(serveJSON(http.StatusOK, fixtures.FeedJSON()))
	defer ts.Close()
	c := newTestClient(ts, nil)

	// Act
	tweets, err := c.ListTweets(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tweets) != 2 {
		t.Fatalf("tweets: got %d, want 2", len(tweets))
	}
	first := tweets[0]
	if first.ID != "2" || first.AuthorUsername != "alice" || first.LikesCount != 3 || first.DislikesCount != 1 {
		t.Errorf("first tweet: got %+v", first)
	}
	if first.UserReaction != domain.ReactionNone || first.ParentID != "" {
		t.Errorf("first tweet reaction/parent: got %q/%q", first.UserReaction, first.ParentID)
	}
	want := time.Date(2025, 3, 10, 11, 59, 0, 123456000, time.UTC)
	if !first.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt: got %v, want %v", first.CreatedAt, want)
	}
	if tweets[1].UserReaction != domain.ReactionLike {
		t.Errorf("second reaction: got %q", tweets[1].UserReaction)
	}
}

func TestGetTweet_DecodesReplyTreeAndSendsHeaders(t *testing.T) {
	// Arrange
	var gotAuth, gotReqID, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		serveJSON(http.StatusOK, fixtures.ThreadJSON())(w, r)
	}))
	defer ts.Close()
	c := newTestClient(ts, staticCreds("Bearer tok"))
	ctx := log.WithRequestID(context.Background(), "req-123")

	// Act
	tweet, err := c.GetTweet(ctx, "42")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/tweets/42" || gotAuth != "Bearer tok" || gotReqID != "req-123" {
		t.Errorf("request: path=%q auth=%q reqid=%q", gotPath, gotAuth, gotReqID)
	}
	var ids []string
	var depths []int
	tweet.Walk(func(tw domain.Tweet, depth int) bool {
		ids = append(ids, tw.ID)
		depths = append(depths, depth)
		return true
	})
	if len(ids) != 3 || ids[0] != "42" || ids[1] != "43" || ids[2] != "44" {
		t.Fatalf("ids: got %v", ids)
	}
	if depths[2] != 2 {
		t.Errorf("depth of 44: got %d, want 2", depths[2])
	}
	if tweet.Replies[0].Replies[0].UserReaction != domain.ReactionDislike {
		t.Errorf("nested reaction: got %q", tweet.Replies[0].Replies[0].UserReaction)
	}
	if tweet.Replies[0].Replies[0].Replies != nil {
		t.Error("empty replies array should decode to nil")
	}
}

func TestCall_GeneratesRequestIDWhenAbsent(t *testing.T) {
	var gotReqID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("X-Request-ID")
	}))
	defer ts.Close()
	c := newTestClient(ts, nil)

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotReqID) != 36 {
		t.Errorf("X-Request-ID: got %q, want a uuid", gotReqID)
	}
}

func TestCall_ClassifiesErrors(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		want       []error
		wantDetail string
	}{
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       fixtures.DetailJSON("Tweet not found"),
			want:       []error{domain.ErrServerRejected, domain.ErrTweetNotFound},
			wantDetail: "Tweet not found",
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   fixtures.DetailJSON("Could not validate credentials"),
			want:   []error{domain.ErrAuthRequired},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{}`,
			want:   []error{domain.ErrAuthRequired},
		},
		{
			name:       "validation",
			status:     http.StatusUnprocessableEntity,
			body:       fixtures.ValidationErrorJSON(),
			want:       []error{domain.ErrServerRejected},
			wantDetail: "String should have at most 280 characters",
		},
		{
			name:   "malformed",
			status: http.StatusOK,
			body:   `{"id": 42, "created_at": `,
			want:   []error{domain.ErrMalformedResponse},
		},
		{
			name:   "bad timestamp",
			status: http.StatusOK,
			body:   `{"id": 42, "created_at": "yesterday"}`,
			want:   []error{domain.ErrMalformedResponse},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(serveJSON(tc.status, tc.body))
			defer ts.Close()
			c := newTestClient(ts, nil)

			_, err := c.GetTweet(context.Background(), "42")

			for _, want := range tc.want {
				if !errors.Is(err, want) {
					t.Errorf("err %v: want match for %v", err, want)
				}
			}
			if tc.wantDetail != "" && domain.DetailOf(err) != tc.wantDetail {
				t.Errorf("detail: got %q, want %q", domain.DetailOf(err), tc.wantDetail)
			}
		})
	}
}

func TestCall_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(ts, nil)
	c.maxAttempts = 1
	ts.Close()

	_, err := c.ListTweets(context.Background())

	if !errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Errorf("err: got %v, want ErrNetworkUnavailable", err)
	}
}

func TestDoWithRetry_RetriesGetOn503(t *testing.T) {
	// Arrange
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		serveJSON(http.StatusOK, fixtures.FeedJSON())(w, r)
	}))
	defer ts.Close()
	c := newTestClient(ts, nil)

	// Act
	tweets, err := c.ListTweets(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(tweets) != 2 {
		t.Errorf("tweets: got %d, want 2", len(tweets))
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts: got %d, want 2", attempts.Load())
	}
}

func TestReact_IsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	c := newTestClient(ts, nil)

	_, err := c.React(context.Background(), "42", domain.ReactionLike)

	if !errors.Is(err, domain.ErrServerRejected) {
		t.Errorf("err: got %v, want ErrServerRejected", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts: got %d, want 1", attempts.Load())
	}
}

func TestReact_SendsTypeAndDecodesSummary(t *testing.T) {
	testCases := []struct {
		name          string
		body          string
		authoritative bool
		wantReaction  *domain.Reaction
	}{
		{name: "message only", body: fixtures.ReactionMessageJSON()},
		{name: "counters", body: fixtures.ReactionCountersJSON(), authoritative: true, wantReaction: new(domain.Reaction)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got reactionRequest
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/tweets/42/reaction" {
					t.Errorf("request: %s %s", r.Method, r.URL.Path)
				}
				_ = json.NewDecoder(r.Body).Decode(&got)
				serveJSON(http.StatusCreated, tc.body)(w, r)
			}))
			defer ts.Close()
			c := newTestClient(ts, nil)

			summary, err := c.React(context.Background(), "42", domain.ReactionDislike)

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ReactionType != "dislike" {
				t.Errorf("reaction_type: got %q", got.ReactionType)
			}
			if summary.Authoritative() != tc.authoritative {
				t.Errorf("Authoritative: got %v, want %v", summary.Authoritative(), tc.authoritative)
			}
			if (summary.UserReaction == nil) != (tc.wantReaction == nil) {
				t.Fatalf("UserReaction: got %v, want %v", summary.UserReaction, tc.wantReaction)
			}
			if tc.wantReaction != nil && *summary.UserReaction != *tc.wantReaction {
				t.Errorf("UserReaction: got %q, want %q", *summary.UserReaction, *tc.wantReaction)
			}
		})
	}
}

func TestCreateTweet_SendsNumericParentID(t *testing.T) {
	var raw map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		serveJSON(http.StatusCreated, fixtures.CreatedTweetJSON())(w, r)
	}))
	defer ts.Close()
	c := newTestClient(ts, staticCreds("Bearer tok"))

	tweet, err := c.CreateTweet(context.Background(), "a reply", "42")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw["parent_id"] != float64(42) || raw["content"] != "a reply" {
		t.Errorf("body: got %v", raw)
	}
	if tweet.ID != "45" || tweet.ParentID != "42" {
		t.Errorf("tweet: got %+v", tweet)
	}
}

func TestCreateTweet_TopLevelOmitsParent(t *testing.T) {
	var raw map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		serveJSON(http.StatusCreated, fixtures.CreatedTweetJSON())(w, r)
	}))
	defer ts.Close()
	c := newTestClient(ts, nil)

	if _, err := c.CreateTweet(context.Background(), "hi", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["parent_id"]; ok {
		t.Errorf("parent_id should be omitted, body: %v", raw)
	}
}

func TestBreaker_OpensAfterOutage(t *testing.T) {
	// Arrange
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()
	c := newTestClient(ts, nil)
	c.maxAttempts = 1
	c.breaker = newBreaker(BreakerOptions{MinRequests: 2, FailureThreshold: 0.5, Timeout: time.Minute})

	// Act
	for i := 0; i < 2; i++ {
		_, _ = c.ListTweets(context.Background())
	}
	_, err := c.ListTweets(context.Background())

	// Assert
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("err: got %v, want ErrServiceUnavailable", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts: got %d, want 2", attempts.Load())
	}
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	ts := httptest.NewServer(serveJSON(http.StatusNotFound, fixtures.DetailJSON("Tweet not found")))
	defer ts.Close()
	c := newTestClient(ts, nil)
	c.breaker = newBreaker(BreakerOptions{MinRequests: 1, FailureThreshold: 0.1, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := c.GetTweet(context.Background(), "1")
		if !errors.Is(err, domain.ErrTweetNotFound) {
			t.Fatalf("call %d: got %v, want ErrTweetNotFound", i, err)
		}
	}
}

func TestLogin_DecodesToken(t *testing.T) {
	var got loginRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		serveJSON(http.StatusOK, fixtures.TokenJSON())(w, r)
	}))
	defer ts.Close()
	c := newTestClient(ts, nil)

	token, err := c.Login(context.Background(), domain.Credentials{Username: "alice", Password: "pw"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "alice" || got.Password != "pw" {
		t.Errorf("request: got %+v", got)
	}
	if token.AccessToken != "opaque-token" || token.UserID != "1" || token.Username != "alice" {
		t.Errorf("token: got %+v", token)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := httptest.NewServer(serveJSON(http.StatusUnauthorized, fixtures.DetailJSON("Invalid username or password")))
	defer ts.Close()
	c := newTestClient(ts, nil)

	_, err := c.Login(context.Background(), domain.Credentials{Username: "alice", Password: "nope"})

	if !errors.Is(err, domain.ErrAuthRequired) || domain.DetailOf(err) != "Invalid username or password" {
		t.Errorf("err: got %v", err)
	}
}

func TestProfileEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile/bob", serveJSON(http.StatusOK, fixtures.ProfileJSON()))
	mux.HandleFunc("/api/profile/bob/followers", serveJSON(http.StatusOK, fixtures.FollowersJSON()))
	mux.HandleFunc("/api/profile/follow/bob", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("follow method: got %s", r.Method)
		}
		serveJSON(http.StatusOK, `{"message": "You are now following bob"}`)(w, r)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()
	c := newTestClient(ts, staticCreds("Bearer tok"))
	ctx := context.Background()

	profile, err := c.GetProfile(ctx, "bob")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.ID != "2" || profile.FollowerCount != 1 || profile.ProfilePicture != "" || !profile.IsActive {
		t.Errorf("profile: got %+v", profile)
	}

	followers, err := c.Followers(ctx, "bob")
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if !domain.ContainsUser(followers, "alice") {
		t.Errorf("followers: got %+v", followers)
	}

	if err := c.Follow(ctx, "bob"); err != nil {
		t.Errorf("Follow: %v", err)
	}
	if _, err := c.Following(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Following on unknown path: got %v, want ErrUserNotFound", err)
	}
}

func TestID_UnmarshalVariants(t *testing.T) {
	testCases := map[string]string{`42`: "42", `"abc"`: "abc", `null`: ""}
	for in, want := range testCases {
		var got id
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Errorf("%s: unexpected error %v", in, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s: got %q, want %q", in, got, want)
		}
	}
	var bad id
	if err := json.Unmarshal([]byte(`true`), &bad); err == nil {
		t.Error("expected error for boolean id")
	}
}
