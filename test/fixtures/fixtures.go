// Package fixtures provides REST API payloads for tests.
package fixtures

// FeedJSON is a GET /api/tweets/ response with two top-level tweets.
func FeedJSON() string {
	return `[
  {
    "id": 2,
    "content": "second post",
    "created_at": "2025-03-10T11:59:00.123456",
    "author_id": 1,
    "author_username": "alice",
    "parent_id": null,
    "replies_count": 0,
    "likes_count": 3,
    "dislikes_count": 1,
    "user_reaction": null
  },
  {
    "id": 1,
    "content": "hello world",
    "created_at": "2025-03-09T12:00:00",
    "author_id": 2,
    "author_username": "bob",
    "parent_id": null,
    "replies_count": 1,
    "likes_count": 0,
    "dislikes_count": 0,
    "user_reaction": "like"
  }
]`
}

// ThreadJSON is a GET /api/tweets/42 response with replies nested three
// levels deep: 42 -> 43 -> 44.
func ThreadJSON() string {
	return `{
  "id": 42,
  "content": "root tweet",
  "created_at": "2025-03-10T11:00:00",
  "author_id": 1,
  "author_username": "alice",
  "parent_id": null,
  "replies_count": 1,
  "likes_count": 3,
  "dislikes_count": 1,
  "user_reaction": null,
  "replies": [
    {
      "id": 43,
      "content": "first reply",
      "created_at": "2025-03-10T11:30:00",
      "author_id": 2,
      "author_username": "bob",
      "parent_id": 42,
      "replies_count": 1,
      "likes_count": 0,
      "dislikes_count": 0,
      "user_reaction": null,
      "replies": [
        {
          "id": 44,
          "content": "nested reply",
          "created_at": "2025-03-10T11:45:00",
          "author_id": 3,
          "author_username": "carol",
          "parent_id": 43,
          "replies_count": 0,
          "likes_count": 1,
          "dislikes_count": 0,
          "user_reaction": "dislike",
          "replies": []
        }
      ]
    }
  ]
}`
}

// CreatedTweetJSON is a POST /api/tweets/ response.
func CreatedTweetJSON() string {
	return `{
  "id": 45,
  "content": "a reply",
  "created_at": "2025-03-10T12:00:00",
  "author_id": 1,
  "author_username": "alice",
  "parent_id": 42,
  "replies_count": 0,
  "likes_count": 0,
  "dislikes_count": 0,
  "user_reaction": null
}`
}

// ReactionMessageJSON is a reaction response without counters.
func ReactionMessageJSON() string {
	return `{"message": "Reaction like added"}`
}

// ReactionCountersJSON is a reaction response carrying authoritative state.
func ReactionCountersJSON() string {
	return `{"message": "Reaction removed", "likes_count": 7, "dislikes_count": 2, "user_reaction": null}`
}

// TokenJSON is a POST /api/users/login response.
func TokenJSON() string {
	return `{"access_token": "opaque-token", "token_type": "bearer", "user_id": 1, "username": "alice"}`
}

// ProfileJSON is a GET /api/profile/bob response.
func ProfileJSON() string {
	return `{
  "id": 2,
  "username": "bob",
  "email": "bob@example.com",
  "profile_picture": null,
  "created_at": "2025-01-01T09:00:00",
  "is_active": true,
  "follower_count": 1,
  "following_count": 0
}`
}

// FollowersJSON is a GET /api/profile/bob/followers response.
func FollowersJSON() string {
	return `[{"username": "alice", "profile_picture": null}]`
}

// DetailJSON is an error body with a plain detail message.
func DetailJSON(msg string) string {
	return `{"detail": "` + msg + `"}`
}

// ValidationErrorJSON is a 422 body listing field errors.
func ValidationErrorJSON() string {
	return `{"detail": [{"loc": ["body", "content"], "msg": "String should have at most 280 characters", "type": "string_too_long"}]}`
}
