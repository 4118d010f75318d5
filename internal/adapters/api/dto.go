package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// id accepts both JSON numbers and strings; the API uses integer keys but
// the client treats IDs as opaque strings.
type id string

func (i *id) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*i = id(n.String())
	return nil
}

// MarshalJSON writes numeric IDs as numbers so the API can validate them.
func (i id) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(i), 10, 64); err == nil {
		return []byte(i), nil
	}
	return json.Marshal(string(i))
}

type tweetDTO struct {
	ID             id         `json:"id"`
	Content        string     `json:"content"`
	CreatedAt      string     `json:"created_at"`
	AuthorID       id         `json:"author_id"`
	AuthorUsername string     `json:"author_username"`
	ParentID       id         `json:"parent_id"`
	RepliesCount   int        `json:"replies_count"`
	LikesCount     int        `json:"likes_count"`
	DislikesCount  int        `json:"dislikes_count"`
	UserReaction   *string    `json:"user_reaction"`
	Replies        []tweetDTO `json:"replies"`
}

func (d tweetDTO) toDomain() (domain.Tweet, error) {
	if d.ID == "" {
		return domain.Tweet{}, fmt.Errorf("%w: tweet without id", domain.ErrMalformedResponse)
	}
	createdAt, err := domain.ParseTimestamp(d.CreatedAt)
	if err != nil {
		return domain.Tweet{}, fmt.Errorf("%w: tweet %s: %v", domain.ErrMalformedResponse, d.ID, err)
	}
	reaction := domain.ReactionNone
	if d.UserReaction != nil {
		if reaction, err = domain.ParseReaction(*d.UserReaction); err != nil {
			return domain.Tweet{}, fmt.Errorf("%w: tweet %s: %v", domain.ErrMalformedResponse, d.ID, err)
		}
	}

	t := domain.Tweet{
		ID:             string(d.ID),
		AuthorID:       string(d.AuthorID),
		AuthorUsername: d.AuthorUsername,
		Content:        d.Content,
		CreatedAt:      createdAt,
		ParentID:       string(d.ParentID),
		LikesCount:     max(d.LikesCount, 0),
		DislikesCount:  max(d.DislikesCount, 0),
		UserReaction:   reaction,
		RepliesCount:   max(d.RepliesCount, 0),
	}
	if len(d.Replies) > 0 {
		t.Replies = make([]domain.Tweet, 0, len(d.Replies))
		for _, r := range d.Replies {
			reply, err := r.toDomain()
			if err != nil {
				return domain.Tweet{}, err
			}
			t.Replies = append(t.Replies, reply)
		}
	}
	return t, nil
}

func tweetsToDomain(dtos []tweetDTO) ([]domain.Tweet, error) {
	out := make([]domain.Tweet, 0, len(dtos))
	for _, d := range dtos {
		t, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

type createTweetRequest struct {
	Content  string `json:"content"`
	ParentID *id    `json:"parent_id,omitempty"`
}

type reactionRequest struct {
	ReactionType string `json:"reaction_type"`
}

// reactionResponse may carry the authoritative counters; older API versions
// only send a message. A present-but-null user_reaction means "none".
type reactionResponse struct {
	Message       string          `json:"message"`
	LikesCount    *int            `json:"likes_count"`
	DislikesCount *int            `json:"dislikes_count"`
	UserReaction  json.RawMessage `json:"user_reaction"`
}

func (r reactionResponse) toDomain() (domain.ReactionSummary, error) {
	s := domain.ReactionSummary{
		Message:       r.Message,
		LikesCount:    r.LikesCount,
		DislikesCount: r.DislikesCount,
	}
	if len(r.UserReaction) == 0 {
		return s, nil
	}
	var raw *string
	if err := json.Unmarshal(r.UserReaction, &raw); err != nil {
		return s, fmt.Errorf("%w: user_reaction: %v", domain.ErrMalformedResponse, err)
	}
	reaction := domain.ReactionNone
	if raw != nil {
		var err error
		if reaction, err = domain.ParseReaction(*raw); err != nil {
			return s, fmt.Errorf("%w: user_reaction: %v", domain.ErrMalformedResponse, err)
		}
	}
	s.UserReaction = &reaction
	return s, nil
}

type countResponse struct {
	Count    int    `json:"count"`
	Username string `json:"username"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      id     `json:"user_id"`
	Username    string `json:"username"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileDTO struct {
	ID             id     `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
	CreatedAt      string `json:"created_at"`
	IsActive       bool   `json:"is_active"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
}

func (d profileDTO) toDomain() (domain.Profile, error) {
	if d.Username == "" {
		return domain.Profile{}, fmt.Errorf("%w: profile without username", domain.ErrMalformedResponse)
	}
	p := domain.Profile{
		ID:             string(d.ID),
		Username:       d.Username,
		Email:          d.Email,
		ProfilePicture: d.ProfilePicture,
		IsActive:       d.IsActive,
		FollowerCount:  max(d.FollowerCount, 0),
		FollowingCount: max(d.FollowingCount, 0),
	}
	if d.CreatedAt != "" {
		ts, err := domain.ParseTimestamp(d.CreatedAt)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("%w: profile %s: %v", domain.ErrMalformedResponse, d.Username, err)
		}
		p.CreatedAt = ts
	}
	return p, nil
}

type followUserDTO struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

func followUsersToDomain(dtos []followUserDTO) []domain.FollowUser {
	out := make([]domain.FollowUser, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, domain.FollowUser{Username: d.Username, ProfilePicture: d.ProfilePicture})
	}
	return out
}

type messageResponse struct {
	Message string `json:"message"`
}
