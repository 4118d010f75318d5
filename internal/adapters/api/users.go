package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// Login exchanges credentials for a bearer token. Wrong credentials come
// back as a RejectedError matching domain.ErrAuthRequired.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Token, error) {
	var out tokenDTO
	in := loginRequest{Username: creds.Username, Password: creds.Password}
	if err := c.call(ctx, "login", http.MethodPost, "/api/users/login", in, &out, nil); err != nil {
		return domain.Token{}, err
	}
	if out.AccessToken == "" {
		return domain.Token{}, domain.ErrMalformedResponse
	}
	return domain.Token{
		AccessToken: out.AccessToken,
		TokenType:   out.TokenType,
		UserID:      string(out.UserID),
		Username:    out.Username,
	}, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	in := registerRequest{Username: reg.Username, Email: reg.Email, Password: reg.Password}
	return c.call(ctx, "register", http.MethodPost, "/api/users/register", in, nil, nil)
}

// GetProfile returns a user's public profile.
func (c *Client) GetProfile(ctx context.Context, username string) (domain.Profile, error) {
	var dto profileDTO
	path := "/api/profile/" + url.PathEscape(username)
	if err := c.call(ctx, "get_profile", http.MethodGet, path, nil, &dto, domain.ErrUserNotFound); err != nil {
		return domain.Profile{}, err
	}
	return dto.toDomain()
}

// Follow makes the viewer follow username.
func (c *Client) Follow(ctx context.Context, username string) error {
	path := "/api/profile/follow/" + url.PathEscape(username)
	return c.call(ctx, "follow", http.MethodPost, path, struct{}{}, &messageResponse{}, domain.ErrUserNotFound)
}

// Unfollow makes the viewer stop following username.
func (c *Client) Unfollow(ctx context.Context, username string) error {
	path := "/api/profile/unfollow/" + url.PathEscape(username)
	return c.call(ctx, "unfollow", http.MethodPost, path, struct{}{}, &messageResponse{}, domain.ErrUserNotFound)
}

// Followers lists who follows username.
func (c *Client) Followers(ctx context.Context, username string) ([]domain.FollowUser, error) {
	return c.followList(ctx, "followers", username)
}

// Following lists who username follows.
func (c *Client) Following(ctx context.Context, username string) ([]domain.FollowUser, error) {
	return c.followList(ctx, "following", username)
}

func (c *Client) followList(ctx context.Context, kind, username string) ([]domain.FollowUser, error) {
	var dtos []followUserDTO
	path := "/api/profile/" + url.PathEscape(username) + "/" + kind
	if err := c.call(ctx, kind, http.MethodGet, path, nil, &dtos, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return followUsersToDomain(dtos), nil
}

// Health checks that the API is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, "health", http.MethodGet, "/health", nil, nil, nil)
}
