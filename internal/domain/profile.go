package domain

import "time"

// Profile is a user's public profile as served by the API.
type Profile struct {
	ID             string
	Username       string
	Email          string
	ProfilePicture string
	CreatedAt      time.Time
	IsActive       bool
	FollowerCount  int
	FollowingCount int
	IsFollowed     bool // Whether the current viewer follows this user
}

// FollowUser is an entry of a followers or following list.
type FollowUser struct {
	Username       string
	ProfilePicture string
}

// ContainsUser reports whether username appears in users.
func ContainsUser(users []FollowUser, username string) bool {
	for _, u := range users {
		if u.Username == username {
			return true
		}
	}
	return false
}

// Credentials are what a viewer types into the login form.
type Credentials struct {
	Username string
	Password string
}

// Registration holds the fields of the sign-up form.
type Registration struct {
	Username string
	Email    string
	Password string
}

// Token is the API's answer to a successful login.
type Token struct {
	AccessToken string
	TokenType   string
	UserID      string
	Username    string
}
