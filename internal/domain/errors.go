package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetworkUnavailable is returned when the API cannot be reached.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrAuthRequired is returned when the API rejects the credential (401/403)
	// or an action needs a session and none is present.
	ErrAuthRequired = errors.New("authentication required")

	// ErrServerRejected is returned for any other 4xx/5xx answer.
	ErrServerRejected = errors.New("request rejected by server")

	// ErrMalformedResponse is returned when the response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrServiceUnavailable is returned while the API circuit is open.
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// ErrTweetNotFound is returned when the tweet does not exist.
	ErrTweetNotFound = errors.New("tweet not found")

	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrStaleResponse is returned when a response arrives for a view the
	// viewer has already left.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrInvalidReaction is returned for reaction types other than like/dislike.
	ErrInvalidReaction = errors.New("invalid reaction type")

	// ErrEmptyContent is returned when a tweet has no text.
	ErrEmptyContent = errors.New("tweet cannot be empty")

	// ErrContentTooLong is returned when a tweet exceeds MaxContentLength.
	ErrContentTooLong = errors.New("tweet exceeds 280 characters")

	// ErrInvalidTweetRef is returned when a tweet reference cannot be parsed.
	ErrInvalidTweetRef = errors.New("invalid tweet reference")
)

// RejectedError carries the status and detail of a rejected request.
// It matches ErrServerRejected, and ErrAuthRequired for 401/403.
type RejectedError struct {
	Status int
	Detail string
	// NotFound, when set, is matched for 404 answers (ErrTweetNotFound, ErrUserNotFound).
	NotFound error
}

func (e *RejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server rejected request (%d)", e.Status)
}

// Is lets errors.Is match the taxonomy sentinels.
func (e *RejectedError) Is(target error) bool {
	switch target {
	case ErrAuthRequired:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrServerRejected:
		return e.Status != http.StatusUnauthorized && e.Status != http.StatusForbidden
	}
	return e.Status == http.StatusNotFound && e.NotFound != nil && target == e.NotFound
}

// DetailOf returns the server's detail message if err carries one.
func DetailOf(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Detail
	}
	return ""
}
