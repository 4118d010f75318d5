package web

import (
	"regexp"
	"strings"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// tweetRefRegex matches a tweet id on its own, a /tweets/{id} path, or a
// full link to a detail page on any host. Query and fragment are ignored.
var tweetRefRegex = regexp.MustCompile(
	`^(?:(?:https?://[^/\s]+)?/?tweets/)?(\d+)/?(?:[?#]\S*)?$`,
)

// ParseTweetRef extracts the tweet id from what a viewer typed in the
// "open tweet" box. Returns domain.ErrInvalidTweetRef if nothing matches.
func ParseTweetRef(ref string) (string, error) {
	matches := tweetRefRegex.FindStringSubmatch(strings.TrimSpace(ref))
	if len(matches) < 2 {
		return "", domain.ErrInvalidTweetRef
	}
	return matches[1], nil
}
