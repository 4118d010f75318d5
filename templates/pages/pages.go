// Package pages renders full HTML documents.
package pages

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/view"
	"github.com/tubededentifrice/twitter-clone/templates/components"
)

//go:embed *.html
var files embed.FS

var set = components.Extend(files, "*.html")

// Layout is the chrome shared by every page.
type Layout struct {
	Title  string
	Viewer string // Logged-in username, "" when anonymous
	Flash  components.Flash
}

type HomeData struct {
	Layout
	Feed      []view.Card
	Compose   components.ComposeForm
	LoadError string // Set when the feed could not be fetched
}

type TweetData struct {
	Layout
	TweetID   string
	Thread    view.Thread
	Reply     components.ComposeForm
	LoadError string
}

type ProfileData struct {
	Layout
	Profile    domain.Profile
	Joined     string
	Tweets     []view.Card
	TweetCount int
	Followers  []domain.FollowUser
	Following  []domain.FollowUser
	IsSelf     bool
	LoadError  string
}

type LoginData struct {
	Layout
	Username string
}

type RegisterData struct {
	Layout
	Username string
	Email    string
}

type ErrorData struct {
	Layout
	Message string
}

func Home(d HomeData) templ.Component {
	return templ.FromGoHTML(set.Lookup("home"), d)
}

func Tweet(d TweetData) templ.Component {
	return templ.FromGoHTML(set.Lookup("tweet"), d)
}

func Profile(d ProfileData) templ.Component {
	return templ.FromGoHTML(set.Lookup("profile"), d)
}

func Login(d LoginData) templ.Component {
	return templ.FromGoHTML(set.Lookup("login"), d)
}

func Register(d RegisterData) templ.Component {
	return templ.FromGoHTML(set.Lookup("register"), d)
}

func Error(d ErrorData) templ.Component {
	return templ.FromGoHTML(set.Lookup("error"), d)
}
