// Package components holds the HTML fragments shared by pages and HTMX
// partials: tweet cards, reaction bars, reply trees and forms.
package components

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/a-h/templ"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
	"github.com/tubededentifrice/twitter-clone/internal/view"
)

//go:embed *.html
var files embed.FS

var funcs = template.FuncMap{
	"tweetPath":    view.TweetPath,
	"reactionPath": view.ReactionPath,
	"profilePath":  view.ProfilePath,
	"maxLength":    func() int { return domain.MaxContentLength },
}

var base = template.Must(template.New("components").Funcs(funcs).ParseFS(files, "*.html"))

// Extend returns a new template set holding every component plus the
// templates matched in fsys.
func Extend(fsys fs.FS, patterns ...string) *template.Template {
	set := template.Must(base.Clone())
	return template.Must(set.ParseFS(fsys, patterns...))
}

// Flash is a one-off message shown above the page content.
type Flash struct {
	Message string
	Kind    string // "error" or "info"
}

// ComposeForm is a tweet or reply form.
type ComposeForm struct {
	Action      string
	ParentID    string
	Placeholder string
	Button      string
	Content     string // Kept after a failed submit
	Counter     view.Counter
}

// NewComposeForm builds a form keeping content after a failed submit.
func NewComposeForm(action, parentID, content string) ComposeForm {
	f := ComposeForm{
		Action:      action,
		ParentID:    parentID,
		Placeholder: "What's happening?",
		Button:      "Tweet",
		Content:     content,
		Counter:     view.ContentCounter(content),
	}
	if parentID != "" {
		f.Placeholder = "Tweet your reply"
		f.Button = "Reply"
	}
	return f
}

func TweetCard(c view.Card) templ.Component {
	return templ.FromGoHTML(base.Lookup("tweet_card"), c)
}

func ReactionBar(c view.Card) templ.Component {
	return templ.FromGoHTML(base.Lookup("reaction_bar"), c)
}

// ReplyTree renders nested replies; each level is indented one step more
// than its parent.
func ReplyTree(nodes []view.Node) templ.Component {
	return templ.FromGoHTML(base.Lookup("reply_tree"), nodes)
}

func Compose(f ComposeForm) templ.Component {
	return templ.FromGoHTML(base.Lookup("compose_form"), f)
}

func ErrorMessage(msg string) templ.Component {
	return templ.FromGoHTML(base.Lookup("error_message"), msg)
}

func FlashMessage(f Flash) templ.Component {
	return templ.FromGoHTML(base.Lookup("flash"), f)
}
