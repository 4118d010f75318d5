// Package partials renders the HTML fragments HTMX swaps into a page.
package partials

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/tubededentifrice/twitter-clone/internal/view"
	"github.com/tubededentifrice/twitter-clone/templates/components"
)

//go:embed *.html
var files embed.FS

var set = components.Extend(files, "*.html")

type reactionUpdate struct {
	Card  view.Card
	Flash components.Flash
}

// ReactionUpdate replaces a tweet's reaction bar. A non-empty flash is
// swapped out of band into the page's #flash region, e.g. after a rollback.
func ReactionUpdate(card view.Card, flash components.Flash) templ.Component {
	return templ.FromGoHTML(set.Lookup("reaction_update"), reactionUpdate{Card: card, Flash: flash})
}

// Replies is the "Replies" section of a thread, refreshed after a reply.
func Replies(th view.Thread) templ.Component {
	return templ.FromGoHTML(set.Lookup("replies_section"), th)
}
