package view

import (
	"time"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

// Node is one reply in a rendered reply tree.
type Node struct {
	Card    Card
	Depth   int // 1 for direct replies of the root
	Replies []Node
}

// Thread is a tweet with its rendered reply tree.
// Replies is nil when the tweet has no replies; no section is shown then.
type Thread struct {
	Root    Card
	Replies []Node
}

// HasReplies reports whether the thread has a reply section.
func (th Thread) HasReplies() bool {
	return len(th.Replies) > 0
}

// RenderReplyTree builds the thread view of t from its reply snapshot.
// Reply cards are not navigable: the detail view is already the deepest
// context. The input is never modified.
func RenderReplyTree(t domain.Tweet, now time.Time) Thread {
	return Thread{
		Root:    NewCard(t, now, CardOptions{ShowAuthor: true}),
		Replies: renderReplies(t.Replies, now, 1),
	}
}

func renderReplies(replies []domain.Tweet, now time.Time, depth int) []Node {
	if len(replies) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(replies))
	for _, r := range replies {
		nodes = append(nodes, Node{
			Card:    NewCard(r, now, CardOptions{ShowAuthor: true}),
			Depth:   depth,
			Replies: renderReplies(r.Replies, now, depth+1),
		})
	}
	return nodes
}

// Flatten lists the thread in display order, root first at depth 0.
func Flatten(th Thread) []Node {
	out := []Node{{Card: th.Root}}
	var visit func([]Node)
	visit = func(nodes []Node) {
		for _, n := range nodes {
			out = append(out, Node{Card: n.Card, Depth: n.Depth})
			visit(n.Replies)
		}
	}
	visit(th.Replies)
	return out
}
