package domain

// Reaction is a viewer's mark on a tweet. Like and dislike are mutually
// exclusive per viewer per tweet.
type Reaction string

const (
	ReactionNone    Reaction = ""
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// ParseReaction converts a wire value into a Reaction.
// Unknown values return ErrInvalidReaction.
func ParseReaction(s string) (Reaction, error) {
	switch Reaction(s) {
	case ReactionLike:
		return ReactionLike, nil
	case ReactionDislike:
		return ReactionDislike, nil
	case ReactionNone, "none":
		return ReactionNone, nil
	default:
		return ReactionNone, ErrInvalidReaction
	}
}

// String returns "none" for the empty reaction.
func (r Reaction) String() string {
	if r == ReactionNone {
		return "none"
	}
	return string(r)
}

// ReactionState is the local, optimistically mutated reaction state of a tweet.
type ReactionState struct {
	LikesCount    int
	DislikesCount int
	UserReaction  Reaction
}

// ApplyReaction toggles reaction r on state s and returns the new state.
//
// Same reaction again removes it, a first reaction adds it, and the other
// reaction moves one unit from the previous counter to the new one.
// Counters never go below zero.
func ApplyReaction(s ReactionState, r Reaction) (ReactionState, error) {
	if r != ReactionLike && r != ReactionDislike {
		return s, ErrInvalidReaction
	}

	current := s.UserReaction
	switch {
	case current == r:
		s.UserReaction = ReactionNone
		s.add(r, -1)
	case current == ReactionNone:
		s.UserReaction = r
		s.add(r, 1)
	default:
		s.UserReaction = r
		s.add(current, -1)
		s.add(r, 1)
	}
	return s, nil
}

func (s *ReactionState) add(r Reaction, delta int) {
	switch r {
	case ReactionLike:
		s.LikesCount = clampCount(s.LikesCount + delta)
	case ReactionDislike:
		s.DislikesCount = clampCount(s.DislikesCount + delta)
	}
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ReactionSummary is what the reaction endpoint answers. Counters are only
// present when the server reports them.
type ReactionSummary struct {
	Message       string
	LikesCount    *int
	DislikesCount *int
	UserReaction  *Reaction
}

// Authoritative reports whether the summary carries full counters.
func (rs ReactionSummary) Authoritative() bool {
	return rs.LikesCount != nil && rs.DislikesCount != nil
}

// Reconcile overwrites s with the server's state when the summary is
// authoritative. Partial summaries leave s untouched: a reported reaction
// without both counters would disagree with the optimistic counts.
func (rs ReactionSummary) Reconcile(s ReactionState) ReactionState {
	if !rs.Authoritative() {
		return s
	}
	s.LikesCount = clampCount(*rs.LikesCount)
	s.DislikesCount = clampCount(*rs.DislikesCount)
	if rs.UserReaction != nil {
		s.UserReaction = *rs.UserReaction
	}
	return s
}
