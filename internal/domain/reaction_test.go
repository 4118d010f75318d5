package domain_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/tubededentifrice/twitter-clone/internal/domain"
)

func TestApplyReaction_Scenario_LikeToggleDislike(t *testing.T) {
	// Arrange
	s := domain.ReactionState{LikesCount: 3, DislikesCount: 1, UserReaction: domain.ReactionNone}
	steps := []struct {
		apply domain.Reaction
		want  domain.ReactionState
	}{
		{domain.ReactionLike, domain.ReactionState{LikesCount: 4, DislikesCount: 1, UserReaction: domain.ReactionLike}},
		{domain.ReactionLike, domain.ReactionState{LikesCount: 3, DislikesCount: 1, UserReaction: domain.ReactionNone}},
		{domain.ReactionDislike, domain.ReactionState{LikesCount: 3, DislikesCount: 2, UserReaction: domain.ReactionDislike}},
	}

	for i, step := range steps {
		// Act
		next, err := domain.ApplyReaction(s, step.apply)

		// Assert
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if next != step.want {
			t.Errorf("step %d: got %+v, want %+v", i, next, step.want)
		}
		s = next
	}
}

func TestApplyReaction_SwitchMovesOneUnit(t *testing.T) {
	testCases := []struct {
		name string
		from domain.ReactionState
		to   domain.Reaction
		want domain.ReactionState
	}{
		{
			name: "like to dislike",
			from: domain.ReactionState{LikesCount: 5, DislikesCount: 2, UserReaction: domain.ReactionLike},
			to:   domain.ReactionDislike,
			want: domain.ReactionState{LikesCount: 4, DislikesCount: 3, UserReaction: domain.ReactionDislike},
		},
		{
			name: "dislike to like",
			from: domain.ReactionState{LikesCount: 0, DislikesCount: 1, UserReaction: domain.ReactionDislike},
			to:   domain.ReactionLike,
			want: domain.ReactionState{LikesCount: 1, DislikesCount: 0, UserReaction: domain.ReactionLike},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ApplyReaction(tc.from, tc.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
			if total := got.LikesCount + got.DislikesCount; total != tc.from.LikesCount+tc.from.DislikesCount {
				t.Errorf("total reactions changed: got %d, want %d", total, tc.from.LikesCount+tc.from.DislikesCount)
			}
		})
	}
}

func TestApplyReaction_ToggleTwice_RestoresOriginal(t *testing.T) {
	for _, r := range []domain.Reaction{domain.ReactionLike, domain.ReactionDislike} {
		// Arrange
		original := domain.ReactionState{LikesCount: 7, DislikesCount: 4}

		// Act
		once, _ := domain.ApplyReaction(original, r)
		twice, _ := domain.ApplyReaction(once, r)

		// Assert
		if twice != original {
			t.Errorf("%s twice: got %+v, want %+v", r, twice, original)
		}
	}
}

func TestApplyReaction_NeverNegative_WhenServerStateIsInconsistent(t *testing.T) {
	// Arrange: the viewer's reaction says like but the counter is already zero.
	s := domain.ReactionState{LikesCount: 0, DislikesCount: 0, UserReaction: domain.ReactionLike}

	// Act
	off, _ := domain.ApplyReaction(s, domain.ReactionLike)
	switched, _ := domain.ApplyReaction(s, domain.ReactionDislike)

	// Assert
	if off.LikesCount != 0 {
		t.Errorf("LikesCount after toggle off: got %d, want 0", off.LikesCount)
	}
	if switched.LikesCount != 0 || switched.DislikesCount != 1 {
		t.Errorf("after switch: got %+v, want likes 0 dislikes 1", switched)
	}
}

func TestApplyReaction_RandomSequences_HoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	reactions := []domain.Reaction{domain.ReactionLike, domain.ReactionDislike}

	for run := 0; run < 200; run++ {
		s := domain.ReactionState{LikesCount: rng.Intn(3), DislikesCount: rng.Intn(3)}
		var last domain.Reaction
		var toggledOff bool

		for i := 0; i < 50; i++ {
			r := reactions[rng.Intn(2)]
			prev := s.UserReaction
			next, err := domain.ApplyReaction(s, r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			last, toggledOff = r, prev == r
			s = next

			if s.LikesCount < 0 || s.DislikesCount < 0 {
				t.Fatalf("run %d step %d: negative counter %+v", run, i, s)
			}
		}

		want := last
		if toggledOff {
			want = domain.ReactionNone
		}
		if s.UserReaction != want {
			t.Errorf("run %d: UserReaction got %v, want %v", run, s.UserReaction, want)
		}
	}
}

func TestApplyReaction_InvalidType_ReturnsError(t *testing.T) {
	s := domain.ReactionState{LikesCount: 1}

	got, err := domain.ApplyReaction(s, domain.Reaction("love"))

	if !errors.Is(err, domain.ErrInvalidReaction) {
		t.Errorf("expected ErrInvalidReaction, got %v", err)
	}
	if got != s {
		t.Errorf("state changed on invalid reaction: %+v", got)
	}
}

func TestParseReaction(t *testing.T) {
	testCases := []struct {
		in      string
		want    domain.Reaction
		wantErr bool
	}{
		{in: "like", want: domain.ReactionLike},
		{in: "dislike", want: domain.ReactionDislike},
		{in: "", want: domain.ReactionNone},
		{in: "none", want: domain.ReactionNone},
		{in: "LIKE", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := domain.ParseReaction(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseReaction(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseReaction(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestReactionSummary_Reconcile_OverwritesReportedFields(t *testing.T) {
	likes, dislikes := 10, 2
	liked := domain.ReactionLike
	summary := domain.ReactionSummary{LikesCount: &likes, DislikesCount: &dislikes, UserReaction: &liked}

	got := summary.Reconcile(domain.ReactionState{LikesCount: 4, DislikesCount: 1})

	if !summary.Authoritative() {
		t.Error("expected summary with both counters to be authoritative")
	}
	want := domain.ReactionState{LikesCount: 10, DislikesCount: 2, UserReaction: domain.ReactionLike}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReactionSummary_MessageOnly_KeepsState(t *testing.T) {
	summary := domain.ReactionSummary{Message: "Reaction like added"}
	s := domain.ReactionState{LikesCount: 4, UserReaction: domain.ReactionLike}

	if summary.Authoritative() {
		t.Error("message-only summary should not be authoritative")
	}
	if got := summary.Reconcile(s); got != s {
		t.Errorf("got %+v, want %+v", got, s)
	}
}

func TestReactionSummary_PartialSummary_KeepsState(t *testing.T) {
	none := domain.ReactionNone
	likes := 9
	testCases := []struct {
		name    string
		summary domain.ReactionSummary
	}{
		{name: "reaction without counters", summary: domain.ReactionSummary{UserReaction: &none}},
		{name: "one counter only", summary: domain.ReactionSummary{LikesCount: &likes, UserReaction: &none}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			s := domain.ReactionState{LikesCount: 4, UserReaction: domain.ReactionLike}

			// Act
			got := tc.summary.Reconcile(s)

			// Assert
			if got != s {
				t.Errorf("got %+v, want %+v", got, s)
			}
		})
	}
}
