package engine

import (
	"errors"
	"slices"
	"testing"
)

// newStartedMatch creates a standard match with seat 0 to act.
func newStartedMatch(t *testing.T) *Match {
	t.Helper()
	m := NewMatch(42, DefaultHouseRules())
	if err := m.Start(0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return &m
}

// mustApply applies an intent and fails the test on error.
func mustApply(t *testing.T, m *Match, seat uint8, in Intent) Event {
	t.Helper()
	ev, err := m.ApplyIntent(seat, in)
	if err != nil {
		t.Fatalf("ApplyIntent(%d, %#v): %v", seat, in, err)
	}
	return ev
}

// wantErr applies an intent that must fail with target.
func wantErr(t *testing.T, m *Match, seat uint8, in Intent, target error) {
	t.Helper()
	_, err := m.ApplyIntent(seat, in)
	if !errors.Is(err, target) {
		t.Fatalf("ApplyIntent(%d, %#v) = %v, want %v", seat, in, err, target)
	}
}

// give moves the first deck card accepted by match straight into seat's hand.
func give(t *testing.T, m *Match, seat uint8, f Family, match func(Card) bool) CardID {
	t.Helper()
	d := &m.Decks[f]
	for i, id := range d.Remaining {
		if !match(m.Cards[id]) {
			continue
		}
		d.Remaining = append(d.Remaining[:i], d.Remaining[i+1:]...)
		c := &m.Cards[id]
		c.Loc = LocHand
		c.Owner = int8(seat)
		c.FaceUp = f == FamilyNumber
		if !m.Hands[seat].Add(id) {
			t.Fatalf("give: seat %d hand is full", seat)
		}
		return id
	}
	t.Fatalf("give: no matching %s card left", f)
	return NoCard
}

func giveNumber(t *testing.T, m *Match, seat uint8, value uint8) CardID {
	t.Helper()
	return give(t, m, seat, FamilyNumber, func(c Card) bool { return c.Value == value })
}

func giveAssist(t *testing.T, m *Match, seat uint8, kind AssistKind) CardID {
	t.Helper()
	return give(t, m, seat, FamilyAssist, func(c Card) bool { return c.Assist == kind })
}

// stackNumbers moves number cards with the given values to the top of the
// number deck so they are drawn in that order.
func stackNumbers(t *testing.T, m *Match, values ...uint8) {
	t.Helper()
	d := &m.Decks[FamilyNumber]
	var top []CardID
	for _, v := range values {
		i := slices.IndexFunc(d.Remaining, func(id CardID) bool { return m.Cards[id].Value == v })
		if i < 0 {
			t.Fatalf("stackNumbers: no %d left in deck", v)
		}
		top = append(top, d.Remaining[i])
		d.Remaining = append(d.Remaining[:i], d.Remaining[i+1:]...)
	}
	for i := len(top) - 1; i >= 0; i-- {
		d.Remaining = append(d.Remaining, top[i])
	}
}

// place selects a held number card and clicks tile.
func place(t *testing.T, m *Match, seat uint8, id CardID, tile int) Event {
	t.Helper()
	mustApply(t, m, seat, SelectCard{Card: id})
	return mustApply(t, m, seat, ClickTile{Tile: tile})
}

// scoringTile returns the tile whose cup scores value.
func scoringTile(t *testing.T, m *Match, value uint8) int {
	t.Helper()
	for i, tile := range m.Board.Tiles {
		if tile.Cup.IsColored() && m.Board.Values.Of(tile.Cup) == value {
			return i
		}
	}
	t.Fatalf("no tile scores %d", value)
	return -1
}

// whiteTiles returns the white tiles in index order.
func whiteTiles(m *Match) []int {
	var out []int
	for i, tile := range m.Board.Tiles {
		if tile.Cup == CupWhite {
			out = append(out, i)
		}
	}
	return out
}

// sameState fails unless a and b agree on all synchronized state.
func sameState(t *testing.T, a, b *Match) {
	t.Helper()
	if !slices.Equal(a.Cards, b.Cards) {
		t.Fatalf("card registries differ:\n%v\n%v", a.Cards, b.Cards)
	}
	if a.Board.Tiles != b.Board.Tiles || a.Board.TotalScore != b.Board.TotalScore {
		t.Fatalf("boards differ:\n%v\n%v", a.Board, b.Board)
	}
	for s := range a.Hands {
		if !slices.Equal(a.Hands[s].Cards, b.Hands[s].Cards) {
			t.Fatalf("seat %d hands differ: %v vs %v", s, a.Hands[s].Cards, b.Hands[s].Cards)
		}
	}
	for f := range a.Decks {
		if !slices.Equal(a.Decks[f].Remaining, b.Decks[f].Remaining) {
			t.Fatalf("%s decks differ", Family(f))
		}
	}
	if !slices.Equal(a.Discard.History, b.Discard.History) {
		t.Fatalf("discard piles differ:\n%v\n%v", a.Discard.History, b.Discard.History)
	}
	if a.CurrentPlayer != b.CurrentPlayer || a.Phase != b.Phase || a.Reason != b.Reason || a.TurnNumber != b.TurnNumber {
		t.Fatalf("turn state differs: (%d %s %s %d) vs (%d %s %s %d)",
			a.CurrentPlayer, a.Phase, a.Reason, a.TurnNumber,
			b.CurrentPlayer, b.Phase, b.Reason, b.TurnNumber)
	}
}
