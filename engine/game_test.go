package engine

import (
	"errors"
	"slices"
	"testing"
)

func TestNewMatchComposition(t *testing.T) {
	rules := DefaultHouseRules()
	m := NewMatch(42, rules)

	if got, want := m.Decks[FamilyNumber].Len(), 4*int(rules.NumberCopies); got != want {
		t.Fatalf("number deck = %d cards, want %d", got, want)
	}
	if got, want := m.Decks[FamilyAssist].Len(), 2*int(rules.AssistCopies); got != want {
		t.Fatalf("assist deck = %d cards, want %d", got, want)
	}
	var values [5]int
	for _, id := range m.Decks[FamilyNumber].Remaining {
		c := m.Cards[id]
		if !c.IsNumber() || c.FaceUp || c.Loc != LocDeck {
			t.Fatalf("number deck card %+v", c)
		}
		values[c.Value]++
	}
	for v := 1; v <= 4; v++ {
		if values[v] != int(rules.NumberCopies) {
			t.Errorf("%d copies of %d, want %d", values[v], v, rules.NumberCopies)
		}
	}
	if m.Phase != PhaseWaitingForPlayers {
		t.Fatalf("Phase = %s, want waiting", m.Phase)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestNewMatchDeterministic(t *testing.T) {
	a := NewMatch(1234, DefaultHouseRules())
	b := NewMatch(1234, DefaultHouseRules())
	c := NewMatch(4321, DefaultHouseRules())

	sameState(t, &a, &b)
	if a.RNG != b.RNG {
		t.Fatal("same seed left different RNG state")
	}
	if slices.Equal(a.Decks[FamilyNumber].Remaining, c.Decks[FamilyNumber].Remaining) {
		t.Fatal("different seeds produced the same number deck order")
	}
}

func TestStartAndTurnState(t *testing.T) {
	m := NewMatch(5, DefaultHouseRules())
	if got := m.TurnStateFor(0); got != TurnWaitingForOpponent {
		t.Fatalf("before start: %s", got)
	}
	wantErr(t, &m, 0, ClickDeck{Family: FamilyNumber}, ErrNotInProgress)

	if err := m.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.TurnStateFor(1) != TurnMine || m.TurnStateFor(0) != TurnOpponent {
		t.Fatalf("after start: seat0=%s seat1=%s", m.TurnStateFor(0), m.TurnStateFor(1))
	}
	if err := m.Start(0); !errors.Is(err, ErrDesync) {
		t.Fatalf("second Start = %v, want ErrDesync", err)
	}

	m.ForceGameOver(ReasonDisconnect)
	if m.TurnStateFor(0) != TurnGameOver || m.Reason != ReasonDisconnect {
		t.Fatalf("after ForceGameOver: %s %s", m.TurnStateFor(0), m.Reason)
	}
	m.ForceGameOver(ReasonDesync)
	if m.Reason != ReasonDisconnect {
		t.Fatalf("ForceGameOver overwrote reason with %s", m.Reason)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := newStartedMatch(t)
	mustApply(t, m, 0, ClickDeck{Family: FamilyNumber})

	c := m.Clone()
	mustApply(t, m, 0, ClickDeck{Family: FamilyAssist})

	if c.Hands[0].Len() != 1 {
		t.Fatalf("clone hand changed: %d cards", c.Hands[0].Len())
	}
	if c.Decks[FamilyAssist].Len() == m.Decks[FamilyAssist].Len() {
		t.Fatal("clone deck shares memory with the original")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("clone Validate: %v", err)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(m *Match)
	}{
		{"card in two places", func(m *Match) {
			id := m.Decks[FamilyNumber].Remaining[0]
			m.Hands[0].Cards = append(m.Hands[0].Cards, id)
		}},
		{"missing card", func(m *Match) {
			m.Decks[FamilyAssist].Remaining = m.Decks[FamilyAssist].Remaining[1:]
		}},
		{"score drift", func(m *Match) { m.Board.TotalScore = 3 }},
		{"two purple cups", func(m *Match) {
			red := m.Board.TileWithCup(CupRed)
			m.Board.Tiles[red].Cup = CupPurple
		}},
		{"card on center", func(m *Match) {
			m.Board.Tiles[CenterTile].Card = 0
		}},
		{"bad current player", func(m *Match) { m.CurrentPlayer = 2 }},
		{"overfull hand", func(m *Match) {
			for i := 0; i <= MaxHandSize; i++ {
				id, _ := m.Decks[FamilyNumber].Draw()
				m.Cards[id].Loc = LocHand
				m.Cards[id].Owner = 1
				m.Hands[1].Cards = append(m.Hands[1].Cards, id)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch(8, DefaultHouseRules())
			tt.corrupt(&m)
			if err := m.Validate(); !errors.Is(err, ErrCorruptState) {
				t.Fatalf("Validate() = %v, want ErrCorruptState", err)
			}
		})
	}
}

func TestRulesValidate(t *testing.T) {
	r := DefaultHouseRules()
	if err := r.Validate(); err != nil {
		t.Fatalf("default rules: %v", err)
	}
	r.NumberCopies = 1
	if err := r.Validate(); err == nil {
		t.Fatal("one copy per number cannot fill the board")
	}
	r = DefaultHouseRules()
	r.CupValues[CupRed] = 1
	if err := r.Validate(); err == nil {
		t.Fatal("two cups mapped to 1 accepted")
	}
}
