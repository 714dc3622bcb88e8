package engine

import (
	"errors"
	"testing"
)

func TestDrawNumberIsRevealed(t *testing.T) {
	m := newStartedMatch(t)
	top, _ := m.Decks[FamilyNumber].Top()
	before := m.Decks[FamilyNumber].Len()

	ev := mustApply(t, m, 0, ClickDeck{Family: FamilyNumber})
	if ev.Kind != EventCardDrawn || ev.Card != top || ev.Family != FamilyNumber {
		t.Fatalf("event = %+v, want draw of card %d", ev, top)
	}
	if ev.TurnEnded {
		t.Fatal("drawing must not end the turn")
	}
	if m.Decks[FamilyNumber].Len() != before-1 || m.Decks[FamilyNumber].Contains(top) {
		t.Fatal("drawn card still in deck")
	}
	c := m.Cards[top]
	if !c.FaceUp || c.Loc != LocHand || c.Owner != 0 {
		t.Fatalf("drawn number card = %+v", c)
	}
	if m.CurrentPlayer != 0 || m.DrawsThisTurn != 1 {
		t.Fatalf("CurrentPlayer = %d, DrawsThisTurn = %d", m.CurrentPlayer, m.DrawsThisTurn)
	}
}

func TestDrawAssistStaysFaceDown(t *testing.T) {
	m := newStartedMatch(t)
	ev := mustApply(t, m, 0, ClickDeck{Family: FamilyAssist})
	if c := m.Cards[ev.Card]; c.FaceUp || !c.IsAssist() {
		t.Fatalf("drawn assist card = %+v", c)
	}
}

func TestDrawWithFullHand(t *testing.T) {
	m := newStartedMatch(t)
	for i := 0; i < MaxHandSize; i++ {
		mustApply(t, m, 0, ClickDeck{Family: FamilyNumber})
	}
	before := m.Decks[FamilyNumber].Len()
	wantErr(t, m, 0, ClickDeck{Family: FamilyNumber}, ErrHandFull)
	if m.Decks[FamilyNumber].Len() != before {
		t.Fatal("deck touched by rejected draw")
	}
	if m.Hands[0].Len() != MaxHandSize {
		t.Fatalf("hand = %d cards, want %d", m.Hands[0].Len(), MaxHandSize)
	}
}

func TestDrawFromExhaustedDeck(t *testing.T) {
	m := newStartedMatch(t)
	for m.Decks[FamilyAssist].Len() > 0 {
		mustApply(t, m, 0, ClickDeck{Family: FamilyAssist})
	}
	wantErr(t, m, 0, ClickDeck{Family: FamilyAssist}, ErrDeckExhausted)
	if m.Phase != PhaseInProgress {
		t.Fatalf("Phase = %s, an empty deck is not terminal", m.Phase)
	}
}

func TestDrawLimitPerTurn(t *testing.T) {
	rules := DefaultHouseRules()
	rules.DrawLimitPerTurn = 2
	m := NewMatch(11, rules)
	if err := m.Start(0); err != nil {
		t.Fatal(err)
	}
	mustApply(t, &m, 0, ClickDeck{Family: FamilyNumber})
	mustApply(t, &m, 0, ClickDeck{Family: FamilyAssist})
	wantErr(t, &m, 0, ClickDeck{Family: FamilyNumber}, ErrDrawLimit)

	id := m.Hands[0].Cards[0]
	place(t, &m, 0, id, 0)
	if m.DrawsThisTurn != 0 {
		t.Fatalf("DrawsThisTurn = %d after turn end, want 0", m.DrawsThisTurn)
	}
	mustApply(t, &m, 1, ClickDeck{Family: FamilyNumber})
}

func TestIntentsRejectedOutOfTurn(t *testing.T) {
	m := newStartedMatch(t)
	held := giveNumber(t, m, 1, 2)
	intents := []Intent{
		ClickDeck{Family: FamilyNumber},
		SelectCard{Card: held},
		ClickTile{Tile: 0},
		PickReclaim{Option: 0},
		CancelSelection{},
	}
	before := m.Clone()
	for _, in := range intents {
		wantErr(t, m, 1, in, ErrNotYourTurn)
	}
	sameState(t, m, &before)
	if m.Selected != NoCard {
		t.Fatal("out-of-turn select changed the selection")
	}
}

func TestSelectCardToggles(t *testing.T) {
	m := newStartedMatch(t)
	a := giveNumber(t, m, 0, 1)
	b := giveNumber(t, m, 0, 3)

	if ev := mustApply(t, m, 0, SelectCard{Card: a}); ev.Kind != EventCardSelected || m.Selected != a {
		t.Fatalf("select a: %s, Selected = %d", ev.Kind, m.Selected)
	}
	mustApply(t, m, 0, SelectCard{Card: b})
	if m.Selected != b {
		t.Fatalf("Selected = %d, want %d", m.Selected, b)
	}
	if ev := mustApply(t, m, 0, SelectCard{Card: b}); ev.Kind != EventCardDeselected || m.Selected != NoCard {
		t.Fatalf("reselect: %s, Selected = %d", ev.Kind, m.Selected)
	}

	other := giveNumber(t, m, 1, 4)
	wantErr(t, m, 0, SelectCard{Card: other}, ErrCardNotInHand)
	wantErr(t, m, 0, SelectCard{Card: 5000}, ErrUnknownCard)
}

func TestClickTileRules(t *testing.T) {
	m := newStartedMatch(t)
	wantErr(t, m, 0, ClickTile{Tile: 0}, ErrNoCardSelected)

	id := giveNumber(t, m, 0, 2)
	mustApply(t, m, 0, SelectCard{Card: id})
	wantErr(t, m, 0, ClickTile{Tile: CenterTile}, ErrInvalidTile)
	if m.Selected != id || !m.Hands[0].Contains(id) {
		t.Fatal("rejected click lost the selected card")
	}
}

func TestPlacementEndsTurn(t *testing.T) {
	m := newStartedMatch(t)
	id := giveNumber(t, m, 0, 3)
	tile := scoringTile(t, m, 3)

	ev := place(t, m, 0, id, tile)
	if ev.Kind != EventNumberPlaced || ev.Tile != tile || ev.Score != 3 {
		t.Fatalf("event = %+v", ev)
	}
	if !ev.TurnEnded || ev.NextPlayer != 1 || m.CurrentPlayer != 1 {
		t.Fatalf("turn did not pass: event next %d, current %d", ev.NextPlayer, m.CurrentPlayer)
	}
	if m.TotalScore() != 3 || m.Board.Tiles[tile].Card != id {
		t.Fatalf("score %d, tile card %d", m.TotalScore(), m.Board.Tiles[tile].Card)
	}
	if c := m.Cards[id]; c.Loc != LocBoard || int(c.Tile) != tile || c.Owner != -1 || m.Hands[0].Contains(id) {
		t.Fatalf("placed card = %+v", c)
	}

	second := giveNumber(t, m, 1, 1)
	mustApply(t, m, 1, SelectCard{Card: second})
	wantErr(t, m, 1, ClickTile{Tile: tile}, ErrTileOccupied)
	if m.Board.Tiles[tile].Card != id {
		t.Fatal("occupied tile was overwritten")
	}
}

// Draws 1, 2, 3 and 4 in turn, places each on its matching cup, then fills
// the white tiles until the board completes.
func TestFullMatchScoresMatchingCups(t *testing.T) {
	m := newStartedMatch(t)
	stackNumbers(t, m, 1, 2, 3, 4, 1, 1, 1, 1)

	want := 0
	for _, v := range []uint8{1, 2, 3, 4} {
		seat := m.CurrentPlayer
		ev := mustApply(t, m, seat, ClickDeck{Family: FamilyNumber})
		if got := m.Cards[ev.Card].Value; got != v {
			t.Fatalf("drew %d, want %d", got, v)
		}
		placed := place(t, m, seat, ev.Card, scoringTile(t, m, v))
		want += int(v)
		if placed.Score != int(v) || m.TotalScore() != want {
			t.Fatalf("after %d: delta %d total %d, want %d %d", v, placed.Score, m.TotalScore(), v, want)
		}
		if m.CurrentPlayer == seat {
			t.Fatalf("turn did not alternate after seat %d placed", seat)
		}
	}
	if want != 10 {
		t.Fatalf("want total 10, got %d", want)
	}

	var last Event
	for _, tile := range whiteTiles(m) {
		seat := m.CurrentPlayer
		ev := mustApply(t, m, seat, ClickDeck{Family: FamilyNumber})
		last = place(t, m, seat, ev.Card, tile)
	}
	if !last.GameOver || last.Reason != ReasonBoardComplete {
		t.Fatalf("last placement: GameOver %v reason %s", last.GameOver, last.Reason)
	}
	if !m.IsOver() || m.TotalScore() != 10 {
		t.Fatalf("Phase %s, score %d", m.Phase, m.TotalScore())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for seat := uint8(0); seat < NumSeats; seat++ {
		_, err := m.ApplyIntent(seat, ClickDeck{Family: FamilyNumber})
		if !errors.Is(err, ErrGameOver) {
			t.Fatalf("seat %d after game over: %v", seat, err)
		}
	}
}
