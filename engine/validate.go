package engine

import "fmt"

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorruptState}, args...)...)
}

// Validate checks the structural invariants of a match, typically one
// rebuilt from a snapshot: every card sits in exactly the container its
// location names, the board layout is legal and scores add up.
func (m *Match) Validate() error {
	if err := m.Rules.Validate(); err != nil {
		return corruptf("%v", err)
	}
	if m.Phase > PhaseGameOver {
		return corruptf("phase %d", m.Phase)
	}
	if m.CurrentPlayer >= NumSeats {
		return corruptf("current player %d", m.CurrentPlayer)
	}
	for i, c := range m.Cards {
		if c.ID != CardID(i) {
			return corruptf("card at %d has id %d", i, c.ID)
		}
		if c.IsNumber() && (c.Value < 1 || c.Value > 4 || c.Assist != AssistNone) {
			return corruptf("number card %d has face %s", c.ID, c.Label())
		}
		if c.IsAssist() && (c.Assist == AssistNone || c.Assist > AssistMeowster) {
			return corruptf("assist card %d has no kind", c.ID)
		}
	}
	if err := m.validateBoard(); err != nil {
		return err
	}

	seen := make([]int, len(m.Cards))
	claim := func(id CardID, loc Location) error {
		c, ok := m.Card(id)
		if !ok {
			return corruptf("%s holds unknown card %d", loc, id)
		}
		if c.Loc != loc {
			return corruptf("card %d is in %s but marked %s", id, loc, c.Loc)
		}
		seen[id]++
		return nil
	}

	for f := range m.Decks {
		if m.Decks[f].Family != Family(f) {
			return corruptf("deck %d holds family %s", f, m.Decks[f].Family)
		}
		for _, id := range m.Decks[f].Remaining {
			if err := claim(id, LocDeck); err != nil {
				return err
			}
			if m.Cards[id].Family != Family(f) {
				return corruptf("card %d in the %s deck", id, Family(f))
			}
		}
	}
	for s := range m.Hands {
		if m.Hands[s].Len() > MaxHandSize {
			return corruptf("seat %d holds %d cards", s, m.Hands[s].Len())
		}
		for _, id := range m.Hands[s].Cards {
			if err := claim(id, LocHand); err != nil {
				return err
			}
			if m.Cards[id].Owner != int8(s) {
				return corruptf("card %d in seat %d hand owned by %d", id, s, m.Cards[id].Owner)
			}
		}
	}
	for i, t := range m.Board.Tiles {
		if !t.Occupied() {
			continue
		}
		if err := claim(t.Card, LocBoard); err != nil {
			return err
		}
		if m.Cards[t.Card].Tile != int8(i) {
			return corruptf("card %d on tile %d marked tile %d", t.Card, i, m.Cards[t.Card].Tile)
		}
	}
	for _, e := range m.Discard.History {
		if err := claim(e.Card, LocDiscard); err != nil {
			return err
		}
	}
	for id, n := range seen {
		if n != 1 {
			return corruptf("card %d appears %d times", id, n)
		}
	}
	return nil
}

func (m *Match) validateBoard() error {
	b := &m.Board
	if b.Values != m.Rules.CupValues {
		return corruptf("board cup values differ from rules")
	}
	center := b.Tiles[CenterTile]
	if center.Cup != CupNone || center.Occupied() {
		return corruptf("center tile must be empty with no cup")
	}
	var colors [NumCupColors]int
	for i, t := range b.Tiles[:CenterTile] {
		if t.Index != uint8(i) {
			return corruptf("tile %d has index %d", i, t.Index)
		}
		if t.Cup != CupWhite && !t.Cup.IsColored() {
			return corruptf("tile %d has cup %s", i, t.Cup)
		}
		colors[t.Cup]++
		want := 0
		if t.Occupied() {
			c, ok := m.Card(t.Card)
			if !ok || !c.IsNumber() {
				return corruptf("tile %d holds a non-number card", i)
			}
			want = TileScore(t.Cup, c.Value, b.Values)
		}
		if t.Score != want {
			return corruptf("tile %d scores %d, want %d", i, t.Score, want)
		}
	}
	for _, c := range ColoredCups {
		if colors[c] != 1 {
			return corruptf("%d %s cups on the board", colors[c], c)
		}
	}
	if b.TotalScore != b.RecomputeScore() {
		return corruptf("total score %d, tiles sum to %d", b.TotalScore, b.RecomputeScore())
	}
	return nil
}
