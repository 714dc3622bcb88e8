package engine

import "fmt"

// ApplyIntent validates and applies one intent from seat. On error the match
// is unchanged.
func (m *Match) ApplyIntent(seat uint8, in Intent) (Event, error) {
	switch m.Phase {
	case PhaseWaitingForPlayers:
		return Event{}, ErrNotInProgress
	case PhaseGameOver:
		return Event{}, ErrGameOver
	}
	if seat != m.CurrentPlayer {
		return Event{}, ErrNotYourTurn
	}

	if m.Selection != nil {
		switch in := in.(type) {
		case PickReclaim:
			return m.pickReclaim(seat, in.Option)
		case CancelSelection:
			return m.cancelSelection(seat), nil
		default:
			return Event{}, ErrSelectionActive
		}
	}

	switch in := in.(type) {
	case SelectCard:
		return m.selectCard(seat, in.Card)
	case ClickTile:
		return m.clickTile(seat, in.Tile)
	case ClickDeck:
		return m.draw(seat, in.Family)
	case PickReclaim, CancelSelection:
		return Event{}, ErrNoSelection
	default:
		return Event{}, fmt.Errorf("unhandled intent %T", in)
	}
}

// ---------------------------------------------------------------------------
// Drawing
// ---------------------------------------------------------------------------

func (m *Match) draw(seat uint8, f Family) (Event, error) {
	if f >= numFamilies {
		return Event{}, fmt.Errorf("deck %d: %w", f, ErrWrongCardFamily)
	}
	if lim := m.Rules.DrawLimitPerTurn; lim > 0 && m.DrawsThisTurn >= lim {
		return Event{}, fmt.Errorf("%d of %d draws used: %w", m.DrawsThisTurn, lim, ErrDrawLimit)
	}
	if m.Hands[seat].Full() {
		return Event{}, fmt.Errorf("%d cards held: %w", m.Hands[seat].Len(), ErrHandFull)
	}
	if m.Decks[f].Empty() {
		return Event{}, fmt.Errorf("%s deck: %w", f, ErrDeckExhausted)
	}

	id := m.commitDraw(seat, f)
	ev := Event{Kind: EventCardDrawn, Seat: seat, Card: id, Family: f}
	m.settle(&ev)
	return ev, nil
}

// commitDraw moves the top card of deck f into seat's hand. Number cards are
// revealed as they are drawn; assist cards stay face-down until played.
func (m *Match) commitDraw(seat uint8, f Family) CardID {
	id, _ := m.Decks[f].Draw()
	c := &m.Cards[id]
	c.Loc = LocHand
	c.Owner = int8(seat)
	c.FaceUp = f == FamilyNumber
	m.Hands[seat].Add(id)
	m.DrawsThisTurn++
	return id
}

// ---------------------------------------------------------------------------
// Selecting and placing
// ---------------------------------------------------------------------------

func (m *Match) selectCard(seat uint8, id CardID) (Event, error) {
	c, err := m.heldCard(seat, id)
	if err != nil {
		return Event{}, err
	}
	if c.IsAssist() {
		return m.playAssist(seat, c)
	}
	if m.Selected == id {
		m.Selected = NoCard
		return Event{Kind: EventCardDeselected, Seat: seat, Card: id}, nil
	}
	m.Selected = id
	return Event{Kind: EventCardSelected, Seat: seat, Card: id}, nil
}

func (m *Match) clickTile(seat uint8, tile int) (Event, error) {
	if m.Selected == NoCard {
		return Event{}, ErrNoCardSelected
	}
	if err := m.checkPlace(seat, m.Selected, tile); err != nil {
		return Event{}, err
	}
	return m.commitPlace(seat, m.Selected, tile), nil
}

// heldCard looks up id and checks that seat holds it.
func (m *Match) heldCard(seat uint8, id CardID) (Card, error) {
	c, ok := m.Card(id)
	if !ok {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrUnknownCard)
	}
	if !m.Hands[seat].Contains(id) {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrCardNotInHand)
	}
	return c, nil
}

func (m *Match) checkPlace(seat uint8, id CardID, tile int) error {
	c, err := m.heldCard(seat, id)
	if err != nil {
		return err
	}
	return m.Board.checkPlacement(tile, c)
}

// commitPlace moves a held number card onto tile and ends the turn. The
// placement must already have passed checkPlace.
func (m *Match) commitPlace(seat uint8, id CardID, tile int) Event {
	delta, _ := m.Board.PlaceNumberCard(tile, m.Cards[id])
	m.Hands[seat].Remove(id)
	c := &m.Cards[id]
	c.Loc = LocBoard
	c.Tile = int8(tile)
	c.Owner = -1
	c.FaceUp = true

	ev := Event{Kind: EventNumberPlaced, Seat: seat, Card: id, Tile: tile, Score: delta}
	m.endTurn(&ev)
	return ev
}
