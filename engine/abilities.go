package engine

import "fmt"

// playAssist activates a held assist card. Every precondition is checked
// before anything moves.
func (m *Match) playAssist(seat uint8, c Card) (Event, error) {
	switch c.Assist {
	case AssistByeBye:
		if err := m.checkByeBye(); err != nil {
			return Event{}, err
		}
		return m.commitByeBye(seat, c.ID), nil
	case AssistMeowster:
		return m.openMeowster(seat, c.ID)
	default:
		return Event{}, fmt.Errorf("card %d has no assist effect: %w", c.ID, ErrWrongCardFamily)
	}
}

// ---------------------------------------------------------------------------
// bye-bye
// ---------------------------------------------------------------------------

func (m *Match) checkByeBye() error {
	if m.Board.Occupied() == 0 {
		return ErrNothingToClear
	}
	return nil
}

// commitByeBye clears the board into the discard pile in tile order, then
// discards the bye-bye card itself and ends the turn.
func (m *Match) commitByeBye(seat uint8, id CardID) Event {
	cleared := m.Board.ClearNumberCards()
	for _, cid := range cleared {
		c := &m.Cards[cid]
		c.Loc = LocDiscard
		c.Tile = -1
		m.Discard.add(*c)
	}
	m.discardFromHand(seat, id)

	ev := Event{Kind: EventByeBye, Seat: seat, Card: id, Cleared: cleared}
	m.endTurn(&ev)
	return ev
}

// discardFromHand moves a held card face-up onto the discard pile.
func (m *Match) discardFromHand(seat uint8, id CardID) {
	m.Hands[seat].Remove(id)
	c := &m.Cards[id]
	c.Loc = LocDiscard
	c.Owner = -1
	c.FaceUp = true
	m.Discard.add(*c)
}

// ---------------------------------------------------------------------------
// meowster
// ---------------------------------------------------------------------------

func (m *Match) openMeowster(seat uint8, id CardID) (Event, error) {
	opts := m.Discard.ReclaimOptions(id)
	if len(opts) == 0 {
		return Event{}, ErrNoReclaimableCards
	}
	m.Selected = NoCard
	m.Selection = &Selection{Seat: seat, Card: id, Options: opts}
	return Event{Kind: EventSelectionOpened, Seat: seat, Card: id, Options: opts}, nil
}

func (m *Match) pickReclaim(seat uint8, option int) (Event, error) {
	sel := m.Selection
	if err := m.checkReclaim(seat, sel.Card, option); err != nil {
		return Event{}, err
	}
	found := false
	for _, o := range sel.Options {
		if o.Index == option {
			found = true
			break
		}
	}
	if !found {
		return Event{}, fmt.Errorf("option %d: %w", option, ErrInvalidOption)
	}
	return m.commitMeowster(seat, sel.Card, option, CardID(len(m.Cards))), nil
}

// checkReclaim verifies that the meowster card can bring back discard entry
// option into seat's hand.
func (m *Match) checkReclaim(seat uint8, meowster CardID, option int) error {
	c, err := m.heldCard(seat, meowster)
	if err != nil {
		return err
	}
	if c.Assist != AssistMeowster {
		return fmt.Errorf("card %d is %s: %w", c.ID, c.Label(), ErrWrongCardFamily)
	}
	if option < 0 || option >= m.Discard.Len() {
		return fmt.Errorf("option %d: %w", option, ErrInvalidOption)
	}
	e := m.Discard.History[option]
	if e.Family != FamilyAssist || e.Reclaimed {
		return fmt.Errorf("option %d: %w", option, ErrInvalidOption)
	}
	if m.Hands[seat].Full() {
		return ErrHandFull
	}
	return nil
}

// commitMeowster registers newID as a fresh copy of the reclaimed assist,
// hands it to seat, marks the entry reclaimed, discards the meowster and
// ends the turn.
func (m *Match) commitMeowster(seat uint8, meowster CardID, option int, newID CardID) Event {
	e := &m.Discard.History[option]
	e.Reclaimed = true

	m.Cards = append(m.Cards, Card{
		ID:     newID,
		Family: FamilyAssist,
		Assist: e.Assist,
		Loc:    LocHand,
		Tile:   -1,
		Owner:  int8(seat),
	})
	m.Hands[seat].Add(newID)
	m.Cards[newID].FaceUp = true

	m.discardFromHand(seat, meowster)
	m.Selection = nil

	ev := Event{Kind: EventMeowster, Seat: seat, Card: meowster, Option: option, NewCard: newID}
	m.endTurn(&ev)
	return ev
}

func (m *Match) cancelSelection(seat uint8) Event {
	card := m.Selection.Card
	m.Selection = nil
	return Event{Kind: EventSelectionCancelled, Seat: seat, Card: card}
}
