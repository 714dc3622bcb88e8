package engine

import "fmt"

// The ApplyRemote* methods apply an action the other peer already committed.
// Legality (turn order, draw limit) is not re-checked: the sender is trusted.
// Only structural fit is verified, and any mismatch returns an error wrapping
// ErrDesync with the match unchanged.

func desyncf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrDesync}, args...)...)
}

func (m *Match) checkRemote(seat uint8) error {
	if m.Phase != PhaseInProgress {
		return desyncf("match is %s", m.Phase)
	}
	if seat >= NumSeats {
		return desyncf("seat %d", seat)
	}
	return nil
}

// takeTurn makes seat the acting player. A remote action is proof that it
// was the sender's turn.
func (m *Match) takeTurn(seat uint8) {
	if m.CurrentPlayer != seat {
		m.CurrentPlayer = seat
		m.DrawsThisTurn = 0
	}
	m.Selected = NoCard
	m.Selection = nil
}

// ApplyRemoteDraw moves card id from the top of deck f into seat's hand.
func (m *Match) ApplyRemoteDraw(seat uint8, f Family, id CardID) (Event, error) {
	if err := m.checkRemote(seat); err != nil {
		return Event{}, err
	}
	if f >= numFamilies {
		return Event{}, desyncf("deck %d", f)
	}
	top, ok := m.Decks[f].Top()
	if !ok || top != id {
		return Event{}, desyncf("card %d is not on top of the %s deck", id, f)
	}
	if m.Hands[seat].Full() {
		return Event{}, desyncf("seat %d hand is full", seat)
	}

	m.takeTurn(seat)
	m.commitDraw(seat, f)
	ev := Event{Kind: EventCardDrawn, Seat: seat, Card: id, Family: f}
	m.settle(&ev)
	return ev, nil
}

// ApplyRemotePlace moves number card id from seat's hand onto tile.
func (m *Match) ApplyRemotePlace(seat uint8, id CardID, tile int) (Event, error) {
	if err := m.checkRemote(seat); err != nil {
		return Event{}, err
	}
	if err := m.checkPlace(seat, id, tile); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}
	m.takeTurn(seat)
	return m.commitPlace(seat, id, tile), nil
}

// ApplyRemoteByeBye resolves bye-bye card id held by seat.
func (m *Match) ApplyRemoteByeBye(seat uint8, id CardID) (Event, error) {
	if err := m.checkRemote(seat); err != nil {
		return Event{}, err
	}
	c, err := m.heldCard(seat, id)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}
	if c.Assist != AssistByeBye {
		return Event{}, desyncf("card %d is %s, not bye-bye", id, c.Label())
	}
	if err := m.checkByeBye(); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}
	m.takeTurn(seat)
	return m.commitByeBye(seat, id), nil
}

// ApplyRemoteMeowster resolves meowster card id held by seat, reclaiming
// discard entry option as the new card newID.
func (m *Match) ApplyRemoteMeowster(seat uint8, id CardID, option int, newID CardID) (Event, error) {
	if err := m.checkRemote(seat); err != nil {
		return Event{}, err
	}
	if err := m.checkReclaim(seat, id, option); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}
	if want := CardID(len(m.Cards)); newID != want {
		return Event{}, desyncf("new card id %d, want %d", newID, want)
	}
	m.takeTurn(seat)
	return m.commitMeowster(seat, id, option, newID), nil
}

// ApplyTurnEnd records that next is now the player to act. It is idempotent
// and ignored once the match is over.
func (m *Match) ApplyTurnEnd(next uint8) error {
	switch {
	case m.Phase == PhaseGameOver:
		return nil
	case m.Phase != PhaseInProgress:
		return desyncf("turn end while %s", m.Phase)
	case next >= NumSeats:
		return desyncf("seat %d", next)
	}
	if m.CurrentPlayer != next {
		m.takeTurn(next)
	}
	return nil
}
