// Package engine implements the No Kitty Cards rules.
//
// A Match is a self-contained value owned by exactly one peer. Intents from
// the local player enter through ApplyIntent and are fully validated; actions
// received from the remote peer enter through the ApplyRemote* methods and
// are only checked for structural fit.
package engine

// NumSeats is the number of players in a match.
const NumSeats = 2

// Selection is an open meowster card selection.
type Selection struct {
	Seat    uint8
	Card    CardID // the meowster being resolved
	Options []ReclaimOption
}

// Match holds the complete state of one match.
type Match struct {
	Rules         HouseRules
	Cards         []Card // registry, indexed by CardID
	Board         Board
	Hands         [NumSeats]Hand
	Decks         [numFamilies]Deck // indexed by Family
	Discard       DiscardPile
	CurrentPlayer uint8
	Phase         Phase
	Reason        OverReason
	TurnNumber    uint16
	DrawsThisTurn uint8
	RNG           uint64

	// Local-only interaction state. Never synchronized.
	Selected  CardID // number card chosen for placement, NoCard when none
	Selection *Selection
}

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

func (m *Match) nextRand() uint64 {
	x := m.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	m.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (m *Match) randN(n uint64) uint64 {
	return m.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewMatch and Start
// ---------------------------------------------------------------------------

// NewMatch builds both decks, shuffles them and lays out the board from seed.
// The match waits for players until Start is called.
func NewMatch(seed uint64, rules HouseRules) Match {
	m := Match{
		Rules:    rules,
		RNG:      seed,
		Selected: NoCard,
	}
	if m.RNG == 0 {
		m.RNG = 1 // xorshift can't start at 0
	}

	m.Cards = make([]Card, 0, rules.deckSize(FamilyNumber)+rules.deckSize(FamilyAssist))
	m.Decks[FamilyNumber].Family = FamilyNumber
	m.Decks[FamilyAssist].Family = FamilyAssist
	for v := uint8(1); v <= 4; v++ {
		for c := uint8(0); c < rules.NumberCopies; c++ {
			m.newCard(FamilyNumber, v, AssistNone)
		}
	}
	for _, k := range AssistKinds {
		for c := uint8(0); c < rules.AssistCopies; c++ {
			m.newCard(FamilyAssist, 0, k)
		}
	}
	m.Decks[FamilyNumber].shuffle(&m)
	m.Decks[FamilyAssist].shuffle(&m)

	m.Board = NewBoard(randomLayout(&m), rules.CupValues)
	for s := range m.Hands {
		m.Hands[s].Owner = uint8(s)
	}
	return m
}

// newCard registers a card face-down on top of its family's deck.
func (m *Match) newCard(f Family, value uint8, kind AssistKind) CardID {
	id := CardID(len(m.Cards))
	m.Cards = append(m.Cards, Card{
		ID: id, Family: f, Value: value, Assist: kind,
		Loc: LocDeck, Tile: -1, Owner: -1,
	})
	m.Decks[f].Remaining = append(m.Decks[f].Remaining, id)
	return id
}

// RandomSeat picks a starting seat from the match RNG.
func (m *Match) RandomSeat() uint8 { return uint8(m.randN(NumSeats)) }

// Start moves a waiting match into play with first to act.
func (m *Match) Start(first uint8) error {
	if m.Phase != PhaseWaitingForPlayers {
		return ErrDesync
	}
	if first >= NumSeats {
		return ErrDesync
	}
	m.Phase = PhaseInProgress
	m.CurrentPlayer = first
	m.TurnNumber = 0
	m.DrawsThisTurn = 0
	return nil
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsOver reports whether the match has ended.
func (m *Match) IsOver() bool { return m.Phase == PhaseGameOver }

// Opponent returns the other seat.
func (m *Match) Opponent(seat uint8) uint8 { return 1 - seat }

// Card returns the card with the given id.
func (m *Match) Card(id CardID) (Card, bool) {
	if int(id) >= len(m.Cards) {
		return Card{}, false
	}
	return m.Cards[id], true
}

// HandOf returns the cards seat holds, in hand order.
func (m *Match) HandOf(seat uint8) []Card {
	h := m.Hands[seat].Cards
	out := make([]Card, len(h))
	for i, id := range h {
		out[i] = m.Cards[id]
	}
	return out
}

// TotalScore returns the shared board score.
func (m *Match) TotalScore() int { return m.Board.TotalScore }

// TurnStateFor returns the turn controller state as seen from seat.
func (m *Match) TurnStateFor(seat uint8) TurnState {
	switch m.Phase {
	case PhaseWaitingForPlayers:
		return TurnWaitingForOpponent
	case PhaseGameOver:
		return TurnGameOver
	}
	if m.CurrentPlayer == seat {
		return TurnMine
	}
	return TurnOpponent
}

// ForceGameOver ends the match for a reason outside the rules, such as a
// departed peer. It is a no-op on a finished match.
func (m *Match) ForceGameOver(reason OverReason) {
	if m.Phase == PhaseGameOver {
		return
	}
	m.Phase = PhaseGameOver
	m.Reason = reason
	m.Selected = NoCard
	m.Selection = nil
}

// Clone returns a deep copy that shares no memory with m.
func (m *Match) Clone() Match {
	c := *m
	c.Cards = append([]Card(nil), m.Cards...)
	for s := range m.Hands {
		c.Hands[s].Cards = append([]CardID(nil), m.Hands[s].Cards...)
	}
	for f := range m.Decks {
		c.Decks[f].Remaining = append([]CardID(nil), m.Decks[f].Remaining...)
	}
	c.Discard.History = append([]DiscardEntry(nil), m.Discard.History...)
	if m.Selection != nil {
		sel := *m.Selection
		sel.Options = append([]ReclaimOption(nil), m.Selection.Options...)
		c.Selection = &sel
	}
	return c
}
