package engine

// Deck is a face-down pile of one family. The top card is the last element
// of Remaining.
type Deck struct {
	Family    Family
	Remaining []CardID
}

// Len returns the number of cards left.
func (d *Deck) Len() int { return len(d.Remaining) }

// Empty reports whether the deck has been drawn out.
func (d *Deck) Empty() bool { return len(d.Remaining) == 0 }

// Top returns the next card to be drawn without removing it.
func (d *Deck) Top() (CardID, bool) {
	if d.Empty() {
		return NoCard, false
	}
	return d.Remaining[len(d.Remaining)-1], true
}

// Draw removes and returns the top card. It returns false when the deck is
// empty.
func (d *Deck) Draw() (CardID, bool) {
	id, ok := d.Top()
	if !ok {
		return NoCard, false
	}
	d.Remaining = d.Remaining[:len(d.Remaining)-1]
	return id, true
}

// Contains reports whether id is still in the deck.
func (d *Deck) Contains(id CardID) bool {
	for _, c := range d.Remaining {
		if c == id {
			return true
		}
	}
	return false
}

// shuffle performs a Fisher-Yates shuffle driven by the match RNG.
func (d *Deck) shuffle(m *Match) {
	for i := len(d.Remaining) - 1; i > 0; i-- {
		j := m.randN(uint64(i + 1))
		d.Remaining[i], d.Remaining[j] = d.Remaining[j], d.Remaining[i]
	}
}
