package engine

// MaxHandSize caps how many cards a hand may hold.
const MaxHandSize = 10

// Hand is the ordered set of cards one seat holds.
type Hand struct {
	Owner uint8
	Cards []CardID
}

// Len returns the number of cards held.
func (h *Hand) Len() int { return len(h.Cards) }

// Full reports whether the hand is at MaxHandSize.
func (h *Hand) Full() bool { return len(h.Cards) >= MaxHandSize }

// Add appends id and returns false, leaving the hand unchanged, when full.
func (h *Hand) Add(id CardID) bool {
	if h.Full() {
		return false
	}
	h.Cards = append(h.Cards, id)
	return true
}

// Remove drops id from the hand, keeping the order of the remaining cards.
// Removing an absent card is a no-op.
func (h *Hand) Remove(id CardID) {
	i := h.IndexOf(id)
	if i < 0 {
		return
	}
	h.Cards = append(h.Cards[:i], h.Cards[i+1:]...)
}

// Contains reports whether id is held.
func (h *Hand) Contains(id CardID) bool { return h.IndexOf(id) >= 0 }

// IndexOf returns the slot holding id, or -1.
func (h *Hand) IndexOf(id CardID) int {
	for i, c := range h.Cards {
		if c == id {
			return i
		}
	}
	return -1
}

// NextFreeSlot returns the slot the next added card will occupy, or -1 when
// the hand is full.
func (h *Hand) NextFreeSlot() int {
	if h.Full() {
		return -1
	}
	return len(h.Cards)
}
