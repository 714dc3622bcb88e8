package engine

// DiscardEntry records one card sent to the discard pile. Entries are never
// removed; a reclaimed assist entry is only marked.
type DiscardEntry struct {
	Card      CardID
	Family    Family
	Value     uint8
	Assist    AssistKind
	Reclaimed bool
}

// DiscardPile is the append-only history of discarded cards.
type DiscardPile struct {
	History []DiscardEntry
}

// ReclaimOption is one assist card a meowster may bring back. Index points
// into DiscardPile.History.
type ReclaimOption struct {
	Index  int
	Card   CardID
	Assist AssistKind
}

// Len returns the number of entries ever discarded.
func (d *DiscardPile) Len() int { return len(d.History) }

// Top returns the most recent entry.
func (d *DiscardPile) Top() (DiscardEntry, bool) {
	if len(d.History) == 0 {
		return DiscardEntry{}, false
	}
	return d.History[len(d.History)-1], true
}

// OfFamily returns the entries of family f in discard order.
func (d *DiscardPile) OfFamily(f Family) []DiscardEntry {
	var out []DiscardEntry
	for _, e := range d.History {
		if e.Family == f {
			out = append(out, e)
		}
	}
	return out
}

// ReclaimOptions lists the assist entries not yet reclaimed, skipping the
// entry for card exclude.
func (d *DiscardPile) ReclaimOptions(exclude CardID) []ReclaimOption {
	var out []ReclaimOption
	for i, e := range d.History {
		if e.Family != FamilyAssist || e.Reclaimed || e.Card == exclude {
			continue
		}
		out = append(out, ReclaimOption{Index: i, Card: e.Card, Assist: e.Assist})
	}
	return out
}

func (d *DiscardPile) add(c Card) {
	d.History = append(d.History, DiscardEntry{
		Card:   c.ID,
		Family: c.Family,
		Value:  c.Value,
		Assist: c.Assist,
	})
}
