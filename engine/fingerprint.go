package engine

// Fingerprint returns a 64-bit FNV-1a hash of the state both peers share:
// card registry, board, hands, decks, discard history and turn. Local-only
// state (selection, RNG) is left out, so two peers in step always agree.
func (m *Match) Fingerprint() uint64 {
	h := uint64(14695981039346656037) // FNV-1a offset basis
	const prime = uint64(1099511628211)
	mix := func(v uint64) {
		h ^= v
		h *= prime
	}

	for _, c := range m.Cards {
		mix(uint64(c.ID) | uint64(c.Family)<<16 | uint64(c.Value)<<24 | uint64(c.Assist)<<32)
		mix(uint64(c.Loc) | uint64(uint8(c.Tile))<<8 | uint64(uint8(c.Owner))<<16)
	}
	for _, t := range m.Board.Tiles {
		mix(uint64(t.Card) | uint64(t.Cup)<<16)
	}
	for s := range m.Hands {
		for _, id := range m.Hands[s].Cards {
			mix(uint64(id))
		}
		mix(uint64(len(m.Hands[s].Cards)) << 32)
	}
	for f := range m.Decks {
		for _, id := range m.Decks[f].Remaining {
			mix(uint64(id))
		}
		mix(uint64(len(m.Decks[f].Remaining)) << 40)
	}
	for _, e := range m.Discard.History {
		v := uint64(e.Card)
		if e.Reclaimed {
			v |= 1 << 16
		}
		mix(v)
	}
	mix(uint64(m.TurnNumber) << 32)
	mix(uint64(m.CurrentPlayer) << 48)
	mix(uint64(m.Phase)<<56 | uint64(m.Reason)<<60)
	return h
}
