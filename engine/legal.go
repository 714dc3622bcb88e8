package engine

// LegalIntents lists the intents seat can submit that lead toward a committed
// action. It is empty when seat is not the one to act.
func (m *Match) LegalIntents(seat uint8) []Intent {
	if m.Phase != PhaseInProgress || seat != m.CurrentPlayer {
		return nil
	}

	if m.Selection != nil {
		var out []Intent
		if !m.Hands[seat].Full() {
			for _, o := range m.Selection.Options {
				out = append(out, PickReclaim{Option: o.Index})
			}
		}
		return append(out, CancelSelection{})
	}

	var out []Intent
	for f := Family(0); f < numFamilies; f++ {
		if m.canDraw(seat, f, true) {
			out = append(out, ClickDeck{Family: f})
		}
	}
	for _, id := range m.Hands[seat].Cards {
		if m.canPlay(seat, m.Cards[id]) {
			out = append(out, SelectCard{Card: id})
		}
	}
	if m.Selected != NoCard {
		for _, t := range m.Board.FreeTiles() {
			out = append(out, ClickTile{Tile: t})
		}
	}
	return out
}

func (m *Match) canDraw(seat uint8, f Family, countDraws bool) bool {
	if m.Decks[f].Empty() || m.Hands[seat].Full() {
		return false
	}
	lim := m.Rules.DrawLimitPerTurn
	return !countDraws || lim == 0 || m.DrawsThisTurn < lim
}

func (m *Match) canPlay(seat uint8, c Card) bool {
	switch {
	case c.IsNumber():
		return !m.Board.IsComplete()
	case c.Assist == AssistByeBye:
		return m.Board.Occupied() > 0
	case c.Assist == AssistMeowster:
		return !m.Hands[seat].Full() && len(m.Discard.ReclaimOptions(c.ID)) > 0
	}
	return false
}

// hasPlay reports whether seat could draw or play anything. countDraws
// applies the per-turn draw limit already used this turn.
func (m *Match) hasPlay(seat uint8, countDraws bool) bool {
	for f := Family(0); f < numFamilies; f++ {
		if m.canDraw(seat, f, countDraws) {
			return true
		}
	}
	for _, id := range m.Hands[seat].Cards {
		if m.canPlay(seat, m.Cards[id]) {
			return true
		}
	}
	return false
}
