package engine

// endTurn hands the turn to the opponent after a placement or assist effect,
// then settles the match.
func (m *Match) endTurn(ev *Event) {
	m.passTurn(ev)
	m.settle(ev)
}

func (m *Match) passTurn(ev *Event) {
	m.TurnNumber++
	m.CurrentPlayer = m.Opponent(m.CurrentPlayer)
	m.DrawsThisTurn = 0
	m.Selected = NoCard
	m.Selection = nil
	ev.TurnEnded = true
	ev.NextPlayer = m.CurrentPlayer
}

// settle ends the match once the board is complete. Otherwise, when the
// player to act can do nothing, the turn passes to the opponent, and if
// neither seat can act the match ends in stalemate.
func (m *Match) settle(ev *Event) {
	if m.Board.IsComplete() {
		m.finish(ev, ReasonBoardComplete)
		return
	}
	if m.hasPlay(m.CurrentPlayer, true) {
		return
	}
	if m.hasPlay(m.Opponent(m.CurrentPlayer), false) {
		m.passTurn(ev)
		return
	}
	m.finish(ev, ReasonStalemate)
}

func (m *Match) finish(ev *Event, reason OverReason) {
	m.ForceGameOver(reason)
	ev.GameOver = true
	ev.Reason = reason
}
