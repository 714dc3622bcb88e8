package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sakan811/no-kitty-cards-game/engine"
)

// boardRows lays the tiles out as a 3x3 grid with the center tile in the
// middle.
var boardRows = [3][3]int{
	{0, 1, 2},
	{3, engine.CenterTile, 4},
	{5, 6, 7},
}

func tileLabel(m *engine.Match, t engine.Tile) string {
	if t.Index == engine.CenterTile {
		return "   ---   "
	}
	cup := t.Cup.String()
	if !t.Occupied() {
		return fmt.Sprintf("%d:%-7s", t.Index, cup)
	}
	return fmt.Sprintf("%d:%-5s=%d", t.Index, cup, m.Cards[t.Card].Value)
}

func renderBoard(w io.Writer, m *engine.Match) {
	for _, row := range boardRows {
		cells := make([]string, len(row))
		for i, idx := range row {
			cells[i] = tileLabel(m, m.Board.Tiles[idx])
		}
		fmt.Fprintf(w, "  [%s]\n", strings.Join(cells, "] ["))
	}
	fmt.Fprintf(w, "  score %d | number deck %d | assist deck %d | discard %d\n",
		m.TotalScore(), m.Decks[engine.FamilyNumber].Len(), m.Decks[engine.FamilyAssist].Len(), m.Discard.Len())
}

func renderHand(w io.Writer, m *engine.Match, seat uint8) {
	cards := m.HandOf(seat)
	if len(cards) == 0 {
		fmt.Fprintln(w, "  hand is empty")
		return
	}
	labels := make([]string, len(cards))
	for i, c := range cards {
		mark := ""
		if c.ID == m.Selected {
			mark = "*"
		}
		labels[i] = fmt.Sprintf("#%d %s%s", c.ID, c.Label(), mark)
	}
	fmt.Fprintf(w, "  hand: %s\n", strings.Join(labels, ", "))
	fmt.Fprintf(w, "  opponent holds %d cards\n", m.Hands[m.Opponent(seat)].Len())
}

func describeIntent(in engine.Intent) string {
	switch in := in.(type) {
	case engine.ClickDeck:
		return "draw " + in.Family.String()
	case engine.SelectCard:
		return fmt.Sprintf("select %d", in.Card)
	case engine.ClickTile:
		return fmt.Sprintf("tile %d", in.Tile)
	case engine.PickReclaim:
		return fmt.Sprintf("pick %d", in.Option)
	case engine.CancelSelection:
		return "cancel"
	}
	return fmt.Sprintf("%T", in)
}

func renderHints(w io.Writer, m *engine.Match, seat uint8) {
	legal := m.LegalIntents(seat)
	if len(legal) == 0 {
		fmt.Fprintln(w, "  nothing to do right now")
		return
	}
	hints := make([]string, len(legal))
	for i, in := range legal {
		hints[i] = describeIntent(in)
	}
	fmt.Fprintf(w, "  you can: %s\n", strings.Join(hints, ", "))
}

// termUI prints peer outputs. Writes are serialized because the socket and
// stdin loops both print.
type termUI struct {
	mu sync.Mutex
	w  io.Writer
}

func (u *termUI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.w, format, args...)
}

func (u *termUI) ScoreChanged(total int) { u.printf("score: %d\n", total) }

func (u *termUI) TurnChanged(isLocal bool) {
	if isLocal {
		u.printf("your turn\n")
		return
	}
	u.printf("opponent's turn\n")
}

func (u *termUI) GameOver(finalScore int, reason engine.OverReason) {
	u.printf("game over (%s), final score %d\n", reason, finalScore)
}

func (u *termUI) Warning(message string) { u.printf("! %s\n", message) }

func (u *termUI) SelectionOpened(options []engine.ReclaimOption) {
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = fmt.Sprintf("%d=%s", o.Index, o.Assist)
	}
	u.printf("meowster: pick one of %s, or cancel\n", strings.Join(parts, ", "))
}

func (u *termUI) SelectionClosed() {}

// show renders a view of the match under the output lock.
func (u *termUI) show(view string, m *engine.Match, seat uint8) {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch view {
	case "hand":
		renderHand(u.w, m, seat)
	case "board":
		renderBoard(u.w, m)
	case "hint":
		renderHints(u.w, m, seat)
	default:
		fmt.Fprintln(u.w, helpText)
	}
}
