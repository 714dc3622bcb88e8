package game

import (
	"errors"

	"github.com/sakan811/no-kitty-cards-game/engine"
)

var warnings = []struct {
	err  error
	text string
}{
	{engine.ErrNotYourTurn, "It's not your turn!"},
	{engine.ErrHandFull, "Hand is full!"},
	{engine.ErrDeckExhausted, "That deck is empty."},
	{engine.ErrDrawLimit, "No more draws this turn."},
	{engine.ErrTileOccupied, "That tile already has a card."},
	{engine.ErrInvalidTile, "Cards can't go on that tile."},
	{engine.ErrWrongCardFamily, "Only number cards go on the board."},
	{engine.ErrNoCardSelected, "Select a number card first."},
	{engine.ErrNothingToClear, "There are no cards on the board to clear."},
	{engine.ErrNoReclaimableCards, "There are no assist cards in the discard pile."},
	{engine.ErrSelectionActive, "Pick a card to reclaim or cancel first."},
	{engine.ErrNoSelection, "There is nothing to pick from."},
	{engine.ErrInvalidOption, "That card can't be reclaimed."},
	{engine.ErrCardNotInHand, "That card isn't in your hand."},
	{engine.ErrUnknownCard, "That card isn't in your hand."},
	{engine.ErrGameOver, "The match is over."},
	{engine.ErrNotInProgress, "The match hasn't started yet."},
}

// warningText turns a rejected intent into the message shown to the player.
func warningText(err error) string {
	for _, w := range warnings {
		if errors.Is(err, w.err) {
			return w.text
		}
	}
	return err.Error()
}
