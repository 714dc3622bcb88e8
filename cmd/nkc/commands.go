package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sakan811/no-kitty-cards-game/engine"
)

var errUsage = errors.New("unknown command, try 'help'")

// command is one parsed input line. Exactly one of intent or view is set,
// unless quit is.
type command struct {
	intent engine.Intent
	view   string // hand, board, hint or help
	quit   bool
}

const helpText = `commands:
  draw number|assist   draw the top card of a deck (d n, d a)
  select <card>        select a number card or play an assist card (s)
  tile <0-7>           place the selected number card (t)
  pick <option>        reclaim a discard entry during meowster (p)
  cancel               close the meowster selection (c)
  hand | board | hint  show your hand, the board or your legal moves
  quit                 leave the match`

func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errUsage
	}
	arg := func() (int, error) {
		if len(fields) != 2 {
			return 0, fmt.Errorf("%s takes one number", fields[0])
		}
		return strconv.Atoi(fields[1])
	}

	switch fields[0] {
	case "draw", "d":
		if len(fields) != 2 {
			return command{}, errors.New("draw number or draw assist")
		}
		switch fields[1] {
		case "number", "n":
			return command{intent: engine.ClickDeck{Family: engine.FamilyNumber}}, nil
		case "assist", "a":
			return command{intent: engine.ClickDeck{Family: engine.FamilyAssist}}, nil
		}
		return command{}, fmt.Errorf("no %q deck", fields[1])
	case "select", "s":
		n, err := arg()
		if err != nil || n < 0 || n >= int(engine.NoCard) {
			return command{}, errors.New("select takes a card id")
		}
		return command{intent: engine.SelectCard{Card: engine.CardID(n)}}, nil
	case "tile", "t":
		n, err := arg()
		if err != nil {
			return command{}, errors.New("tile takes a tile index")
		}
		return command{intent: engine.ClickTile{Tile: n}}, nil
	case "pick", "p":
		n, err := arg()
		if err != nil {
			return command{}, errors.New("pick takes an option number")
		}
		return command{intent: engine.PickReclaim{Option: n}}, nil
	case "cancel", "c":
		return command{intent: engine.CancelSelection{}}, nil
	case "hand", "board", "hint", "help":
		return command{view: fields[0]}, nil
	case "quit", "q", "exit":
		return command{quit: true}, nil
	}
	return command{}, errUsage
}
