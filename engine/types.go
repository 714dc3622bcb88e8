package engine

import "fmt"

// Family is the card family a deck holds: number cards or assist cards.
type Family uint8

const (
	FamilyNumber Family = iota // 0
	FamilyAssist               // 1

	numFamilies = 2
)

func (f Family) String() string {
	switch f {
	case FamilyNumber:
		return "number"
	case FamilyAssist:
		return "assist"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// ParseFamily maps the wire name of a family back to its value.
func ParseFamily(s string) (Family, bool) {
	switch s {
	case "number":
		return FamilyNumber, true
	case "assist":
		return FamilyAssist, true
	}
	return 0, false
}

// AssistKind identifies the one-off effect of an assist card.
type AssistKind uint8

const (
	AssistNone     AssistKind = iota // number cards
	AssistByeBye                     // clears every placed number card
	AssistMeowster                   // reclaims an assist card from discard

	numAssistKinds = 2
)

// AssistKinds lists the playable assist kinds in deck-building order.
var AssistKinds = [numAssistKinds]AssistKind{AssistByeBye, AssistMeowster}

func (k AssistKind) String() string {
	switch k {
	case AssistNone:
		return ""
	case AssistByeBye:
		return "bye-bye"
	case AssistMeowster:
		return "meowster"
	default:
		return fmt.Sprintf("assist(%d)", uint8(k))
	}
}

// ParseAssistKind maps the wire name of an assist card back to its kind.
func ParseAssistKind(s string) (AssistKind, bool) {
	switch s {
	case "bye-bye":
		return AssistByeBye, true
	case "meowster":
		return AssistMeowster, true
	}
	return AssistNone, false
}

// CupColor is the color attribute of a tile.
type CupColor uint8

const (
	CupNone   CupColor = iota // center tile only
	CupWhite                  // never scores
	CupPurple                 // matches 1 by default
	CupRed                    // matches 2 by default
	CupGreen                  // matches 3 by default
	CupBrown                  // matches 4 by default

	NumCupColors = 6
)

// ColoredCups are the four scoring colors, in the order of their default values 1..4.
var ColoredCups = [4]CupColor{CupPurple, CupRed, CupGreen, CupBrown}

func (c CupColor) String() string {
	switch c {
	case CupNone:
		return "none"
	case CupWhite:
		return "white"
	case CupPurple:
		return "purple"
	case CupRed:
		return "red"
	case CupGreen:
		return "green"
	case CupBrown:
		return "brown"
	default:
		return fmt.Sprintf("cup(%d)", uint8(c))
	}
}

// IsColored reports whether the cup is one of the four scoring colors.
func (c CupColor) IsColored() bool { return c >= CupPurple && c <= CupBrown }

// ParseCupColor maps a color name back to its value.
func ParseCupColor(s string) (CupColor, bool) {
	for c := CupNone; c < NumCupColors; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return CupNone, false
}

// Location is the container currently holding a card.
type Location uint8

const (
	LocDeck    Location = iota // 0
	LocHand                    // 1
	LocBoard                   // 2
	LocDiscard                 // 3
)

func (l Location) String() string {
	switch l {
	case LocDeck:
		return "deck"
	case LocHand:
		return "hand"
	case LocBoard:
		return "board"
	case LocDiscard:
		return "discard"
	default:
		return fmt.Sprintf("location(%d)", uint8(l))
	}
}

// ParseLocation maps a location name back to its value.
func ParseLocation(s string) (Location, bool) {
	for l := LocDeck; l <= LocDiscard; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// CardID is the stable identity of a card for the whole match. It is the
// card's index in Match.Cards.
type CardID uint16

// NoCard represents the absence of a card.
const NoCard CardID = 0xFFFF

// Card is one physical card. Family, Value and Assist never change; FaceUp,
// Loc, Tile and Owner follow the card as it moves between containers.
type Card struct {
	ID     CardID
	Family Family
	Value  uint8      // 1..4 for number cards, 0 for assist cards
	Assist AssistKind // AssistNone for number cards
	FaceUp bool
	Loc    Location
	Tile   int8 // board tile index when Loc == LocBoard, else -1
	Owner  int8 // seat holding the card when Loc == LocHand, else -1
}

// IsNumber reports whether c is a number card.
func (c Card) IsNumber() bool { return c.Family == FamilyNumber }

// IsAssist reports whether c is an assist card.
func (c Card) IsAssist() bool { return c.Family == FamilyAssist }

// Label is the face of the card as players see it: "3" or "bye-bye".
func (c Card) Label() string {
	if c.IsAssist() {
		return c.Assist.String()
	}
	return fmt.Sprintf("%d", c.Value)
}

// Phase is the lifecycle stage of a match.
type Phase uint8

const (
	PhaseWaitingForPlayers Phase = iota // 0
	PhaseInProgress                     // 1
	PhaseGameOver                       // 2
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitingForPlayers:
		return "waiting_for_players"
	case PhaseInProgress:
		return "in_progress"
	case PhaseGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// ParsePhase maps a phase name back to its value.
func ParsePhase(s string) (Phase, bool) {
	for p := PhaseWaitingForPlayers; p <= PhaseGameOver; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// OverReason records why a match entered PhaseGameOver.
type OverReason uint8

const (
	ReasonNone          OverReason = iota // 0
	ReasonBoardComplete                   // 1
	ReasonDisconnect                      // 2
	ReasonDesync                          // 3
	ReasonStalemate                       // 4
)

func (r OverReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonBoardComplete:
		return "board_complete"
	case ReasonDisconnect:
		return "disconnect"
	case ReasonDesync:
		return "desync"
	case ReasonStalemate:
		return "stalemate"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// ParseOverReason maps a reason name back to its value.
func ParseOverReason(s string) (OverReason, bool) {
	for r := ReasonNone; r <= ReasonStalemate; r++ {
		if r.String() == s {
			return r, true
		}
	}
	return ReasonNone, false
}

// TurnState is the turn controller's view of the match from one seat.
type TurnState uint8

const (
	TurnWaitingForOpponent TurnState = iota // 0
	TurnMine                                // 1
	TurnOpponent                            // 2
	TurnGameOver                            // 3
)

func (t TurnState) String() string {
	switch t {
	case TurnWaitingForOpponent:
		return "waiting_for_opponent"
	case TurnMine:
		return "my_turn"
	case TurnOpponent:
		return "opponent_turn"
	case TurnGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("turn(%d)", uint8(t))
	}
}
