package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/engine"
)

// ErrBadAction reports a gameAction whose payload cannot be interpreted.
var ErrBadAction = errors.New("malformed game action")

// Face is a card face on the wire: a JSON number 1..4 for number cards or
// the assist name for assist cards.
type Face struct {
	Number uint8
	Assist engine.AssistKind
}

func (f Face) MarshalJSON() ([]byte, error) {
	if f.Assist != engine.AssistNone {
		return json.Marshal(f.Assist.String())
	}
	return json.Marshal(f.Number)
}

func (f *Face) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		kind, ok := engine.ParseAssistKind(name)
		if !ok {
			return fmt.Errorf("unknown assist %q", name)
		}
		*f = Face{Assist: kind}
		return nil
	}
	var n uint8
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("card face: %w", err)
	}
	*f = Face{Number: n}
	return nil
}

// CardPlayedData is the payload of a cardPlayed action.
type CardPlayedData struct {
	Type      string         `json:"type"`
	Value     Face           `json:"value"`
	CardID    engine.CardID  `json:"cardId"`
	TileIndex *int           `json:"tileIndex,omitempty"`
	Option    *int           `json:"option,omitempty"`
	NewCardID *engine.CardID `json:"newCardId,omitempty"`
}

// CardDrawnData is the payload of a cardDrawn action.
type CardDrawnData struct {
	Family string        `json:"family"`
	CardID engine.CardID `json:"cardId"`
}

// Action is one committed action as the receiving peer applies it. The
// concrete types are PlaceNumber, PlayByeBye, PlayMeowster and DrawCard.
type Action interface {
	isAction()
}

type PlaceNumber struct {
	Card  engine.CardID
	Value uint8
	Tile  int
}

type PlayByeBye struct {
	Card engine.CardID
}

type PlayMeowster struct {
	Card    engine.CardID
	Option  int
	NewCard engine.CardID
}

type DrawCard struct {
	Family engine.Family
	Card   engine.CardID
}

func (PlaceNumber) isAction()  {}
func (PlayByeBye) isAction()   {}
func (PlayMeowster) isAction() {}
func (DrawCard) isAction()     {}

// ActionFromEvent converts a committed local event into the action the other
// peer must apply. It returns false for events that stay local.
func ActionFromEvent(m *engine.Match, ev engine.Event) (Action, bool) {
	switch ev.Kind {
	case engine.EventCardDrawn:
		return DrawCard{Family: ev.Family, Card: ev.Card}, true
	case engine.EventNumberPlaced:
		c, _ := m.Card(ev.Card)
		return PlaceNumber{Card: ev.Card, Value: c.Value, Tile: ev.Tile}, true
	case engine.EventByeBye:
		return PlayByeBye{Card: ev.Card}, true
	case engine.EventMeowster:
		return PlayMeowster{Card: ev.Card, Option: ev.Option, NewCard: ev.NewCard}, true
	}
	return nil, false
}

// GameAction wraps an action in a gameAction message.
func GameAction(from uuid.UUID, a Action) (Message, error) {
	var (
		name ActionName
		data any
	)
	switch a := a.(type) {
	case DrawCard:
		name = ActionCardDrawn
		data = CardDrawnData{Family: a.Family.String(), CardID: a.Card}
	case PlaceNumber:
		name = ActionCardPlayed
		tile := a.Tile
		data = CardPlayedData{Type: "number", Value: Face{Number: a.Value}, CardID: a.Card, TileIndex: &tile}
	case PlayByeBye:
		name = ActionCardPlayed
		data = CardPlayedData{Type: "assist", Value: Face{Assist: engine.AssistByeBye}, CardID: a.Card}
	case PlayMeowster:
		name = ActionCardPlayed
		opt, id := a.Option, a.NewCard
		data = CardPlayedData{
			Type: "assist", Value: Face{Assist: engine.AssistMeowster},
			CardID: a.Card, Option: &opt, NewCardID: &id,
		}
	default:
		return Message{}, fmt.Errorf("%w: %T", ErrBadAction, a)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: MsgGameAction, From: from, Action: name, Data: raw}, nil
}

// DecodeAction interprets the payload of a gameAction message.
func (m Message) DecodeAction() (Action, error) {
	switch m.Action {
	case ActionCardDrawn:
		var d CardDrawnData
		if err := json.Unmarshal(m.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadAction, err)
		}
		f, ok := engine.ParseFamily(d.Family)
		if !ok {
			return nil, fmt.Errorf("%w: family %q", ErrBadAction, d.Family)
		}
		return DrawCard{Family: f, Card: d.CardID}, nil
	case ActionCardPlayed:
		var d CardPlayedData
		if err := json.Unmarshal(m.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadAction, err)
		}
		return d.action()
	}
	return nil, fmt.Errorf("%w: action %q", ErrBadAction, m.Action)
}

func (d CardPlayedData) action() (Action, error) {
	switch {
	case d.Type == "number":
		if d.TileIndex == nil {
			return nil, fmt.Errorf("%w: number card without tileIndex", ErrBadAction)
		}
		return PlaceNumber{Card: d.CardID, Value: d.Value.Number, Tile: *d.TileIndex}, nil
	case d.Type == "assist" && d.Value.Assist == engine.AssistByeBye:
		return PlayByeBye{Card: d.CardID}, nil
	case d.Type == "assist" && d.Value.Assist == engine.AssistMeowster:
		if d.Option == nil || d.NewCardID == nil {
			return nil, fmt.Errorf("%w: meowster without option or newCardId", ErrBadAction)
		}
		return PlayMeowster{Card: d.CardID, Option: *d.Option, NewCard: *d.NewCardID}, nil
	}
	return nil, fmt.Errorf("%w: card type %q", ErrBadAction, d.Type)
}
