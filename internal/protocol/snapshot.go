package protocol

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/engine"
)

// CardView is one registry entry of a snapshot.
type CardView struct {
	ID       engine.CardID `json:"id"`
	Type     string        `json:"type"`
	Value    Face          `json:"value"`
	FaceUp   bool          `json:"faceUp"`
	Location string        `json:"location"`
	Tile     *int          `json:"tile,omitempty"`
	Owner    *int          `json:"owner,omitempty"`
}

// TileView is one board tile.
type TileView struct {
	Index  int            `json:"index"`
	Cup    string         `json:"cupColor"`
	CardID *engine.CardID `json:"cardId,omitempty"`
	Score  int            `json:"score"`
}

// BoardView holds the tiles and the running score.
type BoardView struct {
	Tiles      []TileView `json:"tiles"`
	TotalScore int        `json:"totalScore"`
}

// DiscardView is one discard history entry.
type DiscardView struct {
	CardID    engine.CardID `json:"cardId"`
	Type      string        `json:"type"`
	Value     Face          `json:"value"`
	Reclaimed bool          `json:"reclaimed,omitempty"`
}

// DecksView lists the cards left in each deck, bottom first.
type DecksView struct {
	Number []engine.CardID `json:"number"`
	Assist []engine.CardID `json:"assist"`
}

// RulesView carries the house rules the match was built with.
type RulesView struct {
	NumberCopies     uint8            `json:"numberCopies"`
	AssistCopies     uint8            `json:"assistCopies"`
	DrawLimitPerTurn uint8            `json:"drawLimitPerTurn"`
	CupValues        map[string]uint8 `json:"cupValues"`
}

// Snapshot is the complete synchronized state of a match. Local interaction
// state (the selected card, an open meowster selection) is never included.
type Snapshot struct {
	MatchID       uuid.UUID                        `json:"matchId"`
	Players       [engine.NumSeats]uuid.UUID       `json:"players"`
	Phase         string                           `json:"phase"`
	Reason        string                           `json:"reason,omitempty"`
	CurrentPlayer uuid.UUID                        `json:"currentPlayer"`
	TurnNumber    uint16                           `json:"turnNumber"`
	DrawsThisTurn uint8                            `json:"drawsThisTurn"`
	RNG           uint64                           `json:"rng,string"`
	Rules         RulesView                        `json:"rules"`
	Cards         []CardView                       `json:"cards"`
	Board         BoardView                        `json:"board"`
	Hands         [engine.NumSeats][]engine.CardID `json:"hands"`
	Decks         DecksView                        `json:"decks"`
	Discard       []DiscardView                    `json:"discard"`
}

func faceOf(c engine.Card) Face {
	return Face{Number: c.Value, Assist: c.Assist}
}

func intPtr(v int) *int { return &v }

// NewSnapshot captures m. players maps seats to player IDs.
func NewSnapshot(matchID uuid.UUID, players [engine.NumSeats]uuid.UUID, m *engine.Match) Snapshot {
	s := Snapshot{
		MatchID:       matchID,
		Players:       players,
		Phase:         m.Phase.String(),
		Reason:        m.Reason.String(),
		CurrentPlayer: players[m.CurrentPlayer],
		TurnNumber:    m.TurnNumber,
		DrawsThisTurn: m.DrawsThisTurn,
		RNG:           m.RNG,
		Rules: RulesView{
			NumberCopies:     m.Rules.NumberCopies,
			AssistCopies:     m.Rules.AssistCopies,
			DrawLimitPerTurn: m.Rules.DrawLimitPerTurn,
			CupValues:        make(map[string]uint8, len(engine.ColoredCups)),
		},
		Cards: make([]CardView, len(m.Cards)),
		Board: BoardView{TotalScore: m.Board.TotalScore},
		Decks: DecksView{
			Number: append([]engine.CardID(nil), m.Decks[engine.FamilyNumber].Remaining...),
			Assist: append([]engine.CardID(nil), m.Decks[engine.FamilyAssist].Remaining...),
		},
	}
	for _, c := range engine.ColoredCups {
		s.Rules.CupValues[c.String()] = m.Rules.CupValues.Of(c)
	}
	for i, c := range m.Cards {
		v := CardView{
			ID:       c.ID,
			Type:     c.Family.String(),
			Value:    faceOf(c),
			FaceUp:   c.FaceUp,
			Location: c.Loc.String(),
		}
		if c.Tile >= 0 {
			v.Tile = intPtr(int(c.Tile))
		}
		if c.Owner >= 0 {
			v.Owner = intPtr(int(c.Owner))
		}
		s.Cards[i] = v
	}
	for _, t := range m.Board.Tiles {
		v := TileView{Index: int(t.Index), Cup: t.Cup.String(), Score: t.Score}
		if t.Occupied() {
			id := t.Card
			v.CardID = &id
		}
		s.Board.Tiles = append(s.Board.Tiles, v)
	}
	for seat := range m.Hands {
		s.Hands[seat] = append([]engine.CardID(nil), m.Hands[seat].Cards...)
	}
	for _, e := range m.Discard.History {
		s.Discard = append(s.Discard, DiscardView{
			CardID:    e.Card,
			Type:      e.Family.String(),
			Value:     Face{Number: e.Value, Assist: e.Assist},
			Reclaimed: e.Reclaimed,
		})
	}
	return s
}

// SeatOf returns the seat of player, or false if the player is not in the match.
func (s *Snapshot) SeatOf(player uuid.UUID) (uint8, bool) {
	for i, p := range s.Players {
		if p == player {
			return uint8(i), true
		}
	}
	return 0, false
}

// Restore rebuilds the match a snapshot describes and validates it.
func (s *Snapshot) Restore() (engine.Match, error) {
	var m engine.Match
	var ok bool

	if m.Phase, ok = engine.ParsePhase(s.Phase); !ok {
		return m, fmt.Errorf("snapshot: phase %q", s.Phase)
	}
	if m.Reason, ok = engine.ParseOverReason(s.Reason); !ok {
		return m, fmt.Errorf("snapshot: reason %q", s.Reason)
	}
	if m.CurrentPlayer, ok = s.SeatOf(s.CurrentPlayer); !ok {
		return m, fmt.Errorf("snapshot: current player %s is not seated", s.CurrentPlayer)
	}
	m.TurnNumber = s.TurnNumber
	m.DrawsThisTurn = s.DrawsThisTurn
	m.RNG = s.RNG
	m.Selected = engine.NoCard

	m.Rules = engine.HouseRules{
		NumberCopies:     s.Rules.NumberCopies,
		AssistCopies:     s.Rules.AssistCopies,
		DrawLimitPerTurn: s.Rules.DrawLimitPerTurn,
	}
	for name, v := range s.Rules.CupValues {
		cup, ok := engine.ParseCupColor(name)
		if !ok || !cup.IsColored() {
			return m, fmt.Errorf("snapshot: cup %q", name)
		}
		m.Rules.CupValues[cup] = v
	}

	m.Cards = make([]engine.Card, len(s.Cards))
	for i, v := range s.Cards {
		c, err := v.card()
		if err != nil {
			return m, fmt.Errorf("snapshot: card %d: %w", i, err)
		}
		m.Cards[i] = c
	}

	if len(s.Board.Tiles) != engine.NumTiles {
		return m, fmt.Errorf("snapshot: %d tiles", len(s.Board.Tiles))
	}
	m.Board.Values = m.Rules.CupValues
	m.Board.TotalScore = s.Board.TotalScore
	for i, v := range s.Board.Tiles {
		cup, ok := engine.ParseCupColor(v.Cup)
		if !ok {
			return m, fmt.Errorf("snapshot: tile %d cup %q", i, v.Cup)
		}
		t := engine.Tile{Index: uint8(v.Index), Cup: cup, Card: engine.NoCard, Score: v.Score}
		if v.CardID != nil {
			t.Card = *v.CardID
		}
		m.Board.Tiles[i] = t
	}

	for seat := range m.Hands {
		m.Hands[seat] = engine.Hand{Owner: uint8(seat), Cards: append([]engine.CardID(nil), s.Hands[seat]...)}
	}
	m.Decks[engine.FamilyNumber] = engine.Deck{Family: engine.FamilyNumber, Remaining: append([]engine.CardID(nil), s.Decks.Number...)}
	m.Decks[engine.FamilyAssist] = engine.Deck{Family: engine.FamilyAssist, Remaining: append([]engine.CardID(nil), s.Decks.Assist...)}

	for i, v := range s.Discard {
		f, ok := engine.ParseFamily(v.Type)
		if !ok {
			return m, fmt.Errorf("snapshot: discard %d type %q", i, v.Type)
		}
		m.Discard.History = append(m.Discard.History, engine.DiscardEntry{
			Card:      v.CardID,
			Family:    f,
			Value:     v.Value.Number,
			Assist:    v.Value.Assist,
			Reclaimed: v.Reclaimed,
		})
	}

	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("snapshot: %w", err)
	}
	return m, nil
}

func (v CardView) card() (engine.Card, error) {
	f, ok := engine.ParseFamily(v.Type)
	if !ok {
		return engine.Card{}, fmt.Errorf("type %q", v.Type)
	}
	loc, ok := engine.ParseLocation(v.Location)
	if !ok {
		return engine.Card{}, fmt.Errorf("location %q", v.Location)
	}
	c := engine.Card{
		ID:     v.ID,
		Family: f,
		Value:  v.Value.Number,
		Assist: v.Value.Assist,
		FaceUp: v.FaceUp,
		Loc:    loc,
		Tile:   -1,
		Owner:  -1,
	}
	if v.Tile != nil {
		c.Tile = int8(*v.Tile)
	}
	if v.Owner != nil {
		c.Owner = int8(*v.Owner)
	}
	return c, nil
}
