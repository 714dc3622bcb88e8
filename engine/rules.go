package engine

import "fmt"

// CupValues maps each cup color to the number a card must show to score on
// it. Only the four colored cups carry a value; None and White stay 0.
type CupValues [NumCupColors]uint8

// Of returns the scoring number for cup c, or 0 if the cup never scores.
func (v CupValues) Of(c CupColor) uint8 {
	if int(c) >= len(v) {
		return 0
	}
	return v[c]
}

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	NumberCopies     uint8 // copies of each number value 1..4 in the number deck
	AssistCopies     uint8 // copies of each assist kind in the assist deck
	DrawLimitPerTurn uint8 // 0 = unlimited
	CupValues        CupValues
}

// DefaultCupValues is the standard mapping purple=1, red=2, green=3, brown=4.
func DefaultCupValues() CupValues {
	var v CupValues
	for i, c := range ColoredCups {
		v[c] = uint8(i + 1)
	}
	return v
}

// DefaultHouseRules returns the standard No Kitty Cards rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		NumberCopies:     6,
		AssistCopies:     3,
		DrawLimitPerTurn: 0,
		CupValues:        DefaultCupValues(),
	}
}

// Validate checks that the rules can produce a finishable match: enough
// number cards to fill the board and a one-to-one cup mapping onto 1..4.
func (r *HouseRules) Validate() error {
	if int(r.NumberCopies)*4 < NumTiles-1 {
		return fmt.Errorf("rules: %d copies per number cannot fill %d tiles", r.NumberCopies, NumTiles-1)
	}
	var seen [5]bool
	for _, c := range ColoredCups {
		v := r.CupValues.Of(c)
		if v < 1 || v > 4 {
			return fmt.Errorf("rules: cup %s maps to %d, want 1..4", c, v)
		}
		if seen[v] {
			return fmt.Errorf("rules: number %d mapped to more than one cup", v)
		}
		seen[v] = true
	}
	if r.CupValues.Of(CupNone) != 0 || r.CupValues.Of(CupWhite) != 0 {
		return fmt.Errorf("rules: white and center cups must not score")
	}
	return nil
}

func (r *HouseRules) deckSize(f Family) int {
	if f == FamilyNumber {
		return 4 * int(r.NumberCopies)
	}
	return numAssistKinds * int(r.AssistCopies)
}
