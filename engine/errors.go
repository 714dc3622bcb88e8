package engine

import "errors"

// Rule violations. Each is recoverable: the intent is rejected, state is
// untouched and the player gets a warning.
var (
	ErrInvalidTile        = errors.New("invalid tile")
	ErrTileOccupied       = errors.New("tile already has a number card")
	ErrWrongCardFamily    = errors.New("wrong card family")
	ErrHandFull           = errors.New("hand is full")
	ErrNothingToClear     = errors.New("no number cards on the board")
	ErrNoReclaimableCards = errors.New("no assist cards in the discard pile")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrDeckExhausted      = errors.New("deck is empty")
	ErrSelectionActive    = errors.New("card selection in progress")
	ErrNoSelection        = errors.New("no card selection in progress")
	ErrInvalidOption      = errors.New("not a reclaimable option")
	ErrNoCardSelected     = errors.New("no number card selected")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrUnknownCard        = errors.New("unknown card")
	ErrDrawLimit          = errors.New("draw limit reached this turn")
	ErrGameOver           = errors.New("match is over")
	ErrNotInProgress      = errors.New("match has not started")
)

// ErrDesync reports that a remote action does not fit local state. It is not
// a rule violation: the session recovers it with a full snapshot.
var ErrDesync = errors.New("desync")

// ErrCorruptState reports a match state that breaks a structural invariant.
var ErrCorruptState = errors.New("corrupt match state")

var ruleViolations = []error{
	ErrInvalidTile, ErrTileOccupied, ErrWrongCardFamily, ErrHandFull,
	ErrNothingToClear, ErrNoReclaimableCards, ErrNotYourTurn, ErrDeckExhausted,
	ErrSelectionActive, ErrNoSelection, ErrInvalidOption, ErrNoCardSelected,
	ErrCardNotInHand, ErrUnknownCard, ErrDrawLimit, ErrGameOver, ErrNotInProgress,
}

// IsRuleViolation reports whether err rejects an intent without touching state.
func IsRuleViolation(err error) bool {
	if err == nil || errors.Is(err, ErrDesync) {
		return false
	}
	for _, v := range ruleViolations {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// IsNoOp reports whether err is an assist card played with nothing to act on.
func IsNoOp(err error) bool {
	return errors.Is(err, ErrNothingToClear) || errors.Is(err, ErrNoReclaimableCards)
}
