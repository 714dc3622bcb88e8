package engine

// Intent is one player interaction. The concrete types are SelectCard,
// ClickTile, ClickDeck, PickReclaim and CancelSelection.
type Intent interface {
	isIntent()
}

// SelectCard toggles a number card as the placement choice, or plays an
// assist card.
type SelectCard struct{ Card CardID }

// ClickTile places the selected number card on Tile.
type ClickTile struct{ Tile int }

// ClickDeck draws the top card of the deck of Family.
type ClickDeck struct{ Family Family }

// PickReclaim resolves an open meowster selection. Option is the discard
// history index of the chosen entry.
type PickReclaim struct{ Option int }

// CancelSelection closes an open meowster selection without effect.
type CancelSelection struct{}

func (SelectCard) isIntent()      {}
func (ClickTile) isIntent()       {}
func (ClickDeck) isIntent()       {}
func (PickReclaim) isIntent()     {}
func (CancelSelection) isIntent() {}

// EventKind tells what a committed intent did.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventCardSelected
	EventCardDeselected
	EventCardDrawn
	EventNumberPlaced
	EventByeBye
	EventSelectionOpened
	EventSelectionCancelled
	EventMeowster
)

func (k EventKind) String() string {
	switch k {
	case EventCardSelected:
		return "card_selected"
	case EventCardDeselected:
		return "card_deselected"
	case EventCardDrawn:
		return "card_drawn"
	case EventNumberPlaced:
		return "number_placed"
	case EventByeBye:
		return "bye_bye"
	case EventSelectionOpened:
		return "selection_opened"
	case EventSelectionCancelled:
		return "selection_cancelled"
	case EventMeowster:
		return "meowster"
	default:
		return "none"
	}
}

// Event is the outcome of one accepted intent. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind    EventKind
	Seat    uint8
	Card    CardID // card drawn, selected or played
	Family  Family // EventCardDrawn
	Tile    int    // EventNumberPlaced
	Score   int    // EventNumberPlaced: points earned by the placement
	Cleared []CardID
	Option  int    // EventMeowster: discard history index reclaimed
	NewCard CardID // EventMeowster
	Options []ReclaimOption

	TurnEnded  bool
	NextPlayer uint8
	GameOver   bool
	Reason     OverReason
}

// Synced reports whether the event changes shared state and must be sent to
// the other peer.
func (e Event) Synced() bool {
	switch e.Kind {
	case EventCardDrawn, EventNumberPlaced, EventByeBye, EventMeowster:
		return true
	}
	return false
}
