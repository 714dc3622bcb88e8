package engine

import "fmt"

const (
	NumTiles   = 9
	CenterTile = 8 // decorative, never takes a card
)

// Tile is one cell of the 3x3 grid.
type Tile struct {
	Index uint8
	Cup   CupColor
	Card  CardID // NoCard when empty
	Score int
}

// Occupied reports whether a number card sits on the tile.
func (t Tile) Occupied() bool { return t.Card != NoCard }

// Board is the grid of cups plus the running score.
type Board struct {
	Tiles      [NumTiles]Tile
	TotalScore int
	Values     CupValues
}

// TileScore returns the points a number card of the given value earns on
// cup: the value itself on a matching colored cup, 0 otherwise.
func TileScore(cup CupColor, value uint8, values CupValues) int {
	if !cup.IsColored() || values.Of(cup) != value {
		return 0
	}
	return int(value)
}

// NewBoard builds an empty board from the cups of tiles 0..7. The center
// tile always gets CupNone.
func NewBoard(layout [NumTiles - 1]CupColor, values CupValues) Board {
	b := Board{Values: values}
	for i := range b.Tiles {
		b.Tiles[i] = Tile{Index: uint8(i), Cup: CupNone, Card: NoCard}
		if i < CenterTile {
			b.Tiles[i].Cup = layout[i]
		}
	}
	return b
}

// randomLayout assigns the four colored cups to four distinct random tiles
// among 0..7 and leaves the rest white.
func randomLayout(m *Match) [NumTiles - 1]CupColor {
	var layout [NumTiles - 1]CupColor
	perm := [NumTiles - 1]int{0, 1, 2, 3, 4, 5, 6, 7}
	for i := len(perm) - 1; i > 0; i-- {
		j := m.randN(uint64(i + 1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	colors := ColoredCups
	for i := len(colors) - 1; i > 0; i-- {
		j := m.randN(uint64(i + 1))
		colors[i], colors[j] = colors[j], colors[i]
	}
	for i := range layout {
		layout[i] = CupWhite
	}
	for i, c := range colors {
		layout[perm[i]] = c
	}
	return layout
}

func validTile(tile int) bool { return tile >= 0 && tile < CenterTile }

// checkPlacement reports why card cannot go on tile, without touching the board.
func (b *Board) checkPlacement(tile int, card Card) error {
	if !validTile(tile) {
		return fmt.Errorf("tile %d: %w", tile, ErrInvalidTile)
	}
	if !card.IsNumber() {
		return fmt.Errorf("card %d is %s: %w", card.ID, card.Family, ErrWrongCardFamily)
	}
	if b.Tiles[tile].Occupied() {
		return fmt.Errorf("tile %d: %w", tile, ErrTileOccupied)
	}
	return nil
}

// PlaceNumberCard puts card on tile and returns the score it earned.
func (b *Board) PlaceNumberCard(tile int, card Card) (int, error) {
	if err := b.checkPlacement(tile, card); err != nil {
		return 0, err
	}
	t := &b.Tiles[tile]
	t.Card = card.ID
	t.Score = TileScore(t.Cup, card.Value, b.Values)
	b.TotalScore += t.Score
	return t.Score, nil
}

// ClearNumberCards empties every occupied tile, resets the score and returns
// the removed cards in tile order.
func (b *Board) ClearNumberCards() []CardID {
	var cleared []CardID
	for i := range b.Tiles {
		t := &b.Tiles[i]
		if !t.Occupied() {
			continue
		}
		cleared = append(cleared, t.Card)
		t.Card = NoCard
		t.Score = 0
	}
	b.TotalScore = 0
	return cleared
}

// Occupied returns how many tiles hold a number card.
func (b *Board) Occupied() int {
	n := 0
	for _, t := range b.Tiles {
		if t.Occupied() {
			n++
		}
	}
	return n
}

// FreeTiles returns the indices of tiles that can still take a card.
func (b *Board) FreeTiles() []int {
	var free []int
	for i := 0; i < CenterTile; i++ {
		if !b.Tiles[i].Occupied() {
			free = append(free, i)
		}
	}
	return free
}

// IsComplete reports whether all eight placeable tiles are filled.
func (b *Board) IsComplete() bool { return b.Occupied() == CenterTile }

// RecomputeScore sums the tile scores from scratch.
func (b *Board) RecomputeScore() int {
	total := 0
	for _, t := range b.Tiles {
		total += t.Score
	}
	return total
}

// TileWithCup returns the index of the tile carrying cup, or -1.
func (b *Board) TileWithCup(cup CupColor) int {
	for i, t := range b.Tiles {
		if t.Cup == cup {
			return i
		}
	}
	return -1
}
