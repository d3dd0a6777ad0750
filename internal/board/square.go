// Package board implements the chess board as an 8x8 grid of signed piece codes
// together with legal move generation and exact move undo.
package board

import "fmt"

// Position is a file/rank pair on the board (X = file 0-7 where 0=a,
// Y = rank 0-7 where 0=1). Positions are plain values; off-board
// positions are representable and rejected by IsValid.
type Position struct {
	X int
	Y int
}

// Square constants for all 64 squares.
var (
	A1 = Position{0, 0}
	B1 = Position{1, 0}
	C1 = Position{2, 0}
	D1 = Position{3, 0}
	E1 = Position{4, 0}
	F1 = Position{5, 0}
	G1 = Position{6, 0}
	H1 = Position{7, 0}
	A2 = Position{0, 1}
	B2 = Position{1, 1}
	C2 = Position{2, 1}
	D2 = Position{3, 1}
	E2 = Position{4, 1}
	F2 = Position{5, 1}
	G2 = Position{6, 1}
	H2 = Position{7, 1}
	A3 = Position{0, 2}
	B3 = Position{1, 2}
	C3 = Position{2, 2}
	D3 = Position{3, 2}
	E3 = Position{4, 2}
	F3 = Position{5, 2}
	G3 = Position{6, 2}
	H3 = Position{7, 2}
	A4 = Position{0, 3}
	B4 = Position{1, 3}
	C4 = Position{2, 3}
	D4 = Position{3, 3}
	E4 = Position{4, 3}
	F4 = Position{5, 3}
	G4 = Position{6, 3}
	H4 = Position{7, 3}
	A5 = Position{0, 4}
	B5 = Position{1, 4}
	C5 = Position{2, 4}
	D5 = Position{3, 4}
	E5 = Position{4, 4}
	F5 = Position{5, 4}
	G5 = Position{6, 4}
	H5 = Position{7, 4}
	A6 = Position{0, 5}
	B6 = Position{1, 5}
	C6 = Position{2, 5}
	D6 = Position{3, 5}
	E6 = Position{4, 5}
	F6 = Position{5, 5}
	G6 = Position{6, 5}
	H6 = Position{7, 5}
	A7 = Position{0, 6}
	B7 = Position{1, 6}
	C7 = Position{2, 6}
	D7 = Position{3, 6}
	E7 = Position{4, 6}
	F7 = Position{5, 6}
	G7 = Position{6, 6}
	H7 = Position{7, 6}
	A8 = Position{0, 7}
	B8 = Position{1, 7}
	C8 = Position{2, 7}
	D8 = Position{3, 7}
	E8 = Position{4, 7}
	F8 = Position{5, 7}
	G8 = Position{6, 7}
	H8 = Position{7, 7}
)

// Direction sets used by the generator and attack detection.
var (
	fileDirections = [4]Position{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	diagonalDirections = [4]Position{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}

	knightOffsets = [8]Position{
		{1, 2}, {-1, 2}, {2, -1}, {2, 1},
		{1, -2}, {-1, -2}, {-2, -1}, {-2, 1},
	}

	kingOffsets = [8]Position{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	}
)

// Pos creates a position from file and rank (0-indexed).
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// Add returns the position offset by o.
func (p Position) Add(o Position) Position {
	return Position{p.X + o.X, p.Y + o.Y}
}

// Scale returns the position with both coordinates multiplied by k.
func (p Position) Scale(k int) Position {
	return Position{p.X * k, p.Y * k}
}

// IsValid returns true if the position lies within the 8x8 grid.
func (p Position) IsValid() bool {
	return p.X >= 0 && p.X < 8 && p.Y >= 0 && p.Y < 8
}

// index returns the bit index of the position (0-63, a1=0, h8=63).
func (p Position) index() uint {
	return uint(p.Y*8 + p.X)
}

// String returns the algebraic notation for the position (e.g., "e4").
func (p Position) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return fmt.Sprintf("%c%c", 'a'+p.X, '1'+p.Y)
}

// ParsePosition parses algebraic notation (e.g., "e4") into a Position.
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("invalid square %q: %w", s, ErrOutOfRange)
	}

	p := Position{X: int(s[0]) - 'a', Y: int(s[1]) - '1'}
	if !p.IsValid() {
		return Position{}, fmt.Errorf("invalid square %q: %w", s, ErrOutOfRange)
	}
	return p, nil
}
