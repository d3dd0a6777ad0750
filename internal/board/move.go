package board

import (
	"fmt"
	"strings"
)

// Move relocates the piece on Src to Dst. A promotion move additionally
// carries the replacement piece code in Promotion; ordinary moves leave it
// Empty. Moves are comparable values.
type Move struct {
	Src       Position
	Dst       Position
	Promotion Piece
}

// NoMove represents the absence of a move.
var NoMove = Move{}

// NewMove creates an ordinary move.
func NewMove(src, dst Position) Move {
	return Move{Src: src, Dst: dst}
}

// NewPromotion creates a promotion move landing the given piece code on dst.
func NewPromotion(src, dst Position, promoted Piece) Move {
	return Move{Src: src, Dst: dst, Promotion: promoted}
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion != Empty
}

// String returns the move in coordinate notation (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.Src.String() + m.Dst.String()
	if m.IsPromotion() {
		s += strings.ToLower(m.Promotion.String())
	}
	return s
}

// ParseMove parses coordinate notation against the current board. The
// promotion suffix is optional for a pawn reaching the far rank, in which
// case a queen is assumed.
func (b *Board) ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string %q: %w", s, ErrIllegalMove)
	}

	src, err := ParsePosition(s[0:2])
	if err != nil {
		return NoMove, err
	}
	dst, err := ParsePosition(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := b.Get(src)
	if piece == Empty {
		return NoMove, fmt.Errorf("no piece at %s: %w", src, ErrIllegalMove)
	}

	if len(s) == 5 {
		var k Kind
		switch s[4] {
		case 'n':
			k = Knight
		case 'b':
			k = Bishop
		case 'r':
			k = Rook
		case 'q':
			k = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece %c: %w", s[4], ErrIllegalMove)
		}
		return NewPromotion(src, dst, NewPiece(k, piece.Side())), nil
	}

	if piece.Kind() == Pawn && dst.Y == piece.Side().farRank() {
		return NewPromotion(src, dst, NewPiece(Queen, piece.Side())), nil
	}

	return NewMove(src, dst), nil
}

// PiecePosition records a piece code on a square.
type PiecePosition struct {
	Piece Piece
	Pos   Position
}

// String returns a readable description, e.g. "White Pawn at e2".
func (pp PiecePosition) String() string {
	if pp.Piece == Empty {
		return "- at " + pp.Pos.String()
	}
	return pp.Piece.Name() + " at " + pp.Pos.String()
}

// Unmove stores everything needed to invert one applied move exactly.
// Revert clears every square in Removes, then writes every entry of Adds,
// then restores the en passant target and has-moved mask verbatim.
type Unmove struct {
	Removes []PiecePosition
	Adds    []PiecePosition

	// State as of before the move.
	EnPassant    Position
	HasEnPassant bool
	Moved        uint64
}

// String returns a human readable record of the move it inverts.
func (u Unmove) String() string {
	return fmt.Sprintf("add = %v, remove = %v", u.Removes, u.Adds)
}
