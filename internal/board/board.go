package board

import (
	"fmt"
	"strings"
)

// initialRows is the standard starting position, rank 1 first.
var initialRows = [8][8]Piece{
	{WhiteRook, WhiteKnight, WhiteBishop, WhiteQueen, WhiteKing, WhiteBishop, WhiteKnight, WhiteRook},
	{WhitePawn, WhitePawn, WhitePawn, WhitePawn, WhitePawn, WhitePawn, WhitePawn, WhitePawn},
	{},
	{},
	{},
	{},
	{BlackPawn, BlackPawn, BlackPawn, BlackPawn, BlackPawn, BlackPawn, BlackPawn, BlackPawn},
	{BlackRook, BlackKnight, BlackBishop, BlackQueen, BlackKing, BlackBishop, BlackKnight, BlackRook},
}

// Board is an 8x8 grid of signed piece codes plus the side-channel state
// castling and en passant depend on. It is the only mutable entity of the
// engine: the search walks the game tree by applying and reverting moves on
// a single Board.
type Board struct {
	// Grid is indexed [rank][file].
	Grid [8][8]Piece

	// enPassant is the square a pawn that just advanced two ranks can be
	// captured on; valid for exactly one reply.
	enPassant    Position
	hasEnPassant bool

	// moved has bit y*8+x set once a move left from or arrived on that square.
	moved uint64
}

// NewBoard creates a board set to the standard initial position.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// NewEmptyBoard creates a board with no pieces and nothing marked moved.
func NewEmptyBoard() *Board {
	return &Board{}
}

// Reset restores the standard initial position.
func (b *Board) Reset() {
	b.Grid = initialRows
	b.enPassant = Position{}
	b.hasEnPassant = false
	b.moved = 0
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Equal reports whether both boards have identical grids, en passant
// targets and has-moved state.
func (b *Board) Equal(o *Board) bool {
	if b.Grid != o.Grid || b.moved != o.moved || b.hasEnPassant != o.hasEnPassant {
		return false
	}
	return !b.hasEnPassant || b.enPassant == o.enPassant
}

// IsValid returns true if pos lies within the 8x8 grid.
func (b *Board) IsValid(pos Position) bool {
	return pos.IsValid()
}

// At returns the piece code at pos.
func (b *Board) At(pos Position) (Piece, error) {
	if !pos.IsValid() {
		return Empty, fmt.Errorf("read %v: %w", pos, ErrOutOfRange)
	}
	return b.Grid[pos.Y][pos.X], nil
}

// Set places a piece code at pos.
func (b *Board) Set(pos Position, p Piece) error {
	if !pos.IsValid() {
		return fmt.Errorf("write %v: %w", pos, ErrOutOfRange)
	}
	b.Grid[pos.Y][pos.X] = p
	return nil
}

// Get returns the piece code at pos, or Empty if pos is off the board.
func (b *Board) Get(pos Position) Piece {
	if !pos.IsValid() {
		return Empty
	}
	return b.Grid[pos.Y][pos.X]
}

// Occupied returns true if pos is on the board and holds a piece.
func (b *Board) Occupied(pos Position) bool {
	return b.Get(pos) != Empty
}

// OccupyingSide returns the side of the piece at pos, or 0 if empty.
func (b *Board) OccupyingSide(pos Position) Side {
	return b.Get(pos).Side()
}

// CanMoveTo returns true if pos is on the board and empty.
func (b *Board) CanMoveTo(pos Position) bool {
	return pos.IsValid() && b.Grid[pos.Y][pos.X] == Empty
}

// CanCaptureTo returns true if pos is on the board and holds a piece of
// the side opposing side.
func (b *Board) CanCaptureTo(pos Position, side Side) bool {
	return pos.IsValid() && int(b.Grid[pos.Y][pos.X])*int(side) < 0
}

// HasMoved returns true if a piece has moved from or onto pos.
func (b *Board) HasMoved(pos Position) bool {
	return pos.IsValid() && b.moved&(1<<pos.index()) != 0
}

// SetMoved marks or clears the has-moved flag of pos.
func (b *Board) SetMoved(pos Position, moved bool) {
	if !pos.IsValid() {
		return
	}
	if moved {
		b.moved |= 1 << pos.index()
	} else {
		b.moved &^= 1 << pos.index()
	}
}

// EnPassantTarget returns the current en passant target square, if any.
func (b *Board) EnPassantTarget() (Position, bool) {
	return b.enPassant, b.hasEnPassant
}

// SetEnPassantTarget sets the en passant target square.
func (b *Board) SetEnPassantTarget(pos Position) error {
	if !pos.IsValid() {
		return fmt.Errorf("en passant target %v: %w", pos, ErrOutOfRange)
	}
	b.enPassant = pos
	b.hasEnPassant = true
	return nil
}

// ClearEnPassantTarget removes the en passant target.
func (b *Board) ClearEnPassantTarget() {
	b.enPassant = Position{}
	b.hasEnPassant = false
}

// PiecesOf returns the squares occupied by side, rank by rank from a1.
func (b *Board) PiecesOf(side Side) []Position {
	var out []Position
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if int(b.Grid[y][x])*int(side) > 0 {
				out = append(out, Position{x, y})
			}
		}
	}
	return out
}

// KingPosition locates the king of side.
func (b *Board) KingPosition(side Side) (Position, bool) {
	king := NewPiece(King, side)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if b.Grid[y][x] == king {
				return Position{x, y}, true
			}
		}
	}
	return Position{}, false
}

// Apply performs m and returns the record that reverts it.
//
// Beyond relocating the piece, Apply handles the en passant target (set
// after a two-rank pawn advance, cleared otherwise), removal of a pawn
// captured en passant, the rook of a castling king (king moving two files
// from its home square) and promotion.
func (b *Board) Apply(m Move) (Unmove, error) {
	if !m.Src.IsValid() || !m.Dst.IsValid() {
		return Unmove{}, fmt.Errorf("apply %v: %w", m, ErrOutOfRange)
	}

	piece := b.Grid[m.Src.Y][m.Src.X]
	if piece == Empty {
		return Unmove{}, fmt.Errorf("no piece to move with %v: %w", m, ErrIllegalMove)
	}

	u := Unmove{
		Removes:      make([]PiecePosition, 0, 2),
		Adds:         make([]PiecePosition, 0, 4),
		EnPassant:    b.enPassant,
		HasEnPassant: b.hasEnPassant,
		Moved:        b.moved,
	}

	side := piece.Side()
	kind := piece.Kind()

	// En passant capture: a pawn moving diagonally onto the empty target.
	if kind == Pawn && b.hasEnPassant && m.Dst == b.enPassant &&
		m.Dst.X != m.Src.X && b.Grid[m.Dst.Y][m.Dst.X] == Empty {
		captured := Position{m.Dst.X, m.Src.Y}
		u.Adds = append(u.Adds, PiecePosition{b.Grid[captured.Y][captured.X], captured})
		b.Grid[captured.Y][captured.X] = Empty
	}

	b.relocate(&u, m.Src, m.Dst)

	// Castling: the rook jumps over the king.
	if kind == King && m.Src.X == 4 && m.Src.Y == side.homeRank() {
		home := side.homeRank()
		switch m.Dst {
		case Position{2, home}:
			rook := Position{0, home}
			b.moved |= 1 << rook.index()
			b.relocate(&u, rook, Position{3, home})
		case Position{6, home}:
			rook := Position{7, home}
			b.moved |= 1 << rook.index()
			b.relocate(&u, rook, Position{5, home})
		}
	}

	if m.IsPromotion() {
		b.Grid[m.Dst.Y][m.Dst.X] = m.Promotion
		u.Removes[0].Piece = m.Promotion
	}

	b.hasEnPassant = false
	b.enPassant = Position{}
	if kind == Pawn && (m.Dst.Y-m.Src.Y == 2 || m.Src.Y-m.Dst.Y == 2) {
		b.enPassant = Position{m.Src.X, (m.Src.Y + m.Dst.Y) / 2}
		b.hasEnPassant = true
	}

	b.moved |= 1<<m.Src.index() | 1<<m.Dst.index()

	return u, nil
}

// relocate moves the piece on src to dst and records the inverse.
func (b *Board) relocate(u *Unmove, src, dst Position) {
	piece := b.Grid[src.Y][src.X]
	u.Removes = append(u.Removes, PiecePosition{piece, dst})
	u.Adds = append(u.Adds,
		PiecePosition{piece, src},
		PiecePosition{b.Grid[dst.Y][dst.X], dst},
	)
	b.Grid[dst.Y][dst.X] = piece
	b.Grid[src.Y][src.X] = Empty
}

// Revert undoes the move that produced u. Unmoves must be reverted in
// the reverse order they were produced.
func (b *Board) Revert(u Unmove) {
	for _, pp := range u.Removes {
		b.Grid[pp.Pos.Y][pp.Pos.X] = Empty
	}
	for _, pp := range u.Adds {
		b.Grid[pp.Pos.Y][pp.Pos.X] = pp.Piece
	}

	b.enPassant = u.EnPassant
	b.hasEnPassant = u.HasEnPassant
	b.moved = u.Moved
}

// String returns a visual representation of the board, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for y := 7; y >= 0; y-- {
		fmt.Fprintf(&sb, "%d  ", y+1)
		for x := 0; x < 8; x++ {
			sb.WriteString(b.Grid[y][x].String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n")
	if b.hasEnPassant {
		fmt.Fprintf(&sb, "En passant: %s\n", b.enPassant)
	}
	return sb.String()
}
