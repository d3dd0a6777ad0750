package board

import "fmt"

// Side is the sign of a player's pieces: +1 for White, -1 for Black.
type Side int8

const (
	White Side = 1
	Black Side = -1
)

// Valid returns true if the side is +1 or -1.
func (s Side) Valid() bool {
	return s == White || s == Black
}

// Other returns the opposite side.
func (s Side) Other() Side {
	return -s
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoSide"
	}
}

// ParseSide accepts "white"/"w"/"+1"/"1" and "black"/"b"/"-1".
func ParseSide(s string) (Side, error) {
	switch s {
	case "white", "w", "White", "1", "+1":
		return White, nil
	case "black", "b", "Black", "-1":
		return Black, nil
	}
	return 0, fmt.Errorf("invalid side %q: %w", s, ErrInvalidArgument)
}

// homeRank returns the back rank of the side.
func (s Side) homeRank() int {
	if s == White {
		return 0
	}
	return 7
}

// pawnRank returns the rank the side's pawns start on.
func (s Side) pawnRank() int {
	if s == White {
		return 1
	}
	return 6
}

// farRank returns the rank the side's pawns promote on.
func (s Side) farRank() int {
	if s == White {
		return 7
	}
	return 0
}

// Kind is the magnitude of a piece code.
type Kind int8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// KindValue is the material value of each kind in centipawns.
var KindValue = [7]int{0, 100, 300, 320, 500, 900, 200000}

// PromotionKinds lists the kinds a pawn may promote to, in generation order.
var PromotionKinds = [4]Kind{Knight, Bishop, Rook, Queen}

// Piece is a signed piece code: sign = side, magnitude = Kind, 0 = empty.
type Piece int8

const (
	Empty       Piece = 0
	WhitePawn   Piece = Piece(Pawn)
	WhiteKnight Piece = Piece(Knight)
	WhiteBishop Piece = Piece(Bishop)
	WhiteRook   Piece = Piece(Rook)
	WhiteQueen  Piece = Piece(Queen)
	WhiteKing   Piece = Piece(King)
	BlackPawn   Piece = -WhitePawn
	BlackKnight Piece = -WhiteKnight
	BlackBishop Piece = -WhiteBishop
	BlackRook   Piece = -WhiteRook
	BlackQueen  Piece = -WhiteQueen
	BlackKing   Piece = -WhiteKing
)

// NewPiece creates a Piece from a Kind and Side.
func NewPiece(k Kind, s Side) Piece {
	if k <= NoKind || k > King || !s.Valid() {
		return Empty
	}
	return Piece(k) * Piece(s)
}

// Kind returns the magnitude of the piece code.
func (p Piece) Kind() Kind {
	if p < 0 {
		return Kind(-p)
	}
	return Kind(p)
}

// Side returns the owner of the piece, or 0 for an empty square.
func (p Piece) Side() Side {
	switch {
	case p > 0:
		return White
	case p < 0:
		return Black
	}
	return 0
}

// IsEmpty returns true for the empty code.
func (p Piece) IsEmpty() bool {
	return p == Empty
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	k := p.Kind()
	if k > King {
		return 0
	}
	return KindValue[k]
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black, "." for empty.
func (p Piece) String() string {
	if p == Empty || p.Kind() > King {
		return "."
	}
	chars := " PNBRQK"
	c := chars[p.Kind()]
	if p < 0 {
		c += 'a' - 'A'
	}
	return string(c)
}

// Name returns a readable piece name such as "White Knight".
func (p Piece) Name() string {
	if p == Empty {
		return "None"
	}
	return p.Side().String() + " " + p.Kind().String()
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return Empty
	}
}
