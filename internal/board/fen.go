package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a board and the side to move.
//
// The board keeps no castling rights of its own: a missing right marks the
// corresponding rook square as moved, and a side with no rights at all also
// gets its king square marked. Move clocks are accepted and dropped.
func ParseFEN(fen string) (*Board, Side, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, 0, fmt.Errorf("invalid FEN: need at least 4 fields, got %d: %w", len(parts), ErrInvalidArgument)
	}

	b := NewEmptyBoard()

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(b, parts[0]); err != nil {
		return nil, 0, err
	}

	// Parse side to move (field 1)
	var side Side
	switch parts[1] {
	case "w":
		side = White
	case "b":
		side = Black
	default:
		return nil, 0, fmt.Errorf("invalid side to move %q: %w", parts[1], ErrInvalidArgument)
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(b, parts[2]); err != nil {
		return nil, 0, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParsePosition(parts[3])
		if err != nil {
			return nil, 0, fmt.Errorf("invalid en passant square %q: %w", parts[3], ErrInvalidArgument)
		}
		b.enPassant = sq
		b.hasEnPassant = true
	}

	// Clocks (fields 4 and 5, optional) must be numeric when present.
	for _, f := range parts[4:min(len(parts), 6)] {
		if _, err := strconv.Atoi(f); err != nil {
			return nil, 0, fmt.Errorf("invalid move clock %q: %w", f, ErrInvalidArgument)
		}
	}

	return b, side, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d: %w", len(ranks), ErrInvalidArgument)
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d: %w", rank+1, ErrInvalidArgument)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece == Empty {
				return fmt.Errorf("invalid piece character %c: %w", c, ErrInvalidArgument)
			}
			b.Grid[rank][file] = piece
			file++
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d: %w", rank+1, file, ErrInvalidArgument)
		}
	}

	return nil
}

// parseCastlingRights translates the castling field into has-moved marks.
func parseCastlingRights(b *Board, castling string) error {
	var rights [2][2]bool // [white, black][kingside, queenside]

	if castling != "-" {
		for _, c := range castling {
			switch c {
			case 'K':
				rights[0][0] = true
			case 'Q':
				rights[0][1] = true
			case 'k':
				rights[1][0] = true
			case 'q':
				rights[1][1] = true
			default:
				return fmt.Errorf("invalid castling character %c: %w", c, ErrInvalidArgument)
			}
		}
	}

	for i, side := range [2]Side{White, Black} {
		home := side.homeRank()
		if !rights[i][0] {
			b.SetMoved(Position{7, home}, true)
		}
		if !rights[i][1] {
			b.SetMoved(Position{0, home}, true)
		}
		if !rights[i][0] && !rights[i][1] {
			b.SetMoved(Position{4, home}, true)
		}
	}

	return nil
}

// castlingRights derives the FEN castling field from the pieces and the
// has-moved mask.
func (b *Board) castlingRights() string {
	var sb strings.Builder
	for _, side := range [2]Side{White, Black} {
		home := side.homeRank()
		king := Position{4, home}
		if b.Get(king) != NewPiece(King, side) || b.HasMoved(king) {
			continue
		}
		rook := NewPiece(Rook, side)
		for _, r := range [2]struct {
			x int
			c byte
		}{{7, 'K'}, {0, 'Q'}} {
			pos := Position{r.x, home}
			if b.Get(pos) != rook || b.HasMoved(pos) {
				continue
			}
			c := r.c
			if side == Black {
				c += 'a' - 'A'
			}
			sb.WriteByte(c)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// FEN returns the FEN representation of the board with side to move.
// Move clocks are not tracked and are always written as "0 1".
func (b *Board) FEN(side Side) string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := b.Grid[rank][file]
			if piece == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if side == Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.castlingRights())

	sb.WriteByte(' ')
	if b.hasEnPassant {
		sb.WriteString(b.enPassant.String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(" 0 1")
	return sb.String()
}
