package board

import (
	"fmt"
	"slices"
)

// Move ordering scores.
const (
	// KillerBonus is added to a move that caused a cutoff at the same ply.
	KillerBonus = 1000
)

// GameStatus is the outcome of a position for the side to move.
type GameStatus int

const (
	Ongoing GameStatus = iota
	Checkmate
	Stalemate
)

// String returns the status name.
func (s GameStatus) String() string {
	switch s {
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	default:
		return "Ongoing"
	}
}

// GenerateMoves returns all legal moves for side, ordered for search:
// captures by victim value first, killers boosted by KillerBonus.
// Moves of equal score keep generation order.
func (b *Board) GenerateMoves(side Side, killers []Move) ([]Move, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("generate moves for side %d: %w", side, ErrInvalidArgument)
	}

	moves := b.filterLegal(side, b.pseudoLegalMoves(side))
	b.orderMoves(moves, killers)
	return moves, nil
}

// LegalMoves returns all legal moves for side without killer ordering.
func (b *Board) LegalMoves(side Side) ([]Move, error) {
	return b.GenerateMoves(side, nil)
}

// HasLegalMoves returns true if side has at least one legal move.
func (b *Board) HasLegalMoves(side Side) bool {
	if !side.Valid() {
		return false
	}
	king, hasKing := b.KingPosition(side)
	inCheck := hasKing && b.IsAttacked(king, side.Other())
	for _, m := range b.pseudoLegalMoves(side) {
		if b.isLegal(m, side, king, hasKing, inCheck) {
			return true
		}
	}
	return false
}

// Status reports whether side is checkmated, stalemated or still playing.
func (b *Board) Status(side Side) GameStatus {
	if b.HasLegalMoves(side) {
		return Ongoing
	}
	if b.InCheck(side) {
		return Checkmate
	}
	return Stalemate
}

// pseudoLegalMoves generates moves following piece movement rules without
// checking whether the mover's king is left attacked. Castling is the
// exception: its attack conditions are verified here.
func (b *Board) pseudoLegalMoves(side Side) []Move {
	moves := make([]Move, 0, 48)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b.Grid[y][x]
			if p.Side() != side {
				continue
			}

			src := Position{x, y}
			switch p.Kind() {
			case Pawn:
				moves = b.pawnMoves(moves, src, side)
			case Knight:
				moves = b.stepMoves(moves, src, side, knightOffsets[:])
			case Bishop:
				moves = b.slideMoves(moves, src, side, diagonalDirections[:])
			case Rook:
				moves = b.slideMoves(moves, src, side, fileDirections[:])
			case Queen:
				moves = b.slideMoves(moves, src, side, fileDirections[:])
				moves = b.slideMoves(moves, src, side, diagonalDirections[:])
			case King:
				moves = b.stepMoves(moves, src, side, kingOffsets[:])
				moves = b.castlingMoves(moves, src, side)
			}
		}
	}
	return moves
}

func (b *Board) pawnMoves(moves []Move, src Position, side Side) []Move {
	dir := int(side)

	one := Position{src.X, src.Y + dir}
	if b.CanMoveTo(one) {
		moves = addPawnMove(moves, src, one, side)

		two := Position{src.X, src.Y + 2*dir}
		if src.Y == side.pawnRank() && b.CanMoveTo(two) {
			moves = append(moves, NewMove(src, two))
		}
	}

	for _, dx := range [2]int{-1, 1} {
		dst := Position{src.X + dx, src.Y + dir}
		if b.CanCaptureTo(dst, side) || b.isEnPassantCapture(src, dst, side) {
			moves = addPawnMove(moves, src, dst, side)
		}
	}
	return moves
}

// isEnPassantCapture reports whether a pawn of side on src may capture onto
// dst en passant.
func (b *Board) isEnPassantCapture(src, dst Position, side Side) bool {
	return b.hasEnPassant && dst == b.enPassant &&
		b.Get(Position{dst.X, src.Y}) == NewPiece(Pawn, side.Other())
}

// addPawnMove appends a pawn move, expanding it into every promotion when
// it reaches the far rank.
func addPawnMove(moves []Move, src, dst Position, side Side) []Move {
	if dst.Y != side.farRank() {
		return append(moves, NewMove(src, dst))
	}
	for _, k := range PromotionKinds {
		moves = append(moves, NewPromotion(src, dst, NewPiece(k, side)))
	}
	return moves
}

func (b *Board) stepMoves(moves []Move, src Position, side Side, offsets []Position) []Move {
	for _, o := range offsets {
		dst := src.Add(o)
		if b.CanMoveTo(dst) || b.CanCaptureTo(dst, side) {
			moves = append(moves, NewMove(src, dst))
		}
	}
	return moves
}

func (b *Board) slideMoves(moves []Move, src Position, side Side, dirs []Position) []Move {
	for _, d := range dirs {
		for dst := src.Add(d); dst.IsValid(); dst = dst.Add(d) {
			if b.CanMoveTo(dst) {
				moves = append(moves, NewMove(src, dst))
				continue
			}
			if b.CanCaptureTo(dst, side) {
				moves = append(moves, NewMove(src, dst))
			}
			break
		}
	}
	return moves
}

// castlingMoves adds castling for a king on its home square when neither
// it nor the rook has moved, the squares between them are empty and the
// king does not start in, pass through or land on an attacked square.
func (b *Board) castlingMoves(moves []Move, src Position, side Side) []Move {
	home := side.homeRank()
	if src != (Position{4, home}) || b.HasMoved(src) {
		return moves
	}

	enemy := side.Other()
	if b.IsAttacked(src, enemy) {
		return moves
	}

	rook := NewPiece(Rook, side)

	// Kingside: f and g empty, rook on h.
	h := Position{7, home}
	if b.Get(h) == rook && !b.HasMoved(h) &&
		b.CanMoveTo(Position{5, home}) && b.CanMoveTo(Position{6, home}) &&
		!b.IsAttacked(Position{5, home}, enemy) && !b.IsAttacked(Position{6, home}, enemy) {
		moves = append(moves, NewMove(src, Position{6, home}))
	}

	// Queenside: b, c and d empty, rook on a.
	a := Position{0, home}
	if b.Get(a) == rook && !b.HasMoved(a) &&
		b.CanMoveTo(Position{1, home}) && b.CanMoveTo(Position{2, home}) && b.CanMoveTo(Position{3, home}) &&
		!b.IsAttacked(Position{3, home}, enemy) && !b.IsAttacked(Position{2, home}, enemy) {
		moves = append(moves, NewMove(src, Position{2, home}))
	}

	return moves
}

// filterLegal keeps the moves that do not leave the mover's king attacked.
func (b *Board) filterLegal(side Side, moves []Move) []Move {
	king, hasKing := b.KingPosition(side)
	inCheck := hasKing && b.IsAttacked(king, side.Other())

	legal := moves[:0]
	for _, m := range moves {
		if b.isLegal(m, side, king, hasKing, inCheck) {
			legal = append(legal, m)
		}
	}
	return legal
}

// isLegal tests a pseudo-legal move by applying it, checking the king square
// and reverting. A move by a piece that is not the king, not capturing en
// passant and not standing on a line through its king cannot expose the
// king, so when the side is not in check the legality check is skipped.
func (b *Board) isLegal(m Move, side Side, king Position, hasKing, inCheck bool) bool {
	if !hasKing {
		return true
	}

	isKing := m.Src == king
	isEnPassant := b.Get(m.Src).Kind() == Pawn && b.isEnPassantCapture(m.Src, m.Dst, side)
	if !inCheck && !isKing && !isEnPassant && !alignedWith(m.Src, king) {
		return true
	}

	u, err := b.Apply(m)
	if err != nil {
		return false
	}
	target := king
	if isKing {
		target = m.Dst
	}
	attacked := b.IsAttacked(target, side.Other())
	b.Revert(u)
	return !attacked
}

// orderMoves sorts moves by descending score, keeping generation order for
// ties.
func (b *Board) orderMoves(moves []Move, killers []Move) {
	if len(moves) < 2 {
		return
	}

	type scored struct {
		move  Move
		score int
	}
	list := make([]scored, len(moves))
	for i, m := range moves {
		list[i] = scored{m, b.scoreMove(m, killers)}
	}

	slices.SortStableFunc(list, func(x, y scored) int {
		return y.score - x.score
	})

	for i := range list {
		moves[i] = list[i].move
	}
}

// scoreMove returns the value of the captured piece plus KillerBonus for a
// killer move.
func (b *Board) scoreMove(m Move, killers []Move) int {
	score := b.Get(m.Dst).Value()
	if score == 0 && b.Get(m.Src).Kind() == Pawn && b.hasEnPassant && m.Dst == b.enPassant && m.Src.X != m.Dst.X {
		score = KindValue[Pawn]
	}
	if slices.Contains(killers, m) {
		score += KillerBonus
	}
	return score
}
