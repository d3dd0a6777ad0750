package board

import (
	"fmt"
	"strings"
)

// SAN converts a move to Standard Algebraic Notation. The side to move is
// taken from the piece on the source square.
func (b *Board) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}

	piece := b.Get(m.Src)
	if piece == Empty {
		return m.String() // Fallback to coordinates
	}
	side := piece.Side()
	kind := piece.Kind()

	// Castling
	if kind == King && m.Src.X == 4 && (m.Dst.X-m.Src.X == 2 || m.Src.X-m.Dst.X == 2) {
		if m.Dst.X > m.Src.X {
			return "O-O" + b.checkSuffix(m, side)
		}
		return "O-O-O" + b.checkSuffix(m, side)
	}

	var sb strings.Builder

	if kind != Pawn {
		sb.WriteByte(" PNBRQK"[kind])
		sb.WriteString(b.disambiguation(m, piece))
	}

	isCapture := b.Occupied(m.Dst) || (kind == Pawn && m.Src.X != m.Dst.X)
	if isCapture {
		if kind == Pawn {
			sb.WriteByte('a' + byte(m.Src.X))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(m.Dst.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte(" PNBRQK"[m.Promotion.Kind()])
	}

	sb.WriteString(b.checkSuffix(m, side))
	return sb.String()
}

// checkSuffix returns "#", "+" or "" for the position after m.
func (b *Board) checkSuffix(m Move, side Side) string {
	u, err := b.Apply(m)
	if err != nil {
		return ""
	}
	defer b.Revert(u)

	enemy := side.Other()
	if !b.InCheck(enemy) {
		return ""
	}
	if !b.HasLegalMoves(enemy) {
		return "#"
	}
	return "+"
}

// disambiguation returns the file, rank or square needed to tell m apart
// from moves of other pieces of the same kind to the same square.
func (b *Board) disambiguation(m Move, piece Piece) string {
	moves, err := b.LegalMoves(piece.Side())
	if err != nil {
		return ""
	}

	var candidates []Position
	for _, other := range moves {
		if other.Dst != m.Dst || other.Src == m.Src {
			continue
		}
		if b.Get(other.Src) == piece {
			candidates = append(candidates, other.Src)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile := false
	sameRank := false
	for _, sq := range candidates {
		if sq.X == m.Src.X {
			sameFile = true
		}
		if sq.Y == m.Src.Y {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + m.Src.X))
	}
	if !sameRank {
		return string(rune('1' + m.Src.Y))
	}
	return m.Src.String()
}

// ParseSAN resolves a SAN string to one of side's legal moves.
func (b *Board) ParseSAN(s string, side Side) (Move, error) {
	s = strings.TrimSpace(s)
	orig := s

	home := side.homeRank()
	switch s {
	case "O-O", "0-0", "O-O+", "O-O#":
		return b.matchLegal(orig, side, func(m Move) bool {
			return m.Src == (Position{4, home}) && m.Dst == (Position{6, home}) && b.Get(m.Src).Kind() == King
		})
	case "O-O-O", "0-0-0", "O-O-O+", "O-O-O#":
		return b.matchLegal(orig, side, func(m Move) bool {
			return m.Src == (Position{4, home}) && m.Dst == (Position{2, home}) && b.Get(m.Src).Kind() == King
		})
	}

	s = strings.TrimRight(s, "+#!?")

	promo := NoKind
	if idx := strings.Index(s, "="); idx >= 0 && idx+1 < len(s) {
		promo = PieceFromChar(s[idx+1]).Kind()
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	kind := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		kind = PieceFromChar(s[0]).Kind()
		if kind == NoKind {
			return NoMove, fmt.Errorf("invalid piece in SAN %q: %w", orig, ErrIllegalMove)
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("invalid SAN %q: %w", orig, ErrIllegalMove)
	}
	dest, err := ParsePosition(s[len(s)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("invalid SAN %q: %w", orig, err)
	}
	s = s[:len(s)-2]

	fileHint, rankHint := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			fileHint = int(c - 'a')
		case c >= '1' && c <= '8':
			rankHint = int(c - '1')
		}
	}

	return b.matchLegal(orig, side, func(m Move) bool {
		if m.Dst != dest || b.Get(m.Src).Kind() != kind {
			return false
		}
		if fileHint >= 0 && m.Src.X != fileHint {
			return false
		}
		if rankHint >= 0 && m.Src.Y != rankHint {
			return false
		}
		if isCapture && !b.Occupied(m.Dst) && !(kind == Pawn && m.Src.X != m.Dst.X) {
			return false
		}
		if promo != NoKind {
			return m.Promotion.Kind() == promo
		}
		return !m.IsPromotion() || m.Promotion.Kind() == Queen
	})
}

func (b *Board) matchLegal(san string, side Side, match func(Move) bool) (Move, error) {
	moves, err := b.LegalMoves(side)
	if err != nil {
		return NoMove, err
	}
	for _, m := range moves {
		if match(m) {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("no legal move matches %q: %w", san, ErrIllegalMove)
}

// MovesToSAN converts a sequence of moves played from b by alternating
// sides to SAN. The board is left unchanged.
func (b *Board) MovesToSAN(moves []Move) []string {
	result := make([]string, 0, len(moves))
	undo := make([]Unmove, 0, len(moves))

	for _, m := range moves {
		result = append(result, b.SAN(m))
		u, err := b.Apply(m)
		if err != nil {
			break
		}
		undo = append(undo, u)
	}
	for i := len(undo) - 1; i >= 0; i-- {
		b.Revert(undo[i])
	}

	return result
}
