package board

// IsAttacked returns true if any piece of bySide attacks pos. Occupancy of
// pos itself is irrelevant; pinned attackers still count.
func (b *Board) IsAttacked(pos Position, bySide Side) bool {
	// Pawns attack diagonally forward, so look one rank behind pos.
	pawn := NewPiece(Pawn, bySide)
	behind := -int(bySide)
	if b.Get(Position{pos.X - 1, pos.Y + behind}) == pawn ||
		b.Get(Position{pos.X + 1, pos.Y + behind}) == pawn {
		return true
	}

	knight := NewPiece(Knight, bySide)
	for _, o := range knightOffsets {
		if b.Get(pos.Add(o)) == knight {
			return true
		}
	}

	king := NewPiece(King, bySide)
	for _, o := range kingOffsets {
		if b.Get(pos.Add(o)) == king {
			return true
		}
	}

	queen := NewPiece(Queen, bySide)
	if b.slidingAttacker(pos, fileDirections[:], NewPiece(Rook, bySide), queen) {
		return true
	}
	return b.slidingAttacker(pos, diagonalDirections[:], NewPiece(Bishop, bySide), queen)
}

// slidingAttacker walks each ray from pos to the first occupied square and
// reports whether it holds one of the two given pieces.
func (b *Board) slidingAttacker(pos Position, dirs []Position, p1, p2 Piece) bool {
	for _, d := range dirs {
		for sq := pos.Add(d); sq.IsValid(); sq = sq.Add(d) {
			p := b.Grid[sq.Y][sq.X]
			if p == Empty {
				continue
			}
			if p == p1 || p == p2 {
				return true
			}
			break
		}
	}
	return false
}

// InCheck returns true if the king of side is attacked. A side without a
// king is never in check.
func (b *Board) InCheck(side Side) bool {
	king, ok := b.KingPosition(side)
	if !ok {
		return false
	}
	return b.IsAttacked(king, side.Other())
}

// alignedWith returns true if pos shares a rank, file or diagonal with king.
func alignedWith(pos, king Position) bool {
	dx := pos.X - king.X
	dy := pos.Y - king.Y
	return dx == 0 || dy == 0 || dx == dy || dx == -dy
}
