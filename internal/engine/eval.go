package engine

import "github.com/hailam/plychess/internal/board"

// centreBonus rewards occupying the middle of the board. It is symmetric,
// so one table serves both sides.
var centreBonus = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{0, 5, 5, 5, 5, 5, 5, 0},
	{0, 5, 10, 10, 10, 10, 5, 0},
	{0, 5, 10, 20, 20, 10, 5, 0},
	{0, 5, 10, 20, 20, 10, 5, 0},
	{0, 5, 10, 10, 10, 10, 5, 0},
	{0, 5, 5, 5, 5, 5, 5, 0},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

// Evaluate returns the static score of b from White's point of view:
// material plus centre bonus of White's pieces minus the same for Black.
// Checkmate and stalemate are not recognised.
func Evaluate(b *board.Board) int {
	score := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b.Grid[y][x]
			if p == board.Empty {
				continue
			}
			v := p.Value() + centreBonus[y][x]
			if p.Side() == board.White {
				score += v
			} else {
				score -= v
			}
		}
	}
	return score
}

// Material returns the material balance of b from White's point of view,
// without positional terms.
func Material(b *board.Board) int {
	score := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := b.Grid[y][x]
			score += p.Value() * int(p.Side())
		}
	}
	return score
}
