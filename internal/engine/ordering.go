package engine

import (
	"slices"

	"github.com/hailam/plychess/internal/board"
)

// KillerCapacity is the number of killer moves remembered per ply.
const KillerCapacity = 2

// KillerTable holds, per ply, the most recent moves that caused a cutoff.
type KillerTable struct {
	killers [][]board.Move
}

// NewKillerTable creates a table for plies 0..maxPly-1.
func NewKillerTable(maxPly int) *KillerTable {
	kt := &KillerTable{killers: make([][]board.Move, maxPly)}
	for i := range kt.killers {
		kt.killers[i] = make([]board.Move, 0, KillerCapacity)
	}
	return kt
}

// Clear forgets all killers.
func (kt *KillerTable) Clear() {
	for i := range kt.killers {
		kt.killers[i] = kt.killers[i][:0]
	}
}

// At returns the killers of ply, oldest first.
func (kt *KillerTable) At(ply int) []board.Move {
	if ply < 0 || ply >= len(kt.killers) {
		return nil
	}
	return kt.killers[ply]
}

// Add records m as a killer at ply. A move already present is ignored;
// when the ply is full the oldest entry is evicted.
func (kt *KillerTable) Add(ply int, m board.Move) {
	if ply < 0 || ply >= len(kt.killers) {
		return
	}

	k := kt.killers[ply]
	if slices.Contains(k, m) {
		return
	}
	if len(k) == KillerCapacity {
		copy(k, k[1:])
		k = k[:len(k)-1]
	}
	kt.killers[ply] = append(k, m)
}

// promote moves m to the front of moves, shifting the moves before it back
// by one. It returns false if m is not in the list.
func promote(moves []board.Move, m board.Move) bool {
	i := slices.Index(moves, m)
	if i < 0 {
		return false
	}
	copy(moves[1:i+1], moves[:i])
	moves[0] = m
	return true
}
