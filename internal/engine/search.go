package engine

import (
	"github.com/hailam/plychess/internal/board"
)

// Infinity bounds every score the evaluator can produce.
const Infinity = 1 << 30

// PVTable stores the principal variation of each ply.
type PVTable struct {
	length []int
	moves  [][]board.Move
}

// NewPVTable creates a table for plies 0..maxPly-1.
func NewPVTable(maxPly int) *PVTable {
	pv := &PVTable{
		length: make([]int, maxPly+1),
		moves:  make([][]board.Move, maxPly+1),
	}
	for i := range pv.moves {
		pv.moves[i] = make([]board.Move, maxPly+1)
	}
	return pv
}

// reset empties the line of ply.
func (pv *PVTable) reset(ply int) {
	pv.length[ply] = 0
}

// update makes m followed by the line of ply+1 the line of ply.
func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][0] = m
	n := copy(pv.moves[ply][1:], pv.moves[ply+1][:pv.length[ply+1]])
	pv.length[ply] = n + 1
}

// Line returns a copy of the line of ply.
func (pv *PVTable) Line(ply int) []board.Move {
	line := make([]board.Move, pv.length[ply])
	copy(line, pv.moves[ply][:pv.length[ply]])
	return line
}

// frame is the state of one ply of the explicit search stack.
type frame struct {
	moves  []board.Move
	next   int
	score  int
	cutoff bool

	// onPV is set while this ply lies on the previous iteration's line.
	onPV bool

	// unmove reverts moves[next-1] while the ply below is being searched.
	unmove board.Unmove
}

// Searcher walks the game tree of one board with an explicit ply loop.
// Frames, killers and the PV table are allocated once for the maximum
// depth and reused across iterations.
type Searcher struct {
	b       *board.Board
	root    board.Side
	frames  []frame
	pv      *PVTable
	killers *KillerTable
	prevPV  []board.Move
	nodes   uint64
}

// NewSearcher creates a searcher for depth ceilings up to maxDepth.
func NewSearcher(maxDepth int) *Searcher {
	return &Searcher{
		frames:  make([]frame, maxDepth+1),
		pv:      NewPVTable(maxDepth + 1),
		killers: NewKillerTable(maxDepth + 1),
	}
}

// Reset prepares the searcher for a new root position.
func (s *Searcher) Reset(b *board.Board, root board.Side) {
	s.b = b
	s.root = root
	s.prevPV = s.prevPV[:0]
	s.nodes = 0
	s.killers.Clear()
	for i := range s.pv.length {
		s.pv.reset(i)
	}
}

// Nodes returns the number of moves applied since Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// PV returns the principal variation of the last completed iteration.
func (s *Searcher) PV() []board.Move {
	return s.pv.Line(0)
}

// Killers exposes the killer table.
func (s *Searcher) Killers() *KillerTable {
	return s.killers
}

// maximizing reports whether the side to move at ply maximises the score.
// Scores are always from White's point of view.
func (s *Searcher) maximizing(ply int) bool {
	return (ply%2 == 0) == (s.root == board.White)
}

// sideAt returns the side to move at ply.
func (s *Searcher) sideAt(ply int) board.Side {
	if ply%2 == 0 {
		return s.root
	}
	return s.root.Other()
}

// sentinel returns the worst possible score for the side to move at ply.
func (s *Searcher) sentinel(ply int) int {
	if s.maximizing(ply) {
		return -Infinity
	}
	return Infinity
}

// Iterate runs one complete search to the given depth ceiling and returns
// the root score. rootMoves must be the non-empty legal move list of the
// root side; it is reordered in place.
func (s *Searcher) Iterate(rootMoves []board.Move, ceiling int) (int, error) {
	root := &s.frames[0]
	root.moves = rootMoves
	root.next = 0
	root.score = s.sentinel(0)
	root.cutoff = false
	root.onPV = true
	s.pv.reset(0)
	if len(s.prevPV) > 0 {
		promote(root.moves, s.prevPV[0])
	}

	ply := 0
	for {
		f := &s.frames[ply]

		// EXHAUSTED: fold this ply's score into its parent.
		if f.cutoff || f.next >= len(f.moves) {
			if ply == 0 {
				break
			}
			parent := &s.frames[ply-1]
			s.b.Revert(parent.unmove)
			s.foldUp(ply-1, f.score, parent.moves[parent.next-1])
			ply--
			continue
		}

		// ADVANCE: apply the next move and deepen.
		m := f.moves[f.next]
		f.next++
		u, err := s.b.Apply(m)
		if err != nil {
			s.unwind(ply)
			return 0, err
		}
		s.nodes++
		child := ply + 1

		if child == ceiling {
			score := Evaluate(s.b)
			s.b.Revert(u)
			s.pv.reset(child)
			s.foldUp(ply, score, m)
			continue
		}

		moves, err := s.b.GenerateMoves(s.sideAt(child), s.killers.At(child))
		if err != nil {
			s.b.Revert(u)
			s.unwind(ply)
			return 0, err
		}
		if len(moves) == 0 {
			score := Evaluate(s.b)
			s.b.Revert(u)
			s.pv.reset(child)
			s.foldUp(ply, score, m)
			continue
		}

		f.unmove = u
		cf := &s.frames[child]
		cf.moves = moves
		cf.next = 0
		cf.cutoff = false
		cf.onPV = f.onPV && child-1 < len(s.prevPV) && s.prevPV[child-1] == m
		if cf.onPV && child < len(s.prevPV) {
			promote(cf.moves, s.prevPV[child])
		}
		if child >= 2 {
			cf.score = s.frames[child-2].score
		} else {
			cf.score = s.sentinel(child)
		}
		s.pv.reset(child)
		ply = child
	}

	s.prevPV = append(s.prevPV[:0], s.pv.moves[0][:s.pv.length[0]]...)
	return root.score, nil
}

// foldUp merges the score of the position reached by m into the frame of
// parent. A strictly better score replaces the parent's score and line.
// When the grandparent of the child would strictly reject the score, the
// parent's remaining moves cannot matter: the parent is cut off and m
// becomes a killer at the parent's ply.
func (s *Searcher) foldUp(parent, score int, m board.Move) {
	p := &s.frames[parent]
	if s.maximizing(parent) {
		if score > p.score {
			p.score = score
			s.pv.update(parent, m)
		}
	} else if score < p.score {
		p.score = score
		s.pv.update(parent, m)
	}

	if parent < 1 {
		return
	}
	g := parent - 1
	gp := s.frames[g].score
	if (s.maximizing(g) && score < gp) || (!s.maximizing(g) && score > gp) {
		p.cutoff = true
		s.killers.Add(parent, m)
	}
}

// unwind reverts every move still applied below ply, restoring the root
// position after an aborted iteration.
func (s *Searcher) unwind(ply int) {
	for i := ply - 1; i >= 0; i-- {
		s.b.Revert(s.frames[i].unmove)
	}
}
