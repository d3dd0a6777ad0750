// Package engine picks moves for a board: a static evaluator, an iterative
// deepening search over explicit ply frames with killer move ordering, and
// a single-slot background runner.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/plychess/internal/board"
)

// Search limits.
const (
	DefaultDepth = 5
	MaxDepth     = 16
)

// SearchInfo contains information about one completed iteration.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Engine is the chess AI engine.
type Engine struct {
	searcher *Searcher
	depth    int
	log      zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine searching to depth plies, clamped to
// 1..MaxDepth.
func NewEngine(depth int, logger zerolog.Logger) *Engine {
	e := &Engine{
		searcher: NewSearcher(MaxDepth),
		log:      logger.With().Str("component", "engine").Logger(),
	}
	e.SetDepth(depth)
	return e
}

// SetDepth sets the depth ceiling of the final iteration.
func (e *Engine) SetDepth(depth int) {
	e.depth = min(max(depth, 1), MaxDepth)
}

// Depth returns the depth ceiling of the final iteration.
func (e *Engine) Depth() int {
	return e.depth
}

// PickNextMove searches b for side and returns the recommended move. The
// board is restored before returning. ok is false when side has no legal
// move. An Engine runs one search at a time.
func (e *Engine) PickNextMove(b *board.Board, side board.Side) (move board.Move, ok bool, err error) {
	if !side.Valid() {
		return board.NoMove, false, fmt.Errorf("pick move for side %d: %w", side, board.ErrInvalidArgument)
	}

	rootMoves, err := b.GenerateMoves(side, nil)
	if err != nil {
		return board.NoMove, false, err
	}
	if len(rootMoves) == 0 {
		e.log.Debug().Stringer("side", side).Msg("no legal moves at root")
		return board.NoMove, false, nil
	}

	s := e.searcher
	s.Reset(b, side)
	startTime := time.Now()

	// Iterative deepening
	for depth := 1; depth <= e.depth; depth++ {
		score, err := s.Iterate(rootMoves, depth)
		if err != nil {
			return board.NoMove, false, fmt.Errorf("search depth %d: %w", depth, err)
		}

		pv := s.PV()
		if len(pv) > 0 {
			move, ok = pv[0], true
		}

		e.log.Debug().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", s.Nodes()).
			Stringer("best", move).
			Msg("iteration complete")

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: depth,
				Score: score,
				Nodes: s.Nodes(),
				Time:  time.Since(startTime),
				PV:    pv,
			})
		}
	}

	return move, ok, nil
}

// Perft counts the leaf nodes of the legal move tree of the given depth.
func (e *Engine) Perft(b *board.Board, side board.Side, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}

	moves, err := b.GenerateMoves(side, nil)
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return uint64(len(moves)), nil
	}

	var nodes uint64
	for _, move := range moves {
		undo, err := b.Apply(move)
		if err != nil {
			return 0, err
		}
		n, err := e.Perft(b, side.Other(), depth-1)
		b.Revert(undo)
		if err != nil {
			return 0, err
		}
		nodes += n
	}

	return nodes, nil
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(b *board.Board) int {
	return Evaluate(b)
}

// PickNextMove searches with a fresh engine at DefaultDepth.
func PickNextMove(b *board.Board, side board.Side) (board.Move, bool, error) {
	return NewEngine(DefaultDepth, zerolog.Nop()).PickNextMove(b, side)
}

// ScoreToString converts a score to pawns, e.g. "+0.35" or "-1.00".
func ScoreToString(score int) string {
	sign := "+"
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
