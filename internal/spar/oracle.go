package spar

import (
	"errors"
	"fmt"

	"github.com/freeeve/uci"
)

// MateScore is the centipawn value reported for a forced mate, less one
// per move until mate.
const MateScore = 100000

// ErrNoResult is returned when the external engine reports no analysis.
var ErrNoResult = errors.New("no results from engine")

// Analysis is an external engine's verdict on a position, scored from the
// side to move's point of view.
type Analysis struct {
	BestMove string
	Score    int
	Mate     bool
	Depth    int
}

// Centipawns folds mate scores into the centipawn range.
func (a Analysis) Centipawns() int {
	if !a.Mate {
		return a.Score
	}
	if a.Score > 0 {
		return MateScore - a.Score
	}
	return -MateScore - a.Score
}

// Oracle analyses positions given as FEN.
type Oracle interface {
	Analyse(fen string, depth int) (Analysis, error)
	Close() error
}

// EngineOptions configures an external UCI engine.
type EngineOptions struct {
	HashMB  int
	Threads int
}

// uciOracle drives an external UCI engine process.
type uciOracle struct {
	engine *uci.Engine
}

// DialEngine starts the UCI engine at path.
func DialEngine(path string, opts EngineOptions) (Oracle, error) {
	engine, err := uci.NewEngine(path)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}

	if opts.HashMB <= 0 {
		opts.HashMB = 16
	}
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	err = engine.SetOptions(uci.Options{
		Hash:    opts.HashMB,
		Threads: opts.Threads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	})
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("set engine options: %w", err)
	}

	return &uciOracle{engine: engine}, nil
}

func (o *uciOracle) Analyse(fen string, depth int) (Analysis, error) {
	if err := o.engine.SetFEN(fen); err != nil {
		return Analysis{}, fmt.Errorf("set FEN: %w", err)
	}

	results, err := o.engine.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return Analysis{}, fmt.Errorf("engine search: %w", err)
	}
	if len(results.Results) == 0 {
		return Analysis{BestMove: results.BestMove}, ErrNoResult
	}

	best := results.Results[0]
	for _, r := range results.Results {
		if r.Depth > best.Depth {
			best = r
		}
	}

	return Analysis{
		BestMove: results.BestMove,
		Score:    best.Score,
		Mate:     best.Mate,
		Depth:    best.Depth,
	}, nil
}

func (o *uciOracle) Close() error {
	o.engine.Close()
	return nil
}
