// Package spar plays and checks the engine against an external UCI engine.
package spar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/hailam/plychess/internal/board"
	"github.com/hailam/plychess/internal/engine"
)

// ErrIllegalReply is returned when the external engine suggests a move our
// generator does not accept.
var ErrIllegalReply = errors.New("external engine move rejected")

// ErrDiverged is returned when replaying a line leaves our board and the
// pgn library's position disagreeing.
var ErrDiverged = errors.New("positions diverged")

// Referee compares the engine's choices with an external engine's.
type Referee struct {
	oracle Oracle
	eng    *engine.Engine
	depth  int
	log    zerolog.Logger
}

// NewReferee starts the UCI engine at path. Both engines search to depth.
func NewReferee(path string, depth int, logger zerolog.Logger) (*Referee, error) {
	oracle, err := DialEngine(path, EngineOptions{})
	if err != nil {
		return nil, err
	}
	return NewRefereeWithOracle(oracle, engine.NewEngine(depth, logger), depth, logger), nil
}

// NewRefereeWithOracle builds a referee around an existing oracle.
func NewRefereeWithOracle(oracle Oracle, eng *engine.Engine, depth int, logger zerolog.Logger) *Referee {
	return &Referee{
		oracle: oracle,
		eng:    eng,
		depth:  max(depth, 1),
		log:    logger.With().Str("component", "spar").Logger(),
	}
}

// Close stops the external engine.
func (r *Referee) Close() error {
	return r.oracle.Close()
}

// BestMove asks the external engine for side's move on b. The move is
// checked against our legal moves.
func (r *Referee) BestMove(b *board.Board, side board.Side) (board.Move, Analysis, error) {
	a, err := r.oracle.Analyse(b.FEN(side), r.depth)
	if err != nil {
		return board.NoMove, a, err
	}

	m, err := r.legalMove(b, side, a.BestMove)
	if err != nil {
		return board.NoMove, a, err
	}
	return m, a, nil
}

func (r *Referee) legalMove(b *board.Board, side board.Side, s string) (board.Move, error) {
	m, err := b.ParseMove(s)
	if err != nil {
		return board.NoMove, fmt.Errorf("%q: %w", s, ErrIllegalReply)
	}
	legal, err := b.LegalMoves(side)
	if err != nil {
		return board.NoMove, err
	}
	for _, x := range legal {
		if x == m {
			return m, nil
		}
	}
	return board.NoMove, fmt.Errorf("%q for %v: %w", s, side, ErrIllegalReply)
}

// Comparison is our move and the external engine's move for one position,
// each scored by the external engine from the mover's point of view.
type Comparison struct {
	Ours        board.Move
	Theirs      board.Move
	OursScore   int
	TheirsScore int
}

// Loss returns how many centipawns our move gives up against theirs.
func (c Comparison) Loss() int {
	return max(c.TheirsScore-c.OursScore, 0)
}

// Compare searches b for side with both engines and scores our choice.
func (r *Referee) Compare(b *board.Board, side board.Side) (Comparison, error) {
	var c Comparison

	ours, ok, err := r.eng.PickNextMove(b, side)
	if err != nil {
		return c, err
	}
	if !ok {
		return c, fmt.Errorf("no legal moves for %v: %w", side, board.ErrIllegalMove)
	}

	theirs, a, err := r.BestMove(b, side)
	if err != nil {
		return c, err
	}
	c.Ours, c.Theirs = ours, theirs
	c.TheirsScore = a.Centipawns()

	if ours == theirs {
		c.OursScore = c.TheirsScore
	} else {
		c.OursScore, err = r.scoreAfter(b, side, ours)
		if err != nil {
			return c, err
		}
	}

	r.log.Debug().
		Str("ours", ours.String()).
		Str("theirs", theirs.String()).
		Int("ours_cp", c.OursScore).
		Int("theirs_cp", c.TheirsScore).
		Msg("compared")
	return c, nil
}

// scoreAfter plays m and returns the external engine's score for side.
func (r *Referee) scoreAfter(b *board.Board, side board.Side, m board.Move) (int, error) {
	u, err := b.Apply(m)
	if err != nil {
		return 0, err
	}
	defer b.Revert(u)

	switch b.Status(side.Other()) {
	case board.Checkmate:
		return MateScore, nil
	case board.Stalemate:
		return 0, nil
	}

	a, err := r.oracle.Analyse(b.FEN(side.Other()), r.depth)
	if err != nil {
		return 0, err
	}
	return -a.Centipawns(), nil
}

// MatchResult records a game between the two engines.
type MatchResult struct {
	Moves  []board.Move
	SANs   []string
	Status board.GameStatus
	Winner board.Side // 0 unless checkmate
	FEN    string
}

// Match plays up to plies half-moves from the initial position with our
// engine as White and the external engine as Black.
func (r *Referee) Match(ctx context.Context, plies int) (*MatchResult, error) {
	b := board.NewBoard()
	side := board.White
	res := &MatchResult{}

	for ply := 0; ply < plies; ply++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if b.Status(side) != board.Ongoing {
			break
		}

		var m board.Move
		if side == board.White {
			var ok bool
			var err error
			m, ok, err = r.eng.PickNextMove(b, side)
			if err != nil {
				return res, err
			}
			if !ok {
				break
			}
		} else {
			var err error
			m, _, err = r.BestMove(b, side)
			if err != nil {
				return res, fmt.Errorf("ply %d: %w", ply+1, err)
			}
		}

		san := b.SAN(m)
		if _, err := b.Apply(m); err != nil {
			return res, err
		}
		res.Moves = append(res.Moves, m)
		res.SANs = append(res.SANs, san)
		r.log.Debug().Int("ply", ply+1).Str("san", san).Msg("match move")
		side = side.Other()
	}

	res.Status = b.Status(side)
	if res.Status == board.Checkmate {
		res.Winner = side.Other()
	}
	res.FEN = b.FEN(side)

	r.log.Info().Int("plies", len(res.Moves)).Stringer("status", res.Status).Msg("match finished")
	return res, nil
}

// ReplaySAN plays a SAN line from the initial position. SAN is resolved by
// the pgn library and each move is checked against our generator. It
// returns the board and the side to move.
func ReplaySAN(sans []string) (*board.Board, board.Side, error) {
	b := board.NewBoard()
	side := board.White
	pos := pgn.NewStartingPosition()

	for i, san := range sans {
		san = strings.TrimSuffix(strings.TrimSuffix(san, "+"), "#")

		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			return nil, 0, fmt.Errorf("move %d %q: %w", i+1, san, err)
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return nil, 0, fmt.Errorf("move %d %q: %w", i+1, san, err)
		}

		m, err := b.ParseMove(mvToUCI(mv))
		if err != nil {
			return nil, 0, fmt.Errorf("move %d %q: %w", i+1, san, err)
		}
		if err := playLegal(b, side, m); err != nil {
			return nil, 0, fmt.Errorf("move %d %q: %w", i+1, san, err)
		}
		side = side.Other()
	}

	if placement(b.FEN(side)) != placement(pos.ToFEN()) {
		return nil, 0, fmt.Errorf("%s vs %s: %w", b.FEN(side), pos.ToFEN(), ErrDiverged)
	}
	return b, side, nil
}

func playLegal(b *board.Board, side board.Side, m board.Move) error {
	legal, err := b.LegalMoves(side)
	if err != nil {
		return err
	}
	for _, x := range legal {
		if x == m {
			_, err := b.Apply(m)
			return err
		}
	}
	return fmt.Errorf("%v for %v: %w", m, side, board.ErrIllegalMove)
}

// placement returns the piece placement and side to move fields of fen.
func placement(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fen
	}
	return fields[0] + " " + fields[1]
}

// castleFlag marks castling moves in pgn.Mv.Flags.
const castleFlag = 4

// mvToUCI converts a pgn move to coordinate notation.
func mvToUCI(mv pgn.Mv) string {
	files := "abcdefgh"
	ranks := "12345678"

	toFile := files[mv.To%8]
	if mv.Flags == castleFlag {
		// The king lands on the g or c file whichever square encodes it.
		toFile = 'c'
		if mv.To > mv.From {
			toFile = 'g'
		}
	}

	s := string(files[mv.From%8]) + string(ranks[mv.From/8]) +
		string(toFile) + string(ranks[mv.To/8])

	switch mv.Promo {
	case pgn.PromoQueen:
		s += "q"
	case pgn.PromoRook:
		s += "r"
	case pgn.PromoBishop:
		s += "b"
	case pgn.PromoKnight:
		s += "n"
	}
	return s
}
