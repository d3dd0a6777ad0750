// Package game keeps the state of one game between a human and the engine:
// the board, the undo history, whose turn it is and the engine's pending
// or finished suggestion.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hailam/plychess/internal/board"
	"github.com/hailam/plychess/internal/engine"
)

// ErrUncollected is returned by StartAI when a finished search has not
// been collected with PollAI or WaitAI.
var ErrUncollected = errors.New("engine result not collected")

// Record is one played move with the data needed to take it back.
type Record struct {
	Move   board.Move
	Unmove board.Unmove
	SAN    string
}

// Game is a game session. It is not safe for concurrent use; the only
// concurrency is the engine search it hands the board to.
type Game struct {
	board    *board.Board
	start    board.Side
	startFEN string
	history  []Record

	runner *engine.Runner
	task   *engine.Task

	suggestion    board.Move
	hasSuggestion bool

	selected    board.Position
	hasSelected bool

	log zerolog.Logger
}

// New creates a game at the standard initial position.
func New(runner *engine.Runner, logger zerolog.Logger) *Game {
	g := &Game{
		runner: runner,
		log:    logger.With().Str("component", "game").Logger(),
	}
	g.reset(board.NewBoard(), board.White)
	return g
}

func (g *Game) reset(b *board.Board, side board.Side) {
	g.board = b
	g.start = side
	g.startFEN = b.FEN(side)
	g.history = nil
	g.suggestion, g.hasSuggestion = board.NoMove, false
	g.hasSelected = false
}

// idle returns ErrBusy while a search runs. A finished search nobody
// collected is dropped: its move belongs to a board about to change.
func (g *Game) idle() error {
	if g.Thinking() {
		return engine.ErrBusy
	}
	if g.task != nil {
		g.log.Debug().Msg("uncollected engine result dropped")
		g.task = nil
	}
	return nil
}

// Reset starts a new game from the initial position.
func (g *Game) Reset() error {
	if err := g.idle(); err != nil {
		return err
	}
	g.reset(board.NewBoard(), board.White)
	g.log.Info().Msg("new game")
	return nil
}

// SetPosition starts a new game from a FEN position.
func (g *Game) SetPosition(fen string) error {
	if err := g.idle(); err != nil {
		return err
	}
	b, side, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	g.reset(b, side)
	g.log.Info().Str("fen", fen).Msg("position set")
	return nil
}

// Board returns the live board. While the engine is thinking the board
// belongs to the search and must not be read or written.
func (g *Game) Board() *board.Board {
	return g.board
}

// StartFEN returns the position the game started from.
func (g *Game) StartFEN() string {
	return g.startFEN
}

// FEN returns the current position.
func (g *Game) FEN() (string, error) {
	if g.Thinking() {
		return "", engine.ErrBusy
	}
	return g.board.FEN(g.Turn()), nil
}

// Turn returns the side to move.
func (g *Game) Turn() board.Side {
	if len(g.history)%2 == 0 {
		return g.start
	}
	return g.start.Other()
}

// TurnText returns "White to move." or "Black to move.".
func (g *Game) TurnText() string {
	return g.Turn().String() + " to move."
}

// History returns the played moves, oldest first.
func (g *Game) History() []Record {
	return g.history
}

// Moves returns the played moves in coordinate notation.
func (g *Game) Moves() []string {
	out := make([]string, len(g.history))
	for i, r := range g.history {
		out[i] = r.Move.String()
	}
	return out
}

// SANs returns the played moves in standard algebraic notation.
func (g *Game) SANs() []string {
	out := make([]string, len(g.history))
	for i, r := range g.history {
		out[i] = r.SAN
	}
	return out
}

// LegalMoves returns the legal moves of the side to move.
func (g *Game) LegalMoves() ([]board.Move, error) {
	if g.Thinking() {
		return nil, engine.ErrBusy
	}
	return g.board.LegalMoves(g.Turn())
}

// PerformMove plays m for the side to move. m must be one of its legal
// moves.
func (g *Game) PerformMove(m board.Move) error {
	if err := g.idle(); err != nil {
		return err
	}

	legal, err := g.board.LegalMoves(g.Turn())
	if err != nil {
		return err
	}
	found := false
	for _, x := range legal {
		if x == m {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%v is not legal for %v: %w", m, g.Turn(), board.ErrIllegalMove)
	}

	san := g.board.SAN(m)
	u, err := g.board.Apply(m)
	if err != nil {
		return err
	}
	g.history = append(g.history, Record{Move: m, Unmove: u, SAN: san})
	g.suggestion, g.hasSuggestion = board.NoMove, false
	g.hasSelected = false

	g.log.Debug().Str("move", m.String()).Str("san", san).Int("ply", len(g.history)).Msg("move played")
	return nil
}

// Rewind takes back the last move. It reports false when there is none.
func (g *Game) Rewind() (bool, error) {
	if err := g.idle(); err != nil {
		return false, err
	}
	if len(g.history) == 0 {
		return false, nil
	}

	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.board.Revert(last.Unmove)
	g.suggestion, g.hasSuggestion = board.NoMove, false
	g.hasSelected = false

	g.log.Debug().Str("move", last.Move.String()).Msg("move taken back")
	return true, nil
}

// StartAI hands the board to the engine to search for side. The previous
// search must have been collected.
func (g *Game) StartAI(side board.Side) error {
	if g.Thinking() {
		return engine.ErrBusy
	}
	if g.task != nil {
		return fmt.Errorf("poll or wait first: %w", ErrUncollected)
	}
	task, err := g.runner.Submit(g.board, side)
	if err != nil {
		return err
	}
	g.task = task
	g.suggestion, g.hasSuggestion = board.NoMove, false
	g.log.Info().Stringer("side", side).Msg("engine thinking")
	return nil
}

// Pending reports whether a search is running or finished but not yet
// collected.
func (g *Game) Pending() bool {
	return g.task != nil
}

// Thinking reports whether a search is still running.
func (g *Game) Thinking() bool {
	return g.task != nil && !g.task.Done()
}

// PollAI collects the result of a finished search without blocking. It
// returns true once no search is pending.
func (g *Game) PollAI() (bool, error) {
	if g.task == nil {
		return true, nil
	}
	if !g.task.Done() {
		return false, nil
	}
	return true, g.collect()
}

// WaitAI blocks until the running search, if any, finishes.
func (g *Game) WaitAI(ctx context.Context) error {
	if g.task == nil {
		return nil
	}
	if _, _, err := g.task.Wait(ctx); err != nil && !g.task.Done() {
		return err
	}
	return g.collect()
}

func (g *Game) collect() error {
	task := g.task
	g.task = nil

	m, ok, err := task.Result()
	if err != nil {
		return fmt.Errorf("engine search: %w", err)
	}
	if ok {
		g.suggestion, g.hasSuggestion = m, true
	}
	g.log.Info().Str("move", m.String()).Bool("found", ok).Dur("elapsed", task.Elapsed()).Msg("engine done")
	return nil
}

// Suggestion returns the engine's move from the last finished search.
func (g *Game) Suggestion() (board.Move, bool) {
	return g.suggestion, g.hasSuggestion
}

// ExecuteSuggestion plays the engine's suggested move.
func (g *Game) ExecuteSuggestion() error {
	if !g.hasSuggestion {
		return fmt.Errorf("no engine move to play: %w", board.ErrIllegalMove)
	}
	return g.PerformMove(g.suggestion)
}

// AIStatus returns "Computing..." while the engine thinks, "Done!" when a
// suggestion is waiting and "" otherwise.
func (g *Game) AIStatus() string {
	switch {
	case g.Thinking():
		return "Computing..."
	case g.hasSuggestion:
		return "Done!"
	default:
		return ""
	}
}

// Status reports checkmate, stalemate or an ongoing game for the side to
// move.
func (g *Game) Status() (board.GameStatus, error) {
	if g.Thinking() {
		return board.Ongoing, engine.ErrBusy
	}
	return g.board.Status(g.Turn()), nil
}

// Result describes a finished game, or returns "" while it is ongoing.
func (g *Game) Result() (string, error) {
	status, err := g.Status()
	if err != nil {
		return "", err
	}
	switch status {
	case board.Checkmate:
		return g.Turn().Other().String() + " wins by checkmate!", nil
	case board.Stalemate:
		return "Draw by stalemate", nil
	}
	return "", nil
}

// Select marks pos as selected if it holds a piece.
func (g *Game) Select(pos board.Position) (bool, error) {
	if g.Thinking() {
		return false, engine.ErrBusy
	}
	if !g.board.Occupied(pos) {
		g.hasSelected = false
		return false, nil
	}
	g.selected, g.hasSelected = pos, true
	return true, nil
}

// Selected returns the selected square.
func (g *Game) Selected() (board.Position, bool) {
	return g.selected, g.hasSelected
}

// Replay starts a new game from fen (the initial position when empty)
// and plays moves given in coordinate notation.
func (g *Game) Replay(fen string, moves []string) error {
	var err error
	if fen == "" {
		err = g.Reset()
	} else {
		err = g.SetPosition(fen)
	}
	if err != nil {
		return err
	}

	for i, s := range moves {
		m, err := g.board.ParseMove(s)
		if err != nil {
			return fmt.Errorf("replay move %d %q: %w", i+1, s, err)
		}
		if err := g.PerformMove(m); err != nil {
			return fmt.Errorf("replay move %d %q: %w", i+1, s, err)
		}
	}
	return nil
}
