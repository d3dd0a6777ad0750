package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/hailam/plychess/internal/board"
)

// Runner errors.
var (
	ErrBusy    = errors.New("engine: a search is already running")
	ErrPending = errors.New("engine: search still running")
)

// Runner runs at most one search at a time in the background so callers
// can keep serving input while the engine thinks.
type Runner struct {
	eng *Engine
	sem *semaphore.Weighted
	log zerolog.Logger
}

// NewRunner creates a runner for eng.
func NewRunner(eng *Engine, logger zerolog.Logger) *Runner {
	return &Runner{
		eng: eng,
		sem: semaphore.NewWeighted(1),
		log: logger.With().Str("component", "runner").Logger(),
	}
}

// Task is a search submitted to a Runner.
type Task struct {
	Side board.Side

	done    chan struct{}
	move    board.Move
	ok      bool
	err     error
	elapsed time.Duration
}

// Submit starts a search of b for side. The task owns b until Done
// reports true; the caller must not touch the board before that.
func (r *Runner) Submit(b *board.Board, side board.Side) (*Task, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("submit search for side %d: %w", side, board.ErrInvalidArgument)
	}
	if !r.sem.TryAcquire(1) {
		return nil, ErrBusy
	}

	t := &Task{Side: side, done: make(chan struct{})}
	r.log.Debug().Stringer("side", side).Int("depth", r.eng.Depth()).Msg("search submitted")

	go func() {
		start := time.Now()
		t.move, t.ok, t.err = r.eng.PickNextMove(b, side)
		t.elapsed = time.Since(start)

		// Free the slot first so a caller that saw Done can submit again.
		r.sem.Release(1)
		close(t.done)

		ev := r.log.Debug()
		if t.err != nil {
			ev = r.log.Error().Err(t.err)
		}
		ev.Stringer("move", t.move).Bool("found", t.ok).Dur("elapsed", t.elapsed).Msg("search finished")
	}()

	return t, nil
}

// Close waits for the running search, if any, to finish.
func (r *Runner) Close(ctx context.Context) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	r.sem.Release(1)
	return nil
}

// Done reports without blocking whether the search has finished.
func (t *Task) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome of a finished search, or ErrPending.
func (t *Task) Result() (board.Move, bool, error) {
	if !t.Done() {
		return board.NoMove, false, ErrPending
	}
	return t.move, t.ok, t.err
}

// Wait blocks until the search finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (board.Move, bool, error) {
	select {
	case <-t.done:
		return t.move, t.ok, t.err
	case <-ctx.Done():
		return board.NoMove, false, ctx.Err()
	}
}

// Elapsed returns how long a finished search took.
func (t *Task) Elapsed() time.Duration {
	if !t.Done() {
		return 0
	}
	return t.elapsed
}
