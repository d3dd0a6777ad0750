package board

import "errors"

// Contract violations. None of these are recoverable runtime conditions;
// callers wrap them with context and test with errors.Is.
var (
	// ErrInvalidArgument reports a side that is neither +1 nor -1.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange reports a square outside the 8x8 grid.
	ErrOutOfRange = errors.New("position out of range")

	// ErrIllegalMove reports a move from an empty square, or a move that is
	// not legal for the side to move.
	ErrIllegalMove = errors.New("illegal move")
)
