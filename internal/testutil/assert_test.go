package testutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestAssertionsPass(t *testing.T) {
	AssertEqual(t, []int{1, 2, 3}, []int{1, 2, 3})
	AssertEqual(t, "e2e4", "e2e4", "move %d", 1)
	AssertNoError(t, nil)
	AssertError(t, errors.New("boom"))
	AssertTrue(t, true)
	AssertFalse(t, false)

	base := errors.New("base")
	AssertErrorIs(t, fmt.Errorf("wrapped: %w", base), base)
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		args []any
		want string
	}{
		{nil, ""},
		{[]any{"plain"}, "plain: "},
		{[]any{"depth %d", 3}, "depth 3: "},
		{[]any{42}, "42: "},
	}

	for _, tc := range tests {
		if got := prefix(tc.args...); got != tc.want {
			t.Errorf("prefix(%v) = %q, want %q", tc.args, got, tc.want)
		}
	}
}
