package engine

import (
	"testing"

	"github.com/hailam/plychess/internal/board"
)

func TestEvaluateStartIsBalanced(t *testing.T) {
	if got := Evaluate(board.NewBoard()); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}
	if got := Material(board.NewBoard()); got != 0 {
		t.Errorf("Material(start) = %d, want 0", got)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		// Kings on the edge score no bonus and cancel out.
		{"kings only", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", 0},
		{"central knight", "4k3/8/8/8/3N4/8/8/4K3 w - - 0 1", 300 + 20},
		{"black rook on b7", "4k3/1r6/8/8/8/8/8/4K3 w - - 0 1", -(500 + 5)},
		{"queen for pawn", "4k3/8/2p5/8/8/8/8/Q3K3 w - - 0 1", 900 - (100 + 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, _, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := Evaluate(b); got != tc.want {
				t.Errorf("Evaluate() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCentreBonusSymmetric(t *testing.T) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if centreBonus[y][x] != centreBonus[7-y][x] || centreBonus[y][x] != centreBonus[y][7-x] {
				t.Fatalf("centre bonus not symmetric at %v", board.Pos(x, y))
			}
		}
	}
}

func TestScoreToString(t *testing.T) {
	tests := map[int]string{
		0:    "+0.00",
		35:   "+0.35",
		-100: "-1.00",
		1250: "+12.50",
	}
	for score, want := range tests {
		if got := ScoreToString(score); got != want {
			t.Errorf("ScoreToString(%d) = %q, want %q", score, got, want)
		}
	}
}
