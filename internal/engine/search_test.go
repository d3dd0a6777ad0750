package engine

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/plychess/internal/board"
)

// minimax is a plain recursive reference search with the same leaf and
// terminal rules as the engine.
func minimax(t *testing.T, b *board.Board, side board.Side, depth int) int {
	t.Helper()
	if depth == 0 {
		return Evaluate(b)
	}
	moves, err := b.LegalMoves(side)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) == 0 {
		return Evaluate(b)
	}

	best := Infinity
	if side == board.White {
		best = -Infinity
	}
	for _, m := range moves {
		u, err := b.Apply(m)
		if err != nil {
			t.Fatal(err)
		}
		v := minimax(t, b, side.Other(), depth-1)
		b.Revert(u)
		if (side == board.White && v > best) || (side == board.Black && v < best) {
			best = v
		}
	}
	return best
}

func mustParseFEN(t *testing.T, fen string) (*board.Board, board.Side) {
	t.Helper()
	b, side, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b, side
}

func TestPickNextMoveInvalidSide(t *testing.T) {
	b := board.NewBoard()
	for _, side := range []board.Side{0, 2} {
		_, _, err := PickNextMove(b, side)
		if !errors.Is(err, board.ErrInvalidArgument) {
			t.Errorf("side %d: err = %v, want ErrInvalidArgument", side, err)
		}
	}
}

func TestPickNextMoveNoLegalMoves(t *testing.T) {
	for _, fen := range []string{
		"R6k/6pp/8/8/8/8/8/K7 b - - 0 1",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	} {
		b, side := mustParseFEN(t, fen)
		m, ok, err := PickNextMove(b, side)
		if err != nil {
			t.Fatal(err)
		}
		if ok || m != board.NoMove {
			t.Errorf("%s: got move %v, want none", fen, m)
		}
	}
}

// At depth 1 the choice is the first move whose resulting position
// evaluates best for the mover.
func TestDepthOneIsBestStaticReply(t *testing.T) {
	b := board.NewBoard()
	eng := NewEngine(1, zerolog.Nop())

	m, ok, err := eng.PickNextMove(b, board.White)
	if err != nil || !ok {
		t.Fatalf("PickNextMove: %v %v", ok, err)
	}

	score := func(m board.Move) int {
		u, err := b.Apply(m)
		if err != nil {
			t.Fatal(err)
		}
		defer b.Revert(u)
		return Evaluate(b)
	}

	chosen := score(m)
	moves, _ := b.LegalMoves(board.White)
	for _, other := range moves {
		if s := score(other); s > chosen {
			t.Errorf("%v scores %d, better than chosen %v with %d", other, s, m, chosen)
		}
	}

	again, _, _ := eng.PickNextMove(b, board.White)
	if again != m {
		t.Errorf("repeated search chose %v, first chose %v", again, m)
	}
}

func TestSearchMatchesMinimax(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{"start", board.StartFEN, 3},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2},
		{"black to move", "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 2 2", 3},
		{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4},
		{"promotion race", "8/P6k/8/8/8/8/6Kp/8 b - - 0 1", 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, side := mustParseFEN(t, tc.fen)
			before := b.Clone()

			var scores []int
			eng := NewEngine(tc.depth, zerolog.Nop())
			eng.OnInfo = func(info SearchInfo) {
				scores = append(scores, info.Score)
				if len(info.PV) == 0 || len(info.PV) > info.Depth {
					t.Errorf("depth %d: PV length %d", info.Depth, len(info.PV))
				}
			}

			m, ok, err := eng.PickNextMove(b, side)
			if err != nil || !ok {
				t.Fatalf("PickNextMove: %v %v", ok, err)
			}
			if !b.Equal(before) {
				t.Fatalf("board changed by search:%v", b)
			}
			if len(scores) != tc.depth {
				t.Fatalf("got %d iterations, want %d", len(scores), tc.depth)
			}

			for d := 1; d <= tc.depth; d++ {
				if want := minimax(t, b, side, d); scores[d-1] != want {
					t.Errorf("depth %d: score %d, minimax %d", d, scores[d-1], want)
				}
			}

			// The chosen move must achieve the root value.
			u, err := b.Apply(m)
			if err != nil {
				t.Fatal(err)
			}
			got := minimax(t, b, side.Other(), tc.depth-1)
			b.Revert(u)
			if got != scores[tc.depth-1] {
				t.Errorf("chosen %v scores %d, root value %d", m, got, scores[tc.depth-1])
			}
		})
	}
}

func TestPrincipalVariationIsPlayable(t *testing.T) {
	b := board.NewBoard()
	eng := NewEngine(4, zerolog.Nop())

	var pv []board.Move
	eng.OnInfo = func(info SearchInfo) { pv = info.PV }
	if _, _, err := eng.PickNextMove(b, board.White); err != nil {
		t.Fatal(err)
	}

	side := board.White
	var undo []board.Unmove
	for _, m := range pv {
		moves, _ := b.LegalMoves(side)
		found := false
		for _, x := range moves {
			found = found || x == m
		}
		if !found {
			t.Fatalf("PV move %v is not legal in line %v", m, pv)
		}
		u, _ := b.Apply(m)
		undo = append(undo, u)
		side = side.Other()
	}
	for i := len(undo) - 1; i >= 0; i-- {
		b.Revert(undo[i])
	}
}

func TestWinsHangingQueen(t *testing.T) {
	tests := []struct {
		fen  string
		want board.Move
	}{
		{"4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1", board.NewMove(board.D2, board.D5)},
		{"4k3/8/8/3Q4/8/8/3r4/4K3 b - - 0 1", board.NewMove(board.D2, board.D5)},
	}

	for _, tc := range tests {
		b, side := mustParseFEN(t, tc.fen)
		m, ok, err := NewEngine(3, zerolog.Nop()).PickNextMove(b, side)
		if err != nil || !ok {
			t.Fatalf("PickNextMove: %v %v", ok, err)
		}
		if m != tc.want {
			t.Errorf("%s: chose %v, want %v", tc.fen, m, tc.want)
		}
	}
}

func TestSearchRecordsKillers(t *testing.T) {
	eng := NewEngine(3, zerolog.Nop())
	if _, _, err := eng.PickNextMove(board.NewBoard(), board.White); err != nil {
		t.Fatal(err)
	}

	kt := eng.searcher.Killers()
	if len(kt.At(0)) != 0 {
		t.Errorf("root killers recorded: %v", kt.At(0))
	}
	if len(kt.At(1))+len(kt.At(2)) == 0 {
		t.Error("no killers recorded below the root")
	}
	for ply := 0; ply <= 3; ply++ {
		if len(kt.At(ply)) > KillerCapacity {
			t.Errorf("ply %d holds %d killers", ply, len(kt.At(ply)))
		}
	}
}

func TestKillerTable(t *testing.T) {
	kt := NewKillerTable(4)
	a := board.NewMove(board.E2, board.E4)
	b := board.NewMove(board.D2, board.D4)
	c := board.NewMove(board.G1, board.F3)

	kt.Add(1, a)
	kt.Add(1, a)
	kt.Add(1, b)
	if got := kt.At(1); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("At(1) = %v, want [%v %v]", got, a, b)
	}

	// Oldest evicted.
	kt.Add(1, c)
	if got := kt.At(1); len(got) != 2 || got[0] != b || got[1] != c {
		t.Fatalf("At(1) = %v, want [%v %v]", got, b, c)
	}

	kt.Add(9, a)
	if kt.At(9) != nil || kt.At(-1) != nil {
		t.Error("out of range plies should be ignored")
	}

	kt.Clear()
	if len(kt.At(1)) != 0 {
		t.Error("Clear kept killers")
	}
}

func TestPromote(t *testing.T) {
	a := board.NewMove(board.A2, board.A3)
	b := board.NewMove(board.B2, board.B3)
	c := board.NewMove(board.C2, board.C3)
	moves := []board.Move{a, b, c}

	if !promote(moves, c) {
		t.Fatal("promote did not find move")
	}
	if moves[0] != c || moves[1] != a || moves[2] != b {
		t.Errorf("promote order = %v", moves)
	}
	if promote(moves, board.NoMove) {
		t.Error("promote found absent move")
	}
}

func TestPerft(t *testing.T) {
	eng := NewEngine(1, zerolog.Nop())
	b := board.NewBoard()
	for depth, want := range []uint64{1, 20, 400, 8902} {
		got, err := eng.Perft(b, board.White, depth)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Perft(%d) = %d, want %d", depth, got, want)
		}
	}

	if _, err := eng.Perft(b, 0, 2); !errors.Is(err, board.ErrInvalidArgument) {
		t.Errorf("Perft with invalid side: %v", err)
	}
}
