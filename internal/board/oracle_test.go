package board_test

import (
	"slices"
	"testing"

	"github.com/freeeve/pgn/v3"
	"github.com/notnil/chess"

	"github.com/hailam/plychess/internal/board"
)

// oraclePositions cover castling, en passant, promotion and pins.
var oraclePositions = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
}

func ourMoves(t *testing.T, fen string) []string {
	t.Helper()
	b, side, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	moves, err := b.LegalMoves(side)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	slices.Sort(out)
	return out
}

func TestLegalMovesMatchNotnil(t *testing.T) {
	for _, fen := range oraclePositions {
		opt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("chess.FEN(%q): %v", fen, err)
		}
		game := chess.NewGame(opt)

		var want []string
		for _, m := range game.ValidMoves() {
			s := m.S1().String() + m.S2().String()
			switch m.Promo() {
			case chess.Queen:
				s += "q"
			case chess.Rook:
				s += "r"
			case chess.Bishop:
				s += "b"
			case chess.Knight:
				s += "n"
			}
			want = append(want, s)
		}
		slices.Sort(want)

		if got := ourMoves(t, fen); !slices.Equal(got, want) {
			t.Errorf("%s:\n got %v\nwant %v", fen, got, want)
		}
	}
}

func TestLegalMovesMatchPGN(t *testing.T) {
	const files, ranks = "abcdefgh", "12345678"

	for _, fen := range oraclePositions {
		key, err := pgn.PackedPositionFromFEN(fen)
		if err != nil {
			t.Fatalf("PackedPositionFromFEN(%q): %v", fen, err)
		}
		packed, err := pgn.ParsePackedPosition(key)
		if err != nil {
			t.Fatal(err)
		}
		pos := packed.Unpack()
		if pos == nil {
			t.Fatalf("unpack %q failed", fen)
		}

		var want []string
		for _, mv := range pgn.GenerateLegalMoves(pos) {
			s := string(files[mv.From%8]) + string(ranks[mv.From/8]) +
				string(files[mv.To%8]) + string(ranks[mv.To/8])
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
			want = append(want, s)
		}
		slices.Sort(want)

		if got := ourMoves(t, fen); !slices.Equal(got, want) {
			t.Errorf("%s:\n got %v\nwant %v", fen, got, want)
		}
	}
}

// A SAN game replayed through freeeve/pgn and through our SAN parser must
// reach the same FEN placement, side and castling rights.
func TestReplayMatchesPGN(t *testing.T) {
	line := []string{"e4", "c5", "Nf3", "d6", "d4", "cxd4", "Nxd4", "Nf6", "Nc3", "a6",
		"Be3", "e5", "Nb3", "Be6", "f3", "Be7", "Qd2", "O-O", "O-O-O", "Nbd7", "g4", "b5"}

	pos := pgn.NewStartingPosition()
	b := board.NewBoard()
	side := board.White

	for _, san := range line {
		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			t.Fatalf("pgn.ParseSAN(%s): %v", san, err)
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			t.Fatalf("pgn.ApplyMove(%s): %v", san, err)
		}

		m, err := b.ParseSAN(san, side)
		if err != nil {
			t.Fatalf("ParseSAN(%s): %v", san, err)
		}
		if _, err := b.Apply(m); err != nil {
			t.Fatal(err)
		}
		side = side.Other()
	}

	want := fenPrefix(pos.ToFEN(), 3)
	got := fenPrefix(b.FEN(side), 3)
	if got != want {
		t.Errorf("FEN after replay = %q, want %q", got, want)
	}
}

// fenPrefix returns the first n space separated FEN fields.
func fenPrefix(fen string, n int) string {
	end := 0
	for i := 0; i < n; i++ {
		next := end
		for next < len(fen) && fen[next] != ' ' {
			next++
		}
		end = next + 1
		if end > len(fen) {
			return fen
		}
	}
	return fen[:end-1]
}
