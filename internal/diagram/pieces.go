package diagram

import (
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/plychess/internal/board"
)

// glyph is a piece silhouette in a 100x100 box: filled polygons plus
// circles given as {cx, cy, r}.
type glyph struct {
	polygons [][]int // x0, y0, x1, y1, ...
	circles  [][3]int
}

var glyphs = map[board.Kind]glyph{
	board.Pawn: {
		polygons: [][]int{
			{30, 86, 70, 86, 62, 62, 57, 46, 43, 46, 38, 62},
		},
		circles: [][3]int{{50, 32, 13}},
	},
	board.Knight: {
		polygons: [][]int{
			{28, 88, 76, 88, 72, 60, 70, 38, 60, 20, 50, 14, 46, 22, 36, 30, 24, 50, 28, 58, 40, 52, 48, 48, 38, 70, 28, 80},
		},
	},
	board.Bishop: {
		polygons: [][]int{
			{28, 88, 72, 88, 66, 78, 58, 74, 64, 56, 62, 40, 50, 26, 38, 40, 36, 56, 42, 74, 34, 78},
		},
		circles: [][3]int{{50, 19, 6}},
	},
	board.Rook: {
		polygons: [][]int{
			{25, 88, 75, 88, 75, 78, 68, 78, 66, 40, 72, 40, 72, 22, 64, 22, 64, 30, 56, 30, 56, 22,
				44, 22, 44, 30, 36, 30, 36, 22, 28, 22, 28, 40, 34, 40, 32, 78, 25, 78},
		},
	},
	board.Queen: {
		polygons: [][]int{
			{26, 88, 74, 88, 70, 76, 82, 34, 66, 56, 62, 26, 50, 52, 38, 26, 34, 56, 18, 34, 30, 76},
		},
		circles: [][3]int{{18, 31, 5}, {38, 23, 5}, {62, 23, 5}, {82, 31, 5}},
	},
	board.King: {
		polygons: [][]int{
			{26, 88, 74, 88, 70, 74, 80, 50, 66, 40, 50, 48, 34, 40, 20, 50, 30, 74},
			{46, 42, 54, 42, 54, 28, 62, 28, 62, 21, 54, 21, 54, 10, 46, 10, 46, 21, 38, 21, 38, 28, 46, 28},
		},
	},
}

func pieceStyle(p board.Piece, sq int) string {
	width := sq / 30
	if width < 1 {
		width = 1
	}
	if p.Side() == board.White {
		return fmt.Sprintf("fill:#ffffff;stroke:#1a1a1a;stroke-width:%d", width)
	}
	return fmt.Sprintf("fill:#1a1a1a;stroke:#e8e8e8;stroke-width:%d", width)
}

// drawPiece draws p inside the square whose top-left corner is (x, y).
func drawPiece(canvas *svg.SVG, p board.Piece, x, y, sq int) {
	g, ok := glyphs[p.Kind()]
	if !ok {
		return
	}
	style := pieceStyle(p, sq)
	scale := func(v int) int { return v * sq / 100 }

	for _, poly := range g.polygons {
		xs := make([]int, 0, len(poly)/2)
		ys := make([]int, 0, len(poly)/2)
		for i := 0; i+1 < len(poly); i += 2 {
			xs = append(xs, x+scale(poly[i]))
			ys = append(ys, y+scale(poly[i+1]))
		}
		canvas.Polygon(xs, ys, style)
	}
	for _, c := range g.circles {
		canvas.Circle(x+scale(c[0]), y+scale(c[1]), scale(c[2]), style)
	}
}
