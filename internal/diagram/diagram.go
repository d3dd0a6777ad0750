// Package diagram draws board snapshots as SVG and PNG images.
package diagram

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/hailam/plychess/internal/board"
)

// Board colours.
const (
	LightSquare     = "#f0d9b5"
	DarkSquare      = "#b58863"
	LightHighlight  = "#f7ec74"
	DarkHighlight   = "#dac34b"
	backgroundColor = "#312e2b"
	coordinateColor = "#d0c8bc"
)

// DefaultSquareSize is the side of one square in pixels.
const DefaultSquareSize = 60

// renderScale is the oversampling factor used before downscaling PNGs.
const renderScale = 2

// Options control how a diagram is drawn.
type Options struct {
	SquareSize  int
	Flip        bool // black at the bottom
	Coordinates bool // file and rank labels around the board
	Highlights  []board.Position
}

func (o Options) squareSize() int {
	if o.SquareSize <= 0 {
		return DefaultSquareSize
	}
	return o.SquareSize
}

func (o Options) margin() int {
	if !o.Coordinates {
		return 0
	}
	return o.squareSize() / 3
}

// Size returns the width and height of the diagram in pixels.
func (o Options) Size() int {
	return 8*o.squareSize() + 2*o.margin()
}

// origin returns the top-left pixel of the square at pos.
func (o Options) origin(pos board.Position) (int, int) {
	col, row := pos.X, 7-pos.Y
	if o.Flip {
		col, row = 7-pos.X, pos.Y
	}
	sq := o.squareSize()
	return o.margin() + col*sq, o.margin() + row*sq
}

// WriteSVG writes the board as an SVG document.
func WriteSVG(w io.Writer, b *board.Board, opts Options) error {
	return render(w, b, opts, true)
}

func render(w io.Writer, b *board.Board, opts Options, labels bool) error {
	cw := &errWriter{w: w}
	size := opts.Size()
	sq := opts.squareSize()

	canvas := svg.New(cw)
	canvas.Startview(size, size, 0, 0, size, size)
	canvas.Rect(0, 0, size, size, "fill:"+backgroundColor)

	highlighted := make(map[board.Position]bool, len(opts.Highlights))
	for _, pos := range opts.Highlights {
		highlighted[pos] = true
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pos := board.Pos(x, y)
			px, py := opts.origin(pos)
			canvas.Rect(px, py, sq, sq, "fill:"+squareColor(pos, highlighted[pos]))

			if p := b.Get(pos); p != board.Empty {
				drawPiece(canvas, p, px, py, sq)
			}
		}
	}

	if labels && opts.Coordinates {
		drawCoordinates(canvas, opts)
	}

	canvas.End()
	return cw.err
}

func squareColor(pos board.Position, highlight bool) string {
	light := (pos.X+pos.Y)%2 == 1
	switch {
	case light && highlight:
		return LightHighlight
	case light:
		return LightSquare
	case highlight:
		return DarkHighlight
	default:
		return DarkSquare
	}
}

func drawCoordinates(canvas *svg.SVG, opts Options) {
	sq := opts.squareSize()
	m := opts.margin()
	fontSize := m * 2 / 3
	style := fmt.Sprintf("fill:%s;font-size:%dpx;font-family:sans-serif;text-anchor:middle", coordinateColor, fontSize)

	for i := 0; i < 8; i++ {
		file, rank := i, 7-i
		if opts.Flip {
			file, rank = 7-i, i
		}
		cx := m + i*sq + sq/2
		canvas.Text(cx, m+8*sq+m*3/4, string(rune('a'+file)), style)

		cy := m + i*sq + sq/2 + fontSize/3
		canvas.Text(m/2, cy, string(rune('1'+rank)), style)
	}
}

// RenderPNG rasterises the board. Shapes are drawn at twice the requested
// size and scaled down for smooth edges. Coordinate labels are not
// rasterised.
func RenderPNG(b *board.Board, opts Options) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(&buf, b, opts, false); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(&buf)
	if err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}

	size := opts.Size()
	renderSize := size * renderScale
	icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

	rgba := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	scanner := rasterx.NewScannerGV(renderSize, renderSize, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(renderSize, renderSize, scanner)
	icon.Draw(raster, 1.0)

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(out, out.Bounds(), rgba, rgba.Bounds(), draw.Src, nil)
	return out, nil
}

// WritePNG writes the rasterised board as a PNG image.
func WritePNG(w io.Writer, b *board.Board, opts Options) error {
	img, err := RenderPNG(b, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// errWriter remembers the first write error; svgo discards them.
type errWriter struct {
	w   io.Writer
	err error
}

func (cw *errWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	if err != nil {
		cw.err = err
	}
	return n, err
}
