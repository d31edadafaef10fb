package screen

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// canvas is a fixed-size cell grid cards and rail glyphs are painted onto
// before a row is flattened into a terminal line. A zero cell renders as a
// space; wide runes occupy their following cell.
type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = make([]rune, w)
	}
	return &canvas{w: w, h: h, cells: cells}
}

func (c *canvas) set(row, col int, r rune) {
	if row < 0 || row >= c.h || col < 0 || col >= c.w {
		return
	}
	c.cells[row][col] = r
}

// writeString paints a string starting at col, clipping at both edges
func (c *canvas) writeString(row, col int, s string) {
	if row < 0 || row >= c.h {
		return
	}
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > c.w {
			return
		}
		if col >= 0 {
			c.cells[row][col] = r
			for k := 1; k < rw; k++ {
				c.cells[row][col+k] = -1 // continuation of a wide rune
			}
		}
		col += rw
	}
}

// lines flattens the canvas into printable rows
func (c *canvas) lines() []string {
	out := make([]string, c.h)
	for i := 0; i < c.h; i++ {
		var sb strings.Builder
		for _, r := range c.cells[i] {
			switch r {
			case 0:
				sb.WriteRune(' ')
			case -1:
				// covered by the preceding wide rune
			default:
				sb.WriteRune(r)
			}
		}
		out[i] = strings.TrimRight(sb.String(), " ")
	}
	return out
}
