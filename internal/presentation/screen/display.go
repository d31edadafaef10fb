// Package screen renders the interactive timeline surface into the
// terminal's alternate screen buffer.
package screen

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/keepsake-labs/chronoline/internal/core/granularity"
	"github.com/keepsake-labs/chronoline/internal/core/placement"
	"github.com/keepsake-labs/chronoline/internal/presentation/rail"
	"github.com/keepsake-labs/chronoline/internal/util"
)

// Frame is everything one render pass needs. The zoom/pan state arrives as
// part of the frame so rendering stays a pure function of its input.
type Frame struct {
	Title       string
	Description string
	Ticks       []rail.Tick
	Placements  []placement.Placement // culled to the view window plus bleed
	Gran        granularity.Granularity
	ViewX       float64 // left edge of the viewport in content coordinates
	Zoom        float64
	FocusedID   string
	ShowYear    bool // transient indicator while panning
	Year        string
	Badges      map[string]string // event id → resolved thumbnail badge
	Empty       bool
	Status      string
}

// Display owns the alternate screen buffer and draws frames into it
type Display struct {
	cardW             int
	inAlternateScreen bool
}

// NewDisplay creates a terminal display. cardW is the card width in cells.
func NewDisplay(cardW int) *Display {
	return &Display{cardW: cardW}
}

// Size returns the terminal dimensions, with a classic 80x24 fallback
func (d *Display) Size() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// EnterAlternateScreen switches to the alternate screen buffer
func (d *Display) EnterAlternateScreen() {
	if d.inAlternateScreen {
		return
	}
	fmt.Print(util.EnterAltScreen)
	fmt.Print(util.ClearScreen)
	fmt.Print(util.ClearScrollback)
	fmt.Print(util.MoveCursorHome)
	fmt.Print(util.HideCursor)
	d.inAlternateScreen = true
}

// ExitAlternateScreen returns to the normal screen buffer
func (d *Display) ExitAlternateScreen() {
	if !d.inAlternateScreen {
		return
	}
	fmt.Print(util.ClearScreen)
	fmt.Print(util.MoveCursorHome)
	fmt.Print(util.ShowCursor)
	fmt.Print(util.ExitAltScreen)
	d.inAlternateScreen = false
}

// Render draws one frame. The cursor is homed rather than the screen
// cleared, so an unchanged cell never flickers.
func (d *Display) Render(f Frame) {
	width, height := d.Size()

	var lines []string
	lines = append(lines, d.headerLine(f, width))
	lines = append(lines, d.yearLine(f, width))

	if f.Empty {
		lines = append(lines, d.emptyState(width, height)...)
	} else {
		lines = append(lines, d.timelineLines(f, width)...)
	}

	footer := " h/l pan   +/- zoom   ←/→ focus   enter open   0 reset   r reload   q quit"
	statusRow := height - 1
	for len(lines) < statusRow-1 {
		lines = append(lines, "")
	}
	if f.Status != "" {
		lines = append(lines, util.ColorYellow+util.TruncateText(" "+f.Status, width)+util.ColorReset)
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, util.ColorDim+util.TruncateText(footer, width)+util.ColorReset)

	var sb strings.Builder
	sb.WriteString(util.MoveCursorHome)
	for i, line := range lines {
		if i >= height {
			break
		}
		sb.WriteString(line)
		sb.WriteString("\033[K")
		if i < height-1 {
			sb.WriteString("\r\n")
		}
	}
	sb.WriteString(util.ClearToScreenEnd)
	fmt.Print(sb.String())
}

func (d *Display) headerLine(f Frame, width int) string {
	left := " " + f.Title
	right := fmt.Sprintf("%s ticks  zoom %.1fx ", f.Gran, f.Zoom)
	gap := width - util.DisplayWidth(left) - util.DisplayWidth(right)
	if gap < 1 {
		return util.ColorBold + util.TruncateText(left, width) + util.ColorReset
	}
	return util.ColorBold + left + util.ColorReset + strings.Repeat(" ", gap) + util.ColorDim + right + util.ColorReset
}

// yearLine shows the transient current-year indicator while panning, and
// the timeline description otherwise
func (d *Display) yearLine(f Frame, width int) string {
	if f.ShowYear && f.Year != "" {
		return util.ColorInverse + util.CenterText("  "+f.Year+"  ", width) + util.ColorReset
	}
	if f.Description != "" {
		return util.ColorDim + util.TruncateText(" "+f.Description, width) + util.ColorReset
	}
	return ""
}

func (d *Display) emptyState(width, height int) []string {
	lines := make([]string, 0, height)
	pad := height/2 - 3
	for i := 0; i < pad; i++ {
		lines = append(lines, "")
	}
	lines = append(lines, util.CenterText("No memories on this timeline yet.", width))
	lines = append(lines, "")
	lines = append(lines, util.ColorBold+util.CenterText("Press 'n' to add the first one", width)+util.ColorReset)
	return lines
}

// timelineLines lays out the alternating card rows around the rail
func (d *Display) timelineLines(f Frame, width int) []string {
	const cardLines = 3

	above := newCanvas(width, cardLines)
	aboveConn := newCanvas(width, 1)
	railRow := newCanvas(width, 1)
	labels := newCanvas(width, 1)
	belowConn := newCanvas(width, 1)
	below := newCanvas(width, cardLines)

	for col := 0; col < width; col++ {
		railRow.set(0, col, '─')
	}

	for _, tick := range f.Ticks {
		col := int(tick.X - f.ViewX)
		if col < 0 || col >= width {
			continue
		}
		mark := '┼'
		if tick.Major {
			mark = '╂'
		}
		railRow.set(0, col, mark)
		labels.writeString(0, col-util.DisplayWidth(tick.Label)/2, tick.Label)
	}

	for _, p := range f.Placements {
		col := int(p.AdjustedX - f.ViewX)
		railRow.set(0, col, '●')

		card, conn := above, aboveConn
		if p.Side == placement.SideBelow {
			card, conn = below, belowConn
		}
		conn.set(0, col, '│')
		d.drawCard(card, f, p, col)
	}

	lines := make([]string, 0, 2*cardLines+4)
	lines = append(lines, above.lines()...)
	lines = append(lines, aboveConn.lines()...)
	lines = append(lines, util.ColorCyan+railRow.lines()[0]+util.ColorReset)
	lines = append(lines, util.ColorDim+labels.lines()[0]+util.ColorReset)
	lines = append(lines, belowConn.lines()...)
	lines = append(lines, below.lines()...)
	return lines
}

func (d *Display) drawCard(c *canvas, f Frame, p placement.Placement, anchorCol int) {
	left := anchorCol - d.cardW/2
	title := util.TruncateText(p.Event.Title, d.cardW)
	if p.Event.ID == f.FocusedID {
		title = "▸" + util.TruncateText(p.Event.Title, d.cardW-1)
	}
	c.writeString(0, left, title)
	c.writeString(1, left, p.Event.Timestamp.Format("Jan 02, 2006"))
	if badge := f.Badges[p.Event.ID]; badge != "" {
		c.writeString(2, left, badge)
	} else if p.Event.Description != "" {
		c.writeString(2, left, util.TruncateText(p.Event.Description, d.cardW))
	}
}
