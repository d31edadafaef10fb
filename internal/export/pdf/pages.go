package pdf

import "math"

// PageWindow is one page's slice of the total content width
type PageWindow struct {
	Index int
	Start float64
	End   float64
}

// Width returns the window's spatial extent
func (w PageWindow) Width() float64 {
	return w.End - w.Start
}

// PageWindows slices contentWidth into contiguous, full-width windows.
// Every window is exactly pageWidth wide; the last one may extend past
// contentWidth so no page is ever narrower than the base page. At least
// one window is always produced.
func PageWindows(contentWidth, pageWidth float64) []PageWindow {
	count := int(math.Ceil(contentWidth / pageWidth))
	if count < 1 {
		count = 1
	}

	windows := make([]PageWindow, count)
	for i := 0; i < count; i++ {
		start := float64(i) * pageWidth
		windows[i] = PageWindow{Index: i, Start: start, End: start + pageWidth}
	}
	return windows
}
