package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DisplayWidth calculates the actual display width of a string, accounting
// for wide runes and emoji
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateText truncates text to the given display width, appending an
// ellipsis when anything was cut
func TruncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

// CenterText centers text within the given display width
func CenterText(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return TruncateText(text, width)
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-w)
}

// PadRight pads text with spaces up to the given display width
func PadRight(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}
