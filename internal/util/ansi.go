package util

import "fmt"

// Terminal control sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorGray    = "\033[90m"
	ColorBold    = "\033[1m"
	ColorDim     = "\033[2m"
	ColorInverse = "\033[7m"

	ClearScreen       = "\033[2J"     // Clear entire screen
	ClearLine         = "\033[2K"     // Clear entire line
	ClearScrollback   = "\033[3J"     // Clear scrollback buffer
	ClearToScreenEnd  = "\033[J"      // Clear from cursor to end of screen
	ResetScrollRegion = "\033[r"      // Reset scroll region
	MoveCursorHome    = "\033[H"      // Move cursor to home position
	SaveCursor        = "\033[s"      // Save cursor position
	RestoreCursor     = "\033[u"      // Restore cursor position
	HideCursor        = "\033[?25l"   // Hide cursor
	ShowCursor        = "\033[?25h"   // Show cursor
	EnterAltScreen    = "\033[?1049h" // Switch to alternate screen buffer
	ExitAltScreen     = "\033[?1049l" // Return to normal screen buffer
)

// MoveCursor returns ANSI sequence to move cursor to specific position
func MoveCursor(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row, col)
}
