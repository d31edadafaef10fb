package pdf

import (
	"strings"
	"unicode"
)

// maxFilenameRunes bounds the stem of a suggested filename
const maxFilenameRunes = 64

// SuggestedFilename derives a safe download name from a timeline title:
// anything outside [A-Za-z0-9-_] collapses to a single dash, the stem is
// truncated, and an empty result falls back to "timeline".
func SuggestedFilename(title string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range title {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
			lastDash = false
		case r == '-' || r == '_':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		}
	}

	stem := strings.Trim(sb.String(), "-")
	if runes := []rune(stem); len(runes) > maxFilenameRunes {
		stem = strings.Trim(string(runes[:maxFilenameRunes]), "-")
	}
	if stem == "" {
		stem = "timeline"
	}
	return stem + ".pdf"
}
