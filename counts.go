package videostats

import (
	"strconv"
	"strings"
)

// ParseCount converts a human-readable count like "1.5M", "234K" or "1,234"
// to an integer. Unparseable text degrades to 0 — stat fields default to
// zero rather than failing the whole extraction.
func ParseCount(text string) int {
	text = strings.ToUpper(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, " ", "")
	if text == "" {
		return 0
	}

	multiplier := 1.0
	switch text[len(text)-1] {
	case 'K':
		multiplier = 1e3
		text = text[:len(text)-1]
	case 'M':
		multiplier = 1e6
		text = text[:len(text)-1]
	case 'B':
		multiplier = 1e9
		text = text[:len(text)-1]
	}

	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return int(n * multiplier)
}
