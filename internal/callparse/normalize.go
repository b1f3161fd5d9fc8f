package callparse

import "strings"

// NormalizeCell collapses a cell's text into one line: every line of every
// fragment is trimmed, blank lines are dropped and the rest joined by single spaces.
func NormalizeCell(c Cell) string {
	var parts []string
	for _, frag := range c.Fragments {
		for _, line := range strings.FieldsFunc(frag, isLineBreak) {
			if line = strings.TrimSpace(line); line != "" {
				parts = append(parts, line)
			}
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeText is NormalizeCell for plain text.
func NormalizeText(s string) string {
	return NormalizeCell(Cell{Fragments: []string{s}})
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
