package callparse

import "strings"

// Cell is the content of one table cell as its text fragments in document order.
// Line breaks and element boundaries inside the cell separate fragments.
type Cell struct {
	Fragments []string
}

// Text returns the fragments concatenated, as a browser would show them.
func (c Cell) Text() string {
	return strings.Join(c.Fragments, "")
}

// Joined returns the fragments joined by sep.
func (c Cell) Joined(sep string) string {
	return strings.Join(c.Fragments, sep)
}

// TextCell builds a single-fragment cell.
func TextCell(s string) Cell {
	return Cell{Fragments: []string{s}}
}

// Row is one table row.
type Row struct {
	Cells []Cell
}

// RowKind is the shape a row was classified as.
type RowKind int

const (
	RowIgnored RowKind = iota
	RowBanner
	RowLabelValue
	RowDialogue
)

func (k RowKind) String() string {
	switch k {
	case RowBanner:
		return "banner"
	case RowLabelValue:
		return "label_value"
	case RowDialogue:
		return "dialogue"
	default:
		return "ignored"
	}
}

// Classify decides the shape of a row. Banner wins over label/value, which
// wins over dialogue; anything else is ignored.
func Classify(row Row, loc Locale) RowKind {
	if len(row.Cells) == 0 {
		return RowIgnored
	}
	text := leadText(row, loc)
	switch {
	case strings.HasPrefix(text, loc.BannerMarker):
		return RowBanner
	case len(row.Cells) == 2 && strings.HasSuffix(text, ":"):
		return RowLabelValue
	case len(row.Cells) >= 3 && loc.isRoleMarker(text):
		return RowDialogue
	default:
		return RowIgnored
	}
}

// leadText is the first cell's fragments joined by the locale separator and trimmed.
func leadText(row Row, loc Locale) string {
	return strings.TrimSpace(row.Cells[0].Joined(loc.Separator))
}
