package callparse

import (
	"fmt"
	"strings"
)

// Assembler accumulates the header and dialogue of one document from its rows.
// An Assembler is single-use: create one per document.
type Assembler struct {
	loc        Locale
	header     CallHeader
	turns      []DialogueTurn
	transcript []string
	stats      Stats
}

// NewAssembler returns an Assembler using the given locale.
func NewAssembler(loc Locale) *Assembler {
	return &Assembler{loc: loc}
}

// Add classifies a row and folds it into the records.
func (a *Assembler) Add(row Row) RowKind {
	a.stats.Rows++
	kind := Classify(row, a.loc)
	switch kind {
	case RowBanner:
		a.stats.BannerRows++
		a.addBanner(row)
	case RowLabelValue:
		a.stats.LabelValueRows++
		a.addLabelValue(row)
	case RowDialogue:
		a.stats.DialogueRows++
		a.addDialogue(row)
	default:
		a.stats.IgnoredRows++
	}
	return kind
}

func (a *Assembler) addBanner(row Row) {
	fields := strings.Split(leadText(row, a.loc), a.loc.Separator)
	if len(fields) < 2 {
		return
	}
	raw := fields[1]
	a.header.CallDatetimeRaw = &raw
	a.header.CallDatetime = nil
	if t, ok := a.loc.ParseCallDatetime(raw); ok {
		a.header.CallDatetime = &t
	}
}

func (a *Assembler) addLabelValue(row Row) {
	label := strings.TrimRight(leadText(row, a.loc), ":")
	value := strings.TrimSpace(row.Cells[1].Text())
	a.header.Set(a.loc.TranslateLabel(label), value)
}

func (a *Assembler) addDialogue(row Row) {
	marker := leadText(row, a.loc)
	ts := strings.TrimSpace(row.Cells[1].Text())
	text := NormalizeCell(row.Cells[2])

	// Transcript lines are numbered from 0; turn indexes are assigned in Finish.
	a.transcript = append(a.transcript, fmt.Sprintf("%d. %s. %s: %s", len(a.transcript), ts, marker, text))
	a.turns = append(a.turns, DialogueTurn{
		RoleRU:         marker,
		RoleEN:         a.loc.RoleOf(marker),
		TimestampLocal: ts,
		Text:           text,
	})
}

// Finish derives the duration in seconds, the transcript and the turn indexes.
func (a *Assembler) Finish() Result {
	header := a.header
	if a.header.Extra != nil {
		header.Extra = make(map[string]string, len(a.header.Extra))
		for k, v := range a.header.Extra {
			header.Extra[k] = v
		}
		header.extraOrder = append([]string(nil), a.header.extraOrder...)
	}
	if header.DurationRaw != nil {
		header.DurationSeconds = DurationSeconds(header.DurationRaw)
	}
	header.Conversation = strings.Join(a.transcript, "\n")

	turns := make([]DialogueTurn, len(a.turns))
	for i, t := range a.turns {
		t.TurnIndex = i + 1
		turns[i] = t
	}
	return Result{Header: header, Turns: turns, Stats: a.stats}
}
