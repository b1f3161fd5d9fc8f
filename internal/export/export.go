// Package export renders parsed calls as CSV tables. Every table starts with
// a UTF-8 byte order mark so spreadsheet tools pick the right encoding.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

// TimeLayout is how call timestamps are written.
const TimeLayout = "2006-01-02 15:04:05"

const bom = "\ufeff"

// Call is one parsed document.
type Call struct {
	Name   string
	Result *callparse.Result
}

// mergedLead are the header columns that open every merged row.
var mergedLead = []string{
	callparse.FieldCallDatetimeRaw,
	callparse.FieldCallDatetime,
	callparse.FieldLineNumber,
	callparse.FieldCaller,
	callparse.FieldCallee,
	callparse.FieldDurationRaw,
	callparse.FieldDurationSeconds,
}

// Headers writes one row per call with the fixed header columns followed by
// every extra field seen across the calls.
func Headers(w io.Writer, calls []Call) error {
	cols := append(append([]string{}, callparse.HeaderColumns...), extraColumns(calls)...)
	return writeTable(w, cols, func(emit func([]string) error) error {
		for _, c := range calls {
			if err := emit(headerValues(c.Result.Header, cols)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Turns writes the dialogue of one call.
func Turns(w io.Writer, turns []callparse.DialogueTurn) error {
	return writeTable(w, callparse.TurnColumns, func(emit func([]string) error) error {
		for _, t := range turns {
			if err := emit(turnValues(t)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Merged writes one row per utterance across all calls, each row carrying its
// call's header: the leading header columns, the turn columns, then the
// extra fields and the transcript. Calls without dialogue contribute no rows.
func Merged(w io.Writer, calls []Call) error {
	trailing := append(extraColumns(calls), callparse.FieldConversation)
	cols := append(append(append([]string{}, mergedLead...), callparse.TurnColumns...), trailing...)

	return writeTable(w, cols, func(emit func([]string) error) error {
		for _, c := range calls {
			lead := headerValues(c.Result.Header, mergedLead)
			tail := headerValues(c.Result.Header, trailing)
			for _, t := range c.Result.Turns {
				row := make([]string, 0, len(cols))
				row = append(row, lead...)
				row = append(row, turnValues(t)...)
				row = append(row, tail...)
				if err := emit(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Wide writes one row per call with a column per turn ({role_en}_{turn_index}).
func Wide(w io.Writer, calls []Call) error {
	var cols []string
	seen := make(map[string]bool)
	views := make([]map[string]string, len(calls))
	for i, c := range calls {
		views[i] = make(map[string]string)
		for _, col := range callparse.Wide(c.Result.Turns) {
			if !seen[col.Name] {
				seen[col.Name] = true
				cols = append(cols, col.Name)
			}
			views[i][col.Name] = col.Text
		}
	}

	return writeTable(w, cols, func(emit func([]string) error) error {
		for _, v := range views {
			row := make([]string, len(cols))
			for j, name := range cols {
				row[j] = v[name]
			}
			if err := emit(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeTable(w io.Writer, cols []string, rows func(emit func([]string) error) error) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write columns: %w", err)
	}
	if err := rows(cw.Write); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func extraColumns(calls []Call) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, c := range calls {
		for _, k := range c.Result.Header.ExtraKeys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

func headerValues(h callparse.CallHeader, cols []string) []string {
	out := make([]string, len(cols))
	for i, name := range cols {
		v, _ := h.Get(name)
		out[i] = format(v)
	}
	return out
}

func turnValues(t callparse.DialogueTurn) []string {
	return []string{strconv.Itoa(t.TurnIndex), t.RoleRU, string(t.RoleEN), t.TimestampLocal, t.Text}
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.Format(TimeLayout)
	default:
		return fmt.Sprint(x)
	}
}
