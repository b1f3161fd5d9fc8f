package callparse

import "strconv"

// WideColumn is one column of the wide view: "{role_en}_{turn_index}" and its text.
type WideColumn struct {
	Name string
	Text string
}

// Wide projects a turn sequence onto one row with a column per turn, e.g.
// client_1, employee_2. Columns keep turn order.
func Wide(turns []DialogueTurn) []WideColumn {
	cols := make([]WideColumn, 0, len(turns))
	index := make(map[string]int, len(turns))
	for _, t := range turns {
		name := string(t.RoleEN) + "_" + strconv.Itoa(t.TurnIndex)
		if i, ok := index[name]; ok {
			cols[i].Text = t.Text
			continue
		}
		index[name] = len(cols)
		cols = append(cols, WideColumn{Name: name, Text: t.Text})
	}
	return cols
}
