// Package render prints solver traces as fixed-precision tables. Rounding
// happens here only; the engine keeps full precision.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"q.log/twophase/simplex"
)

// Number formats v with precision decimals, printing -0 as 0.
func Number(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Trim(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}

// Caption describes a trace entry in one line.
func Caption(res *simplex.Result, e simplex.TraceEntry, precision int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase %d", e.Phase)
	if e.IsInitial() {
		b.WriteString(", initial tableau")
	} else {
		fmt.Fprintf(&b, ", iteration %d", e.Iteration)
	}
	fmt.Fprintf(&b, ", %s = %s", objectiveName(e.Phase), Number(e.Objective, precision))
	switch {
	case e.HasPivot():
		fmt.Fprintf(&b, ", %s enters, %s leaves",
			res.Columns[e.Entering].Label, res.Columns[e.Basis[e.LeavingRow]].Label)
	case e.Entering != simplex.NoIndex:
		fmt.Fprintf(&b, ", %s is unbounded", res.Columns[e.Entering].Label)
	}
	return b.String()
}

// Table renders the tableau of one trace entry.
func Table(res *simplex.Result, e simplex.TraceEntry, precision int) *table.Table {
	headers := []string{"basis"}
	for _, col := range res.Columns {
		headers = append(headers, col.Label)
	}
	headers = append(headers, "RHS")

	rows, cols := e.Tableau.Dims()
	data := make([][]string, rows)
	for r := range rows {
		label := objectiveName(e.Phase)
		if r < len(e.Basis) {
			label = res.Columns[e.Basis[r]].Label
		}
		data[r] = append(data[r], label)
		for c := range cols {
			data[r] = append(data[r], Number(e.Tableau.At(r, c), precision))
		}
	}

	pivot := lipgloss.NewStyle().Bold(true).Reverse(true)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			// data rows start at 0; col 0 is the basis label
			if e.HasPivot() && row == e.LeavingRow && col == e.Entering+1 {
				return pivot
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// Trace writes every entry of res followed by a summary line.
func Trace(w io.Writer, res *simplex.Result, precision int) error {
	for _, e := range res.Trace {
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", Caption(res, e, precision), Table(res, e, precision)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, Summary(res, precision))
	return err
}

// Summary is the status line of a result.
func Summary(res *simplex.Result, precision int) string {
	if !res.IsOptimal() {
		return fmt.Sprintf("%s: %s", res.Status, res.Message)
	}
	parts := make([]string, len(res.Values))
	for j, v := range res.Values {
		parts[j] = fmt.Sprintf("%s = %s", res.Columns[j].Label, Number(v, precision))
	}
	return fmt.Sprintf("%s: z = %s, %s", res.Status, Number(res.Objective, precision), strings.Join(parts, ", "))
}

func objectiveName(p simplex.Phase) string {
	if p == simplex.PhaseOne {
		return "w"
	}
	return "z"
}
