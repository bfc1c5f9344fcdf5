package savedb

import (
	"fmt"
	"strconv"
	"strings"
)

// Result is a materialized SELECT result. Values are kept as strings; the
// typed accessors parse on demand and fall back to zero values, matching
// the loose typing of the save file itself.
type Result struct {
	Columns []string
	Rows    [][]string
}

// Empty reports a successful query that matched nothing. Distinct from an
// execution error.
func (r *Result) Empty() bool { return len(r.Rows) == 0 }

// Col returns the index of a column, or -1.
func (r *Result) Col(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Str returns the cell at (row, column name), or "" when absent.
func (r *Result) Str(row int, name string) string {
	i := r.Col(name)
	if i < 0 || row < 0 || row >= len(r.Rows) {
		return ""
	}
	return r.Rows[row][i]
}

// Int parses the cell as an integer; save files store numbers in mixed
// formats, so a float-looking value is truncated rather than rejected.
func (r *Result) Int(row int, name string) int {
	s := strings.TrimSpace(r.Str(row, name))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// Float parses the cell as a float, zero on failure.
func (r *Result) Float(row int, name string) float64 {
	s := strings.TrimSpace(r.Str(row, name))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Markdown renders the result as a pipe table for prompt injection, capped
// at maxRows data rows. The empty result renders as a marker string the
// analyst can quote.
func (r *Result) Markdown(maxRows int) string {
	if r.Empty() {
		return "(no rows)"
	}
	rows := r.Rows
	truncated := false
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
		truncated = true
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(r.Columns, " | ") + " |\n")
	sep := make([]string, len(r.Columns))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strings.ReplaceAll(v, "|", "\\|")
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if truncated {
		fmt.Fprintf(&b, "...(%d more rows)\n", len(r.Rows)-maxRows)
	}
	return strings.TrimRight(b.String(), "\n")
}
