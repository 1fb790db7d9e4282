package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Column is a fixed-width, left-aligned grid column.
type Column struct {
	Header string
	Width  int
}

// Grid renders rows in fixed-width columns with a rule under the header
// and no vertical rules. Every line starts with a border space and a
// padding space, the layout the report has always trimmed away.
type Grid struct {
	columns []Column
	rows    [][]string
}

// NewGrid creates an empty grid.
func NewGrid(columns ...Column) *Grid {
	return &Grid{columns: append([]Column(nil), columns...)}
}

// AddRow appends a row. Missing cells render blank; extra cells are dropped.
func (g *Grid) AddRow(cells ...string) {
	row := make([]string, len(g.columns))
	copy(row, cells)
	g.rows = append(g.rows, row)
}

// Lines renders the grid: header, rule, rows (a blank row when there are
// none), a closing rule and a trailing blank row.
func (g *Grid) Lines() []string {
	headers := make([]string, len(g.columns))
	for i, c := range g.columns {
		headers[i] = c.Header
	}
	lines := []string{g.row(headers), g.rule()}
	if len(g.rows) == 0 {
		lines = append(lines, g.row(nil))
	}
	for _, r := range g.rows {
		lines = append(lines, g.row(r))
	}
	return append(lines, g.rule(), g.row(nil))
}

func (g *Grid) row(cells []string) string {
	var b strings.Builder
	b.WriteByte(' ')
	for i, c := range g.columns {
		var value string
		if i < len(cells) {
			value = cells[i]
		}
		b.WriteByte(' ')
		b.WriteString(fit(value, c.Width))
		b.WriteString("  ")
	}
	return b.String()
}

func (g *Grid) rule() string {
	var b strings.Builder
	b.WriteByte('-')
	for _, c := range g.columns {
		b.WriteString(strings.Repeat("-", c.Width+3))
	}
	return b.String()
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = runewidth.Truncate(s, width, "")
	return runewidth.FillRight(s, width)
}

// trimLeft drops exactly n leading bytes from every line.
func trimLeft(lines []string, n int) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= n {
			out[i] = line[n:]
		}
	}
	return strings.Join(out, "\n")
}
