package cli

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiPattern matches SGR escape sequences, which take no screen width.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table renders aligned columns. Cells may contain ANSI colour swatches.
type Table struct {
	headers []string
	rows    [][]string
	padding int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		padding: 2,
	}
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}

	sep := strings.Repeat(" ", t.padding)
	var b strings.Builder

	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " "))
		b.WriteString("\n")
	}

	writeLine(t.headers)

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w)
	}
	writeLine(dashes)

	for _, row := range t.rows {
		writeLine(row)
	}

	return b.String()
}

// visibleWidth returns the number of runes s occupies on screen.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiPattern.ReplaceAllString(s, ""))
}

// padRight pads s with spaces to reach width visible columns.
// Strings already at or beyond width are returned unchanged.
func padRight(s string, width int) string {
	w := visibleWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
