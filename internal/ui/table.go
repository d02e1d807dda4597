package ui

import (
	"strings"

	internalstrings "github.com/amonks/pv/internal/strings"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// TableBuilder collects rows and renders a formatted table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row []string) {
	builder.rows = append(builder.rows, row)
}

// Len returns the number of rows added so far.
func (builder *TableBuilder) Len() int {
	return len(builder.rows)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows as an aligned table.
// Columns are separated by two spaces; the last column is not padded.
func FormatTable(headers []string, rows [][]string) string {
	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = normalizeTableCell(h)
	}

	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = normalizeTableCell(cell)
		}
		body = append(body, cells)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = displayWidth(h)
	}
	for _, row := range body {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var out strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			out.WriteString(cell)
			if i == len(row)-1 {
				out.WriteByte('\n')
				continue
			}
			pad := 0
			if i < len(widths) {
				pad = widths[i] - displayWidth(cell)
			}
			out.WriteString(strings.Repeat(" ", pad+2))
		}
	}

	writeRow(header)
	for _, row := range body {
		writeRow(row)
	}
	return out.String()
}

// TruncateTableCell limits cell width, keeping ANSI styling intact.
func TruncateTableCell(value string) string {
	return TruncateWidth(normalizeTableCell(value), tableCellMaxWidth)
}

// TruncateWidth cuts value to at most width visible columns, ending in an
// ellipsis when anything was removed.
func TruncateWidth(value string, width int) string {
	if displayWidth(value) <= width {
		return value
	}
	if width <= len(tableCellEllipsis) {
		return tableCellEllipsis
	}
	return truncate.StringWithTail(value, uint(width), tableCellEllipsis)
}

func displayWidth(value string) int {
	return lipgloss.Width(value)
}

func normalizeTableCell(value string) string {
	return internalstrings.NormalizeWhitespace(value)
}
