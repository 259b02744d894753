// Package tabular provides an in-memory tabular frame for pipeline stages.
// Cells are loosely typed: nil marks an absent value; present values are
// string, float64, or time.Time (calendar dates). Frames move between stages
// as CSV byte streams and enter the published store as JSON records.
package tabular

import (
	"strconv"
	"time"
)

// Cell is a single frame value. Nil means absent.
type Cell any

// DateLayout is the canonical rendering for date cells.
const DateLayout = "2006-01-02"

// Frame is an ordered set of rows sharing one header.
type Frame struct {
	Columns []string
	Rows    [][]Cell
}

// New creates an empty frame with the given columns.
func New(columns ...string) *Frame {
	return &Frame{
		Columns: columns,
		Rows:    make([][]Cell, 0),
	}
}

// Append adds a row. The row must match the frame's column count.
func (f *Frame) Append(row ...Cell) {
	f.Rows = append(f.Rows, row)
}

// Column returns the index of the named column, or -1 if absent.
func (f *Frame) Column(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column name); nil if the column is absent.
func (f *Frame) Cell(row int, name string) Cell {
	idx := f.Column(name)
	if idx < 0 {
		return nil
	}
	return f.Rows[row][idx]
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Records converts the frame to JSON-encodable documents, one per row.
// Absent cells become nil, dates their canonical string form.
func (f *Frame) Records() []map[string]any {
	records := make([]map[string]any, 0, len(f.Rows))
	for _, row := range f.Rows {
		record := make(map[string]any, len(f.Columns))
		for i, col := range f.Columns {
			record[col] = encodeCell(row[i])
		}
		records = append(records, record)
	}
	return records
}

func encodeCell(c Cell) any {
	if t, ok := c.(time.Time); ok {
		return t.Format(DateLayout)
	}
	return c
}

// Canonical renders a cell as a string for keys, dedup, and CSV output.
// Absent cells render empty; numbers use their shortest exact form.
func Canonical(c Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(DateLayout)
	default:
		return ""
	}
}
