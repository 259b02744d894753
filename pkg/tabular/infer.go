package tabular

import "strings"

// Infer returns a typed copy of a string-cell frame, reversing the widening
// CSV transport applies. Blank cells become absent. A column whose present
// values all parse as numbers becomes a float64 column; every other column
// keeps its values as read.
func Infer(f *Frame) *Frame {
	numeric := make([]bool, len(f.Columns))
	for i := range f.Columns {
		numeric[i] = columnNumeric(f, i)
	}

	out := New(f.Columns...)
	for _, row := range f.Rows {
		typed := make([]Cell, len(f.Columns))
		for i, cell := range row {
			typed[i] = inferCell(cell, numeric[i])
		}
		out.Rows = append(out.Rows, typed)
	}
	return out
}

func columnNumeric(f *Frame, idx int) bool {
	present := false
	for _, row := range f.Rows {
		if blank(row[idx]) {
			continue
		}
		if _, ok := ParseNumber(row[idx]); !ok {
			return false
		}
		present = true
	}
	return present
}

func inferCell(cell Cell, numeric bool) Cell {
	if blank(cell) {
		return nil
	}
	if numeric {
		n, _ := ParseNumber(cell)
		return n
	}
	return cell
}

func blank(cell Cell) bool {
	if cell == nil {
		return true
	}
	s, ok := cell.(string)
	return ok && strings.TrimSpace(s) == ""
}
