package silver

import (
	"log/slog"
	"strings"

	"github.com/mlavergne/stratify/pkg/tabular"
)

// Cleaner normalizes raw frames. Field-level problems are absorbed (the value
// becomes absent) and logged; Clean never fails on row content.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a Cleaner with a stage-scoped logger.
func NewCleaner(logger *slog.Logger) *Cleaner {
	return &Cleaner{
		logger: logger.With("stage", "silver"),
	}
}

// Clean produces a new canonical frame from raw. The input frame is not
// mutated. Rules, in order: trim headers, drop fully empty rows, parse date
// columns, coerce numeric columns, normalize identity text (lowercasing
// emails), remove exact duplicates, drop rows missing a required identifier.
func (c *Cleaner) Clean(raw *tabular.Frame, kind EntityKind) *tabular.Frame {
	columns := make([]string, len(raw.Columns))
	for i, col := range raw.Columns {
		columns[i] = strings.TrimSpace(col)
	}

	out := tabular.New(columns...)

	required := requiredIndices(out, kind)
	coerced := 0
	dropped := 0
	seen := make(map[string]bool)

	for rowIdx, row := range raw.Rows {
		if emptyRow(row) {
			dropped++
			continue
		}

		clean := make([]tabular.Cell, len(columns))
		for i, col := range columns {
			var issues int
			clean[i], issues = c.cleanCell(col, row[i], rowIdx)
			coerced += issues
		}

		if missingRequired(clean, required) {
			c.logger.Debug("row dropped: missing required identifier",
				"kind", kind.String(),
				"row", rowIdx,
			)
			dropped++
			continue
		}

		key := rowKey(clean)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true

		out.Rows = append(out.Rows, clean)
	}

	c.logger.Info("frame cleaned",
		"kind", kind.String(),
		"rows_in", raw.Len(),
		"rows_out", out.Len(),
		"rows_dropped", dropped,
		"fields_coerced_absent", coerced,
	)

	return out
}

// cleanCell applies the column-driven rules to a single cell. The second
// return value counts coercion failures that produced an absent value.
func (c *Cleaner) cleanCell(col string, cell tabular.Cell, rowIdx int) (tabular.Cell, int) {
	switch {
	case isDateColumn(col):
		parsed, ok := tabular.ParseDate(cell)
		if !ok {
			if !absent(cell) {
				c.logger.Debug("unparsable date set absent", "column", col, "row", rowIdx)
				return nil, 1
			}
			return nil, 0
		}
		return parsed, 0

	case isNumericColumn(col):
		n, ok := tabular.ParseNumber(cell)
		if !ok {
			if !absent(cell) {
				c.logger.Debug("non-numeric value set absent", "column", col, "row", rowIdx)
				return nil, 1
			}
			return nil, 0
		}
		return n, 0

	case isTextColumn(col):
		s, ok := cell.(string)
		if !ok {
			return normalizeAbsent(cell), 0
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, 0
		}
		if isEmailColumn(col) {
			s = strings.ToLower(s)
		}
		return s, 0

	default:
		return normalizeAbsent(cell), 0
	}
}

func requiredIndices(f *tabular.Frame, kind EntityKind) []int {
	indices := make([]int, 0, 2)
	for _, col := range kind.RequiredIDs() {
		if idx := f.Column(col); idx >= 0 {
			indices = append(indices, idx)
		}
	}
	return indices
}

func missingRequired(row []tabular.Cell, required []int) bool {
	for _, idx := range required {
		if row[idx] == nil {
			return true
		}
	}
	return false
}

func emptyRow(row []tabular.Cell) bool {
	for _, cell := range row {
		if !absent(cell) {
			return false
		}
	}
	return true
}

func absent(cell tabular.Cell) bool {
	if cell == nil {
		return true
	}
	if s, ok := cell.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func normalizeAbsent(cell tabular.Cell) tabular.Cell {
	if absent(cell) {
		return nil
	}
	return cell
}

func rowKey(row []tabular.Cell) string {
	parts := make([]string, len(row))
	for i, cell := range row {
		parts[i] = tabular.Canonical(cell)
	}
	return strings.Join(parts, "\x1f")
}
