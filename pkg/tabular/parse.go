package tabular

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
}

// ParseDate parses a cell into a calendar date. Returns false when the cell
// is absent or does not match any accepted layout.
func ParseDate(c Cell) (time.Time, bool) {
	switch v := c.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a cell into a float64. Returns false when the cell is
// absent or not numeric.
func ParseNumber(c Cell) (float64, bool) {
	switch v := c.(type) {
	case float64:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
