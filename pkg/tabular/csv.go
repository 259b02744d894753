package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrNotTabular indicates the input could not be read as tabular data at all.
// Per-field problems never produce this; it is reserved for structural failures.
var ErrNotTabular = errors.New("input is not tabular")

// ReadCSV decodes a CSV byte stream into a frame of string cells.
// Rows shorter than the header are padded with absent cells; longer rows are
// truncated. An empty stream or a malformed structure returns ErrNotTabular.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotTabular, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNotTabular)
	}

	frame := New(records[0]...)
	width := len(frame.Columns)

	for _, record := range records[1:] {
		row := make([]Cell, width)
		for i := range width {
			if i < len(record) {
				row[i] = record[i]
			}
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

// WriteCSV encodes the frame as a CSV byte stream with a header row.
func WriteCSV(f *Frame) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(f.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(f.Columns))
	for _, row := range f.Rows {
		for i := range f.Columns {
			record[i] = Canonical(row[i])
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
