package tabular_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mlavergne/stratify/pkg/tabular"
)

func TestReadCSV(t *testing.T) {
	input := "id_client,nom,montant\n1,Alice,49.99\n2,Bob\n3,Carol,10,extra\n"

	frame, err := tabular.ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if len(frame.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(frame.Columns))
	}
	if frame.Len() != 3 {
		t.Fatalf("got %d rows, want 3", frame.Len())
	}
	if frame.Cell(1, "montant") != nil {
		t.Errorf("short row should pad with absent, got %v", frame.Cell(1, "montant"))
	}
	if got := frame.Cell(2, "montant"); got != "10" {
		t.Errorf("long row should truncate, got montant %v", got)
	}
}

func TestReadCSVNotTabular(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bare quote", "a,\"b\nc,d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tabular.ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, tabular.ErrNotTabular) {
				t.Errorf("got %v, want ErrNotTabular", err)
			}
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	frame := tabular.New("id_client", "date_inscription", "montant")
	frame.Append("1", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 49.99)
	frame.Append("2", nil, nil)

	data, err := tabular.WriteCSV(frame)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	back, err := tabular.ReadCSV(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}

	if got := back.Cell(0, "date_inscription"); got != "2024-03-15" {
		t.Errorf("date rendered as %v, want 2024-03-15", got)
	}
	if got := back.Cell(0, "montant"); got != "49.99" {
		t.Errorf("amount rendered as %v, want 49.99", got)
	}
	if got := back.Cell(1, "montant"); got != "" {
		t.Errorf("absent cell rendered as %q, want empty", got)
	}
}

func TestRecords(t *testing.T) {
	frame := tabular.New("pays", "ca_total", "date_achat")
	frame.Append("France", 49.99, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	frame.Append(nil, 0.0, nil)

	records := frame.Records()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["pays"] != "France" || records[0]["ca_total"] != 49.99 {
		t.Errorf("unexpected first record: %v", records[0])
	}
	if records[0]["date_achat"] != "2024-03-15" {
		t.Errorf("date should encode as string, got %v", records[0]["date_achat"])
	}
	if records[1]["pays"] != nil {
		t.Errorf("absent cell should encode as nil, got %v", records[1]["pays"])
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name     string
		cell     tabular.Cell
		expected string
	}{
		{"absent", nil, ""},
		{"string", "France", "France"},
		{"integer float", float64(120), "120"},
		{"fractional float", 49.99, "49.99"},
		{"date", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tabular.Canonical(tt.cell); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestInfer(t *testing.T) {
	raw, err := tabular.ReadCSV(strings.NewReader(strings.Join([]string{
		"day,volume,pays,ref",
		"2024-03-15,2,France,1",
		"2024-03-16,3,,x",
	}, "\n")))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	typed := tabular.Infer(raw)

	if got := typed.Cell(0, "volume"); got != float64(2) {
		t.Errorf("all-numeric column should type as float64, got %v", got)
	}
	if got := typed.Cell(0, "day"); got != "2024-03-15" {
		t.Errorf("non-numeric column should stay string, got %v", got)
	}
	if got := typed.Cell(1, "pays"); got != nil {
		t.Errorf("blank cell should become absent, got %v", got)
	}
	if got := typed.Cell(0, "ref"); got != "1" {
		t.Errorf("mixed column should stay string, got %v", got)
	}
	if raw.Cell(0, "volume") != "2" {
		t.Error("input frame must not be mutated")
	}
}

func TestInferRoundTrip(t *testing.T) {
	frame := tabular.New("pays", "ca")
	frame.Append("France", 49.99)
	frame.Append(nil, 12.5)

	data, err := tabular.WriteCSV(frame)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	back, err := tabular.ReadCSV(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}

	records := tabular.Infer(back).Records()
	if records[0]["ca"] != 49.99 || records[0]["pays"] != "France" {
		t.Errorf("unexpected first record: %v", records[0])
	}
	if records[1]["pays"] != nil {
		t.Errorf("absent cell should survive transport, got %v", records[1]["pays"])
	}
	if records[1]["ca"] != 12.5 {
		t.Errorf("numeric cell should survive transport, got %v", records[1]["ca"])
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		cell     tabular.Cell
		ok       bool
		expected string
	}{
		{"canonical", "2024-03-15", true, "2024-03-15"},
		{"datetime", "2024-03-15 10:30:00", true, "2024-03-15"},
		{"slashes", "2024/03/15", true, "2024-03-15"},
		{"french", "15/03/2024", true, "2024-03-15"},
		{"already time", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true, "2024-03-15"},
		{"garbage", "not-a-date", false, ""},
		{"absent", nil, false, ""},
		{"blank", "   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := tabular.ParseDate(tt.cell)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && parsed.Format(tabular.DateLayout) != tt.expected {
				t.Errorf("got %s, want %s", parsed.Format(tabular.DateLayout), tt.expected)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		cell     tabular.Cell
		ok       bool
		expected float64
	}{
		{"float string", "49.99", true, 49.99},
		{"integer string", "120", true, 120},
		{"padded", " 7 ", true, 7},
		{"already float", 3.5, true, 3.5},
		{"garbage", "abc", false, 0},
		{"absent", nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tabular.ParseNumber(tt.cell)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && n != tt.expected {
				t.Errorf("got %v, want %v", n, tt.expected)
			}
		})
	}
}
