package gold_test

import (
	"math"
	"strings"
	"testing"

	"github.com/mlavergne/stratify/internal/gold"
	"github.com/mlavergne/stratify/pkg/tabular"
)

func mustRead(t *testing.T, csv string) *tabular.Frame {
	t.Helper()
	frame, err := tabular.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return frame
}

func TestAggregateSingleClientScenario(t *testing.T) {
	clients := mustRead(t, strings.Join([]string{
		"id_client,nom,pays",
		"1,Alice,France",
	}, "\n"))
	purchases := mustRead(t, strings.Join([]string{
		"id_achat,id_client,date_achat,montant",
		"1,1,2024-03-15,49.99",
	}, "\n"))

	set, err := gold.Aggregate(clients, purchases)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if set.VolumesDay.Len() != 1 {
		t.Fatalf("volumes_day has %d rows, want 1", set.VolumesDay.Len())
	}
	if got := set.VolumesDay.Cell(0, "day"); got != "2024-03-15" {
		t.Errorf("day = %v, want 2024-03-15", got)
	}
	if got := set.VolumesDay.Cell(0, "volume"); got != float64(1) {
		t.Errorf("volume = %v, want 1", got)
	}

	if set.VolumesMonth.Len() != 1 || set.VolumesMonth.Cell(0, "month") != "2024-03" {
		t.Errorf("unexpected volumes_month: %+v", set.VolumesMonth)
	}

	if set.CAByCountry.Len() != 1 {
		t.Fatalf("ca_by_country has %d rows, want 1", set.CAByCountry.Len())
	}
	if got := set.CAByCountry.Cell(0, "pays"); got != "France" {
		t.Errorf("pays = %v, want France", got)
	}
	if got := set.CAByCountry.Cell(0, "ca"); got != 49.99 {
		t.Errorf("ca = %v, want 49.99", got)
	}

	if set.MonthlyRevenue.Len() != 1 {
		t.Fatalf("monthly_revenue has %d rows, want 1", set.MonthlyRevenue.Len())
	}
	if got := set.MonthlyRevenue.Cell(0, "pct_change"); got != 0.0 {
		t.Errorf("first period pct_change = %v, want 0", got)
	}
}

func TestAggregateMissingColumns(t *testing.T) {
	clients := mustRead(t, "id_client,pays\n1,France")
	purchases := mustRead(t, "id_achat,montant\n1,49.99")

	if _, err := gold.Aggregate(clients, purchases); err == nil {
		t.Error("purchases without date_achat/id_client should fail")
	}
}

func TestAggregateSkipsUnusableRows(t *testing.T) {
	clients := mustRead(t, "id_client,pays\n1,France")
	purchases := mustRead(t, strings.Join([]string{
		"id_achat,id_client,date_achat,montant",
		"1,1,2024-03-15,10",
		"2,1,not-a-date,10",
		"3,,2024-03-15,10",
	}, "\n"))

	set, err := gold.Aggregate(clients, purchases)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if got := set.VolumesDay.Cell(0, "volume"); got != float64(1) {
		t.Errorf("volume = %v, want 1 (unusable rows excluded)", got)
	}
}

func TestAggregateAbsentAmountCountsTowardVolume(t *testing.T) {
	clients := mustRead(t, "id_client,pays\n1,France")
	purchases := mustRead(t, strings.Join([]string{
		"id_achat,id_client,date_achat,montant",
		"1,1,2024-03-15,49.99",
		"2,1,2024-03-15,",
	}, "\n"))

	set, err := gold.Aggregate(clients, purchases)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if got := set.VolumesDay.Cell(0, "volume"); got != float64(2) {
		t.Errorf("volume = %v, want 2", got)
	}
	if got := set.CAByCountry.Cell(0, "ca"); got != 49.99 {
		t.Errorf("ca = %v, want 49.99 (absent amount excluded from sum)", got)
	}
	if got := set.MonthlyRevenue.Cell(0, "revenue"); got != 49.99 {
		t.Errorf("revenue = %v, want 49.99", got)
	}
}

func TestAggregateUnmatchedClientBucket(t *testing.T) {
	clients := mustRead(t, strings.Join([]string{
		"id_client,pays",
		"1,France",
		"2,",
	}, "\n"))
	purchases := mustRead(t, strings.Join([]string{
		"id_achat,id_client,date_achat,montant",
		"1,1,2024-03-15,10",
		"2,2,2024-03-15,20",
		"3,99,2024-03-15,30",
	}, "\n"))

	set, err := gold.Aggregate(clients, purchases)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if set.CAByCountry.Len() != 2 {
		t.Fatalf("ca_by_country has %d rows, want 2", set.CAByCountry.Len())
	}
	if got := set.CAByCountry.Cell(0, "pays"); got != "France" {
		t.Errorf("first row pays = %v, want France", got)
	}
	last := set.CAByCountry.Len() - 1
	if got := set.CAByCountry.Cell(last, "pays"); got != nil {
		t.Errorf("absent-country bucket pays = %v, want nil", got)
	}
	if got := set.CAByCountry.Cell(last, "ca"); got != 50.0 {
		t.Errorf("absent-country bucket ca = %v, want 50", got)
	}
}

func TestAggregateMonthlyPctChange(t *testing.T) {
	clients := mustRead(t, "id_client,pays\n1,France")
	purchases := mustRead(t, strings.Join([]string{
		"id_achat,id_client,date_achat,montant",
		"1,1,2024-01-10,100",
		"2,1,2024-02-10,150",
		"3,1,2024-03-10,75",
	}, "\n"))

	set, err := gold.Aggregate(clients, purchases)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if set.MonthlyRevenue.Len() != 3 {
		t.Fatalf("monthly_revenue has %d rows, want 3", set.MonthlyRevenue.Len())
	}

	tests := []struct {
		row     int
		month   string
		revenue float64
		change  float64
	}{
		{0, "2024-01", 100, 0},
		{1, "2024-02", 150, 50},
		{2, "2024-03", 75, -50},
	}

	for _, tt := range tests {
		if got := set.MonthlyRevenue.Cell(tt.row, "month"); got != tt.month {
			t.Errorf("row %d month = %v, want %s", tt.row, got, tt.month)
		}
		if got := set.MonthlyRevenue.Cell(tt.row, "revenue"); got != tt.revenue {
			t.Errorf("row %d revenue = %v, want %v", tt.row, got, tt.revenue)
		}
		change, _ := set.MonthlyRevenue.Cell(tt.row, "pct_change").(float64)
		if math.Abs(change-tt.change) > 1e-9 {
			t.Errorf("row %d pct_change = %v, want %v", tt.row, change, tt.change)
		}
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	clients := mustRead(t, strings.Join([]string{
		"id_client,pays",
		"1,Spain",
		"2,France",
	}, "\n"))
	purchases := mustRead(t, strings.Join([]string{
		"id_achat,id_client,date_achat,montant",
		"1,1,2024-03-16,10",
		"2,2,2024-03-15,20",
	}, "\n"))

	first, err := gold.Aggregate(clients, purchases)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	second, err := gold.Aggregate(clients, purchases)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if first.VolumesDay.Cell(0, "day") != "2024-03-15" {
		t.Errorf("days should sort ascending, got %v first", first.VolumesDay.Cell(0, "day"))
	}
	if first.CAByCountry.Cell(0, "pays") != "France" {
		t.Errorf("countries should sort ascending, got %v first", first.CAByCountry.Cell(0, "pays"))
	}

	for _, pair := range [][2]*tabular.Frame{
		{first.VolumesDay, second.VolumesDay},
		{first.CAByCountry, second.CAByCountry},
		{first.MonthlyRevenue, second.MonthlyRevenue},
	} {
		a, err := tabular.WriteCSV(pair[0])
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		b, err := tabular.WriteCSV(pair[1])
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if string(a) != string(b) {
			t.Error("repeated aggregation produced different output")
		}
	}
}

func TestKPISetTableOrder(t *testing.T) {
	set := &gold.KPISet{
		VolumesDay:     tabular.New("day", "volume"),
		VolumesMonth:   tabular.New("month", "volume"),
		CAByCountry:    tabular.New("pays", "ca"),
		MonthlyRevenue: tabular.New("month", "revenue", "pct_change"),
	}

	names := make([]string, 0, 4)
	for _, table := range set.Tables() {
		names = append(names, table.Name)
	}

	expected := []string{
		gold.TableVolumesDay,
		gold.TableVolumesMonth,
		gold.TableCAByCountry,
		gold.TableMonthlyRevenue,
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("table %d = %s, want %s", i, names[i], name)
		}
	}
}
