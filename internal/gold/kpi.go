// Package gold implements the aggregation stage: cleaned client and purchase
// tables are joined and reduced into the four KPI tables published downstream.
package gold

import "github.com/mlavergne/stratify/pkg/tabular"

// KPI table names as they appear in the gold zone and the published store.
const (
	TableVolumesDay     = "volumes_day"
	TableVolumesMonth   = "volumes_month"
	TableCAByCountry    = "ca_by_country"
	TableMonthlyRevenue = "monthly_revenue"
)

// Table pairs a KPI table name with its frame.
type Table struct {
	Name  string
	Frame *tabular.Frame
}

// KPISet holds the four aggregates produced by one run.
type KPISet struct {
	VolumesDay     *tabular.Frame
	VolumesMonth   *tabular.Frame
	CAByCountry    *tabular.Frame
	MonthlyRevenue *tabular.Frame
}

// Tables returns the aggregates in their publication order.
func (s *KPISet) Tables() []Table {
	return []Table{
		{Name: TableVolumesDay, Frame: s.VolumesDay},
		{Name: TableVolumesMonth, Frame: s.VolumesMonth},
		{Name: TableCAByCountry, Frame: s.CAByCountry},
		{Name: TableMonthlyRevenue, Frame: s.MonthlyRevenue},
	}
}
