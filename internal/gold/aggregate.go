package gold

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlavergne/stratify/pkg/tabular"
)

// purchase is one aggregation-eligible purchase row. Amount may be absent;
// such rows count toward volumes but not sums.
type purchase struct {
	day       string
	month     string
	clientKey string
	amount    float64
	hasAmount bool
}

// Aggregate derives the four KPI tables from cleaned client and purchase
// frames. It is a pure function: identical inputs yield identical outputs,
// with every group emitted in ascending key order. Purchase rows lacking
// a date or client id are excluded, never fatal.
func Aggregate(clients, purchases *tabular.Frame) (*KPISet, error) {
	dateIdx := purchases.Column("date_achat")
	clientIdx := purchases.Column("id_client")
	if dateIdx < 0 || clientIdx < 0 {
		return nil, fmt.Errorf("purchases frame missing date_achat or id_client column")
	}
	amountIdx := purchases.Column("montant")

	countries := clientCountries(clients)

	rows := make([]purchase, 0, purchases.Len())
	for _, raw := range purchases.Rows {
		date, ok := tabular.ParseDate(raw[dateIdx])
		if !ok {
			continue
		}
		clientKey := cellKey(raw[clientIdx])
		if clientKey == "" {
			continue
		}

		p := purchase{
			day:       date.Format(tabular.DateLayout),
			month:     date.Format("2006-01"),
			clientKey: clientKey,
		}
		if amountIdx >= 0 {
			p.amount, p.hasAmount = tabular.ParseNumber(raw[amountIdx])
		}
		rows = append(rows, p)
	}

	return &KPISet{
		VolumesDay:     volumes(rows, "day", func(p purchase) string { return p.day }),
		VolumesMonth:   volumes(rows, "month", func(p purchase) string { return p.month }),
		CAByCountry:    revenueByCountry(rows, countries),
		MonthlyRevenue: monthlyRevenue(rows),
	}, nil
}

// clientCountries maps client id keys to their country. Clients without a
// country map to the empty string, which publishes as an absent value.
func clientCountries(clients *tabular.Frame) map[string]string {
	countries := make(map[string]string)

	idIdx := clients.Column("id_client")
	paysIdx := clients.Column("pays")
	if idIdx < 0 {
		return countries
	}

	for _, row := range clients.Rows {
		key := cellKey(row[idIdx])
		if key == "" {
			continue
		}
		if paysIdx >= 0 {
			if s, ok := row[paysIdx].(string); ok {
				countries[key] = strings.TrimSpace(s)
				continue
			}
		}
		countries[key] = ""
	}

	return countries
}

func volumes(rows []purchase, column string, keyOf func(purchase) string) *tabular.Frame {
	counts := make(map[string]int)
	for _, p := range rows {
		counts[keyOf(p)]++
	}

	frame := tabular.New(column, "volume")
	for _, key := range sortedKeys(counts) {
		frame.Append(key, float64(counts[key]))
	}
	return frame
}

// revenueByCountry left-joins purchases to clients on client id and sums
// amounts per country. Purchases without a matching client (or whose client
// has no country) land in an absent-country bucket, emitted last.
func revenueByCountry(rows []purchase, countries map[string]string) *tabular.Frame {
	sums := make(map[string]float64)
	var absentSum float64
	var hasAbsent bool

	for _, p := range rows {
		if !p.hasAmount {
			continue
		}
		country, matched := countries[p.clientKey]
		if !matched || country == "" {
			absentSum += p.amount
			hasAbsent = true
			continue
		}
		sums[country] += p.amount
	}

	frame := tabular.New("pays", "ca")
	for _, country := range sortedKeys(sums) {
		frame.Append(country, sums[country])
	}
	if hasAbsent {
		frame.Append(nil, absentSum)
	}
	return frame
}

// monthlyRevenue sums amounts per month, sorts periods ascending, and
// computes percent change against the prior period. The first period's
// change is 0 rather than absent, matching the published contract.
func monthlyRevenue(rows []purchase) *tabular.Frame {
	sums := make(map[string]float64)
	for _, p := range rows {
		if !p.hasAmount {
			continue
		}
		sums[p.month] += p.amount
	}

	frame := tabular.New("month", "revenue", "pct_change")
	months := sortedKeys(sums)
	for i, month := range months {
		pctChange := 0.0
		if i > 0 {
			prev := sums[months[i-1]]
			if prev != 0 {
				pctChange = (sums[month] - prev) / prev * 100
			}
		}
		frame.Append(month, sums[month], pctChange)
	}
	return frame
}

// cellKey renders a join key cell canonically so "1", 1, and 1.0 agree.
func cellKey(cell tabular.Cell) string {
	if n, ok := tabular.ParseNumber(cell); ok {
		return tabular.Canonical(n)
	}
	if s, ok := cell.(string); ok {
		return strings.TrimSpace(s)
	}
	return tabular.Canonical(cell)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
