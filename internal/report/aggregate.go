// Package report turns sheet tables into the figures shown on the site:
// totals, the donor list and the per-tab report rows. Every view loads
// through its own Task so one failing sheet never blanks another view.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"donasi/internal/core"
)

// Total is a summed money column.
type Total struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
	// LastUpdated is the latest date found in the sheet, if any.
	LastUpdated string `json:"last_updated,omitempty"`
	Rows        int    `json:"rows"`
}

// TotalSum sums column col over every row. Numbers count as they are;
// text is cleaned with core.ParseNominal and counts as zero when nothing
// numeric is left. A missing column sums to zero.
func TotalSum(t core.Table, col string) decimal.Decimal {
	sum := decimal.Zero
	h, ok := t.Column(col)
	if !ok {
		return sum
	}
	for _, r := range t.Rows {
		if d, ok := r[h].Amount(); ok {
			sum = sum.Add(d)
		}
	}
	return sum
}

// LatestDate returns the most recent date in column col.
func LatestDate(t core.Table, col string) (time.Time, bool) {
	var latest time.Time
	found := false
	h, ok := t.Column(col)
	if !ok {
		return latest, false
	}
	for _, r := range t.Rows {
		d, ok := r[h].Date()
		if !ok {
			continue
		}
		if !found || d.After(latest) {
			latest, found = d, true
		}
	}
	return latest, found
}

// DonorNames lists donor names in first-seen order. Names are trimmed and
// anonymous entries collapse to the anonymizer's label; uniqueness is
// case-sensitive after that.
func DonorNames(t core.Table, col string, anon core.Anonymizer) []string {
	names := []string{}
	h, ok := t.Column(col)
	if !ok {
		return names
	}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		name := anon.Display(strings.TrimSpace(r.Text(h)))
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// NewTotal sums col and stamps the latest date of dateCol.
func NewTotal(t core.Table, col, dateCol, prefix string) Total {
	sum := TotalSum(t, col)
	total := Total{
		Amount:    sum,
		Formatted: core.FormatRupiah(sum, prefix),
		Rows:      len(t.Rows),
	}
	if dateCol != "" {
		if d, ok := LatestDate(t, dateCol); ok {
			total.LastUpdated = core.FormatDate(d)
		}
	}
	return total
}

// EmptyTotal is the value a total view shows when loading fails.
func EmptyTotal(prefix string) Total {
	return Total{Amount: decimal.Zero, Formatted: core.FormatRupiah(decimal.Zero, prefix)}
}
