package http

import (
	"strings"

	"donasi/internal/core"
	"donasi/internal/report"
)

// totalView is the data of a total card.
type totalView struct {
	ID          string
	Label       string
	Amount      string
	LastUpdated string
	Message     string
	URL         string
}

type donorsView struct {
	Names   []string
	Message string
}

type columnView struct {
	Key    string
	Label  string
	Amount bool
}

type rowView struct {
	Index int
	Cells []string
}

// tableView is the compact table of a report tab.
type tableView struct {
	Tab     report.Tab
	Title   string
	Columns []columnView
	Rows    []rowView
	Message string
}

type fieldView struct {
	Label    string
	Value    string
	Evidence *core.Evidence
}

// detailView lists every public column of one report row.
type detailView struct {
	Tab    report.Tab
	Title  string
	Index  int
	Fields []fieldView
}

type tabLink struct {
	Tab    report.Tab
	Title  string
	Active bool
}

func tabLinks(active report.Tab) []tabLink {
	out := make([]tabLink, 0, len(report.Tabs()))
	for _, t := range report.Tabs() {
		out = append(out, tabLink{Tab: t, Title: t.Title(), Active: t == active})
	}
	return out
}

// compactColumns picks the headers shown in a tab table. Columns marked
// [hide] or [private] are never shown. When the table has any of the tab's
// compact columns the view is limited to those, in that order.
func compactColumns(t core.Table, tab report.Tab, cols core.Columns) []columnView {
	amount := map[string]bool{}
	for _, name := range report.AmountColumns(tab, cols) {
		if h, ok := t.Column(name); ok {
			amount[h] = true
		}
	}
	view := func(h string) columnView {
		return columnView{Key: h, Label: core.StripMarkers(h), Amount: amount[h]}
	}

	var out []columnView
	for _, name := range report.CompactColumns(tab, cols) {
		if h, ok := t.Column(name); ok && !core.ParseHeader(h).Hidden() {
			out = append(out, view(h))
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, h := range t.Headers {
		if !core.ParseHeader(h).Hidden() {
			out = append(out, view(h))
		}
	}
	return out
}

// displayValue renders a cell, formatting amount columns as rupiah.
func displayValue(c core.Cell, amount bool, prefix string) string {
	if amount {
		if d, ok := c.Amount(); ok {
			return core.FormatRupiah(d, prefix)
		}
	}
	return c.Text()
}

func newTableView(t core.Table, tab report.Tab, cfg report.Config, message string) tableView {
	v := tableView{Tab: tab, Title: tab.Title(), Message: message}
	v.Columns = compactColumns(t, tab, cfg.Columns)
	for i, row := range t.Rows {
		rv := rowView{Index: i, Cells: make([]string, len(v.Columns))}
		for j, c := range v.Columns {
			rv.Cells[j] = displayValue(row[c.Key], c.Amount, cfg.CurrencyPrefix)
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}

// newDetailView lists every column of row i with markers stripped.
// Empty values are skipped except for the evidence column, which always
// renders so a missing Bukti shows as such.
func newDetailView(t core.Table, tab report.Tab, i int, cfg report.Config) (detailView, bool) {
	if i < 0 || i >= len(t.Rows) {
		return detailView{}, false
	}
	amount := map[string]bool{}
	for _, name := range report.AmountColumns(tab, cfg.Columns) {
		if h, ok := t.Column(name); ok {
			amount[h] = true
		}
	}

	v := detailView{Tab: tab, Title: tab.Title(), Index: i}
	row := t.Rows[i]
	for _, h := range t.Headers {
		hdr := core.ParseHeader(h)
		if isEvidenceColumn(hdr.Label, cfg.Columns) {
			ev := core.ClassifyEvidence(row[h].Text())
			v.Fields = append(v.Fields, fieldView{Label: hdr.Label, Value: ev.Value, Evidence: &ev})
			continue
		}
		value := displayValue(row[h], amount[h], cfg.CurrencyPrefix)
		if strings.TrimSpace(value) == "" {
			continue
		}
		v.Fields = append(v.Fields, fieldView{Label: hdr.Label, Value: value})
	}
	return v, true
}

// isEvidenceColumn matches any label mentioning the evidence column, such
// as "Bukti Transfer" or "Link Bukti".
func isEvidenceColumn(label string, cols core.Columns) bool {
	return cols.Bukti != "" && strings.Contains(strings.ToLower(label), strings.ToLower(cols.Bukti))
}

func newTotalView(id, label string, total report.Total, message string) totalView {
	return totalView{
		ID:          id,
		Label:       label,
		Amount:      total.Formatted,
		LastUpdated: total.LastUpdated,
		Message:     message,
		URL:         "/ui/" + id,
	}
}
