package core

import (
	"strconv"
	"strings"
)

// Row maps a column header to its cell.
type Row map[string]Cell

// Text returns the display value of the named column, or "".
func (r Row) Text(col string) string {
	if c, ok := r[col]; ok {
		return c.Text()
	}
	return ""
}

// Table is a parsed sheet.
type Table struct {
	Sheet   string
	Headers []string
	Rows    []Row
}

// SyntheticHeader names a column that has no label.
func SyntheticHeader(i int) string { return "col_" + strconv.Itoa(i) }

// NewTable builds a table from headers and raw records. Blank headers get a
// synthetic name and do not count as designated columns; a record is kept
// only when at least one designated column holds a value. When no header is
// designated every column counts.
func NewTable(sheet string, headers []string, records [][]Cell) Table {
	names := make([]string, len(headers))
	designated := make([]bool, len(headers))
	anyDesignated := false
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			names[i] = SyntheticHeader(i)
			continue
		}
		names[i] = h
		designated[i] = true
		anyDesignated = true
	}
	if !anyDesignated {
		for i := range designated {
			designated[i] = true
		}
	}

	t := Table{Sheet: sheet, Headers: names, Rows: make([]Row, 0, len(records))}
	for _, rec := range records {
		row := make(Row, len(names))
		keep := false
		for i, name := range names {
			var c Cell
			if i < len(rec) {
				c = rec[i]
			}
			row[name] = c
			if designated[i] && !c.IsEmpty() {
				keep = true
			}
		}
		if keep {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// Column finds the header whose label, markers stripped, equals name.
// An exact match wins over a case-insensitive one.
func (t Table) Column(name string) (string, bool) {
	for _, h := range t.Headers {
		if StripMarkers(h) == name {
			return h, true
		}
	}
	for _, h := range t.Headers {
		if strings.EqualFold(StripMarkers(h), name) {
			return h, true
		}
	}
	return "", false
}

// Text returns the display value of a logical column for row i.
func (t Table) Text(i int, name string) string {
	if i < 0 || i >= len(t.Rows) {
		return ""
	}
	h, ok := t.Column(name)
	if !ok {
		return ""
	}
	return t.Rows[i].Text(h)
}

// Records returns every row as header to display value.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for _, h := range t.Headers {
			m[h] = r.Text(h)
		}
		out = append(out, m)
	}
	return out
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }
