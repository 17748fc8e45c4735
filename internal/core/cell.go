package core

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cell is one spreadsheet cell: the raw value as the data source returned it
// and, when the source supplied one, its pre-formatted text.
//
// Value is one of string, json.Number, float64, bool, time.Time or nil.
type Cell struct {
	Value     any
	Formatted string
	HasFormat bool
}

// TextCell returns a cell holding a plain string.
func TextCell(s string) Cell { return Cell{Value: s} }

// gvizDatePattern matches Google's Date(year, monthIndex, day[, h, m, s]) literal.
var gvizDatePattern = regexp.MustCompile(`^\s*Date\(\s*(-?\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*\d+\s*)*\)\s*$`)

// ParseGvizDate parses a Date(y,m,d) literal. The month is zero based.
func ParseGvizDate(s string) (time.Time, bool) {
	m := gvizDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC), true
}

var idShortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// FormatDate renders a date the way the site shows it, e.g. "14 Feb 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), idShortMonths[t.Month()-1], t.Year())
}

// Date reports whether the cell holds a date and returns it.
func (c Cell) Date() (time.Time, bool) {
	switch v := c.Value.(type) {
	case time.Time:
		return v, true
	case string:
		return ParseGvizDate(v)
	}
	return time.Time{}, false
}

// Text is the display value of the cell.
func (c Cell) Text() string {
	if t, ok := c.Date(); ok {
		return FormatDate(t)
	}
	if c.HasFormat {
		return c.Formatted
	}
	return c.RawText()
}

// RawText is the raw value in string form, ignoring any formatting.
func (c Cell) RawText() string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return FormatDate(v)
	default:
		return fmt.Sprint(v)
	}
}

// IsEmpty reports whether the cell is null or only whitespace.
func (c Cell) IsEmpty() bool {
	if c.Value == nil && !c.HasFormat {
		return true
	}
	return strings.TrimSpace(c.Text()) == ""
}
