// Package core holds the sheet data model: cells, rows and tables, header
// handling, rupiah amounts and the small value types shared by readers,
// aggregators and views.
package core

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrencyPrefix is prepended to formatted amounts.
const DefaultCurrencyPrefix = "Rp"

var (
	thousandsGrouping = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
	// decimalSuffix is an Indonesian decimal part: ",00", ",5" or ",-".
	decimalSuffix = regexp.MustCompile(`,(\d{1,2}|-+)\s*$`)
)

// ParseNominal reads an amount written the way people type it into the
// sheet ("Rp10.000", "150000", "1.5", "Rp 1.500.000,00", "Rp1.000,-").
// A trailing Indonesian decimal part is split off first. Then everything
// except digits, '.' and '-' is dropped and dots used as thousands
// separators are collapsed. ok is false when nothing numeric remains.
func ParseNominal(s string) (decimal.Decimal, bool) {
	var frac string
	if m := decimalSuffix.FindStringSubmatchIndex(s); m != nil {
		frac = s[m[2]:m[3]]
		s = s[:m[0]]
	}
	d, ok := parseWhole(s)
	if !ok || frac == "" || frac[0] == '-' {
		return d, ok
	}
	part := decimal.RequireFromString("0." + frac)
	if d.IsNegative() || strings.HasPrefix(strings.TrimSpace(s), "-") {
		return d.Sub(part), true
	}
	return d.Add(part), true
}

func parseWhole(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if thousandsGrouping.MatchString(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Amount returns the numeric value of a cell. Numbers are used as they are,
// text goes through ParseNominal.
func (c Cell) Amount() (decimal.Decimal, bool) {
	switch v := c.Value.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		return ParseNominal(v)
	case nil:
		if c.HasFormat {
			return ParseNominal(c.Formatted)
		}
	}
	return decimal.Zero, false
}

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount with Indonesian digit grouping, rounded to
// whole rupiah, e.g. "Rp160.000".
func FormatRupiah(d decimal.Decimal, prefix string) string {
	n := d.Round(0).IntPart()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + prefix + idPrinter.Sprintf("%d", n)
}
