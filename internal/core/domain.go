package core

import (
	"errors"
	"strings"
)

// Columns is the vocabulary of column labels the site knows about.
type Columns struct {
	Tanggal    string
	Donatur    string
	Nominal    string
	Saldo      string
	Keperluan  string
	QuranQty   string
	IqroQty    string
	Tempat     string
	QtyIqro    string
	QtyAlQuran string
	Bukti      string
}

// DefaultColumns returns the labels used by the donation spreadsheet.
func DefaultColumns() Columns {
	return Columns{
		Tanggal:    "Tanggal",
		Donatur:    "Donatur",
		Nominal:    "Nominal",
		Saldo:      "Saldo",
		Keperluan:  "Keperluan",
		QuranQty:   "Quran Qty",
		IqroQty:    "Iqro Qty",
		Tempat:     "Tempat",
		QtyIqro:    "Qty Iqro",
		QtyAlQuran: "Qty Al Quran",
		Bukti:      "Bukti",
	}
}

// Vocabulary lists every non-empty label.
func (c Columns) Vocabulary() []string {
	all := []string{c.Tanggal, c.Donatur, c.Nominal, c.Saldo, c.Keperluan, c.QuranQty,
		c.IqroQty, c.Tempat, c.QtyIqro, c.QtyAlQuran, c.Bukti}
	out := make([]string, 0, len(all))
	for _, v := range all {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DefaultAnonymousLabel is shown in place of anonymous donor names.
const DefaultAnonymousLabel = "Hamba Allah"

// DefaultAnonymousNames are the donor names treated as anonymous.
func DefaultAnonymousNames() []string {
	return []string{"nn", "anonim", "anonymous", ""}
}

// Anonymizer maps anonymous donor names to a fixed label.
type Anonymizer struct {
	aliases map[string]struct{}
	label   string
}

// NewAnonymizer builds an anonymizer; aliases are matched case-insensitively.
func NewAnonymizer(aliases []string, label string) Anonymizer {
	a := Anonymizer{aliases: make(map[string]struct{}, len(aliases)), label: label}
	for _, n := range aliases {
		a.aliases[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	return a
}

// Display returns the name to show for a raw donor entry.
func (a Anonymizer) Display(name string) string {
	name = strings.TrimSpace(name)
	if _, ok := a.aliases[strings.ToLower(name)]; ok {
		return a.label
	}
	return name
}

var (
	ErrUnknownSheet = errors.New("unknown sheet")
)
