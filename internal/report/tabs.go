package report

import (
	"donasi/internal/core"
)

// Tab is one tab of the donation report.
type Tab string

const (
	TabDonasi     Tab = "donasi"
	TabRealisasi  Tab = "realisasi"
	TabPenyaluran Tab = "penyaluran"
)

// Tabs returns the report tabs in display order.
func Tabs() []Tab {
	return []Tab{TabDonasi, TabRealisasi, TabPenyaluran}
}

// ParseTab maps a URL segment to a tab.
func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Title is the tab caption.
func (t Tab) Title() string {
	switch t {
	case TabDonasi:
		return "Donasi Masuk"
	case TabRealisasi:
		return "Realisasi"
	case TabPenyaluran:
		return "Penyaluran Donasi"
	}
	return string(t)
}

// SheetNames maps the report tabs to spreadsheet tab names.
type SheetNames struct {
	DonasiMasuk string
	Realisasi   string
	Penyaluran  string
}

// DefaultSheetNames returns the sheet names of the donation spreadsheet.
func DefaultSheetNames() SheetNames {
	return SheetNames{
		DonasiMasuk: "Donasi Masuk",
		Realisasi:   "Realisasi",
		Penyaluran:  "Penyaluran Donasi",
	}
}

// For returns the sheet a tab reads.
func (s SheetNames) For(t Tab) string {
	switch t {
	case TabRealisasi:
		return s.Realisasi
	case TabPenyaluran:
		return s.Penyaluran
	default:
		return s.DonasiMasuk
	}
}

// CompactColumns lists the columns the tab's table view shows. Columns the
// sheet does not have are skipped when rendering.
func CompactColumns(t Tab, cols core.Columns) []string {
	switch t {
	case TabRealisasi:
		return []string{cols.Tanggal, cols.Keperluan, cols.Nominal}
	case TabPenyaluran:
		return []string{cols.Tanggal, cols.Tempat, cols.QtyAlQuran}
	default:
		return []string{cols.Tanggal, cols.Donatur, cols.Nominal}
	}
}

// AmountColumns lists the columns of a tab rendered as rupiah.
func AmountColumns(t Tab, cols core.Columns) []string {
	switch t {
	case TabPenyaluran:
		return nil
	default:
		return []string{cols.Nominal, cols.Saldo}
	}
}
