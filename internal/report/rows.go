package report

import (
	"donasi/internal/core"
)

type DonasiMasukRow struct {
	Tanggal string `json:"tanggal"`
	Donatur string `json:"donatur"`
	Nominal string `json:"nominal"`
	Saldo   string `json:"saldo"`
}

type RealisasiRow struct {
	Tanggal   string `json:"tanggal"`
	Keperluan string `json:"keperluan"`
	QuranQty  string `json:"quranQty"`
	IqroQty   string `json:"iqroQty"`
	Nominal   string `json:"nominal"`
	Saldo     string `json:"saldo"`
}

type PenyaluranRow struct {
	Tanggal    string `json:"tanggal"`
	Tempat     string `json:"tempat"`
	QtyIqro    string `json:"qtyIqro"`
	QtyAlQuran string `json:"qtyAlQuran"`
	Bukti      string `json:"bukti"`
}

// publicText is the display value of a logical column, or "" when the
// column is missing or marked private.
func publicText(t core.Table, i int, name string) string {
	h, ok := t.Column(name)
	if !ok || core.ParseHeader(h).Private() {
		return ""
	}
	return t.Rows[i].Text(h)
}

func anyFilled(vals ...string) bool {
	for _, v := range vals {
		if v != "" {
			return true
		}
	}
	return false
}

// MapDonasiMasuk keeps rows with a date, donor or amount.
func MapDonasiMasuk(t core.Table, cols core.Columns) []DonasiMasukRow {
	out := []DonasiMasukRow{}
	for i := range t.Rows {
		r := DonasiMasukRow{
			Tanggal: publicText(t, i, cols.Tanggal),
			Donatur: publicText(t, i, cols.Donatur),
			Nominal: publicText(t, i, cols.Nominal),
			Saldo:   publicText(t, i, cols.Saldo),
		}
		if anyFilled(r.Tanggal, r.Donatur, r.Nominal) {
			out = append(out, r)
		}
	}
	return out
}

// MapRealisasi keeps rows with a date, purpose or amount.
func MapRealisasi(t core.Table, cols core.Columns) []RealisasiRow {
	out := []RealisasiRow{}
	for i := range t.Rows {
		r := RealisasiRow{
			Tanggal:   publicText(t, i, cols.Tanggal),
			Keperluan: publicText(t, i, cols.Keperluan),
			QuranQty:  publicText(t, i, cols.QuranQty),
			IqroQty:   publicText(t, i, cols.IqroQty),
			Nominal:   publicText(t, i, cols.Nominal),
			Saldo:     publicText(t, i, cols.Saldo),
		}
		if anyFilled(r.Tanggal, r.Keperluan, r.Nominal) {
			out = append(out, r)
		}
	}
	return out
}

// MapPenyaluran keeps rows with a date or place.
func MapPenyaluran(t core.Table, cols core.Columns) []PenyaluranRow {
	out := []PenyaluranRow{}
	for i := range t.Rows {
		r := PenyaluranRow{
			Tanggal:    publicText(t, i, cols.Tanggal),
			Tempat:     publicText(t, i, cols.Tempat),
			QtyIqro:    publicText(t, i, cols.QtyIqro),
			QtyAlQuran: publicText(t, i, cols.QtyAlQuran),
			Bukti:      publicText(t, i, cols.Bukti),
		}
		if anyFilled(r.Tanggal, r.Tempat) {
			out = append(out, r)
		}
	}
	return out
}

// MapTab returns the typed rows of a tab as a JSON-ready value.
func MapTab(tab Tab, t core.Table, cols core.Columns) any {
	switch tab {
	case TabRealisasi:
		return MapRealisasi(t, cols)
	case TabPenyaluran:
		return MapPenyaluran(t, cols)
	default:
		return MapDonasiMasuk(t, cols)
	}
}
