package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"donasi/internal/core"
)

func TestMapPenyaluran(t *testing.T) {
	table := core.NewTable("Penyaluran Donasi",
		[]string{"Tanggal", "Tempat", "Qty Iqro", "Qty Al Quran", "Bukti [hide]", "Catatan"},
		[][]core.Cell{
			{core.TextCell("Date(2026,1,1)"), core.TextCell("TPQ Al Falah"), core.TextCell("10"), core.TextCell("25"), core.TextCell("https://drive.google.com/file/d/x/view"), {}},
			{{}, {}, core.TextCell("5"), {}, {}, core.TextCell("catatan saja")},
		})

	got := MapPenyaluran(table, core.DefaultColumns())
	want := []PenyaluranRow{{
		Tanggal:    "1 Feb 2026",
		Tempat:     "TPQ Al Falah",
		QtyIqro:    "10",
		QtyAlQuran: "25",
		Bukti:      "https://drive.google.com/file/d/x/view",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MapPenyaluran() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapDonasiMasukSkipsPrivateColumns(t *testing.T) {
	table := core.NewTable("Donasi Masuk",
		[]string{"Tanggal", "Donatur", "Nominal", "Saldo [private]"},
		[][]core.Cell{{core.TextCell("Date(2026,0,1)"), core.TextCell("Budi"), core.TextCell("Rp5.000"), core.TextCell("Rp5.000")}})

	got := MapDonasiMasuk(table, core.DefaultColumns())
	want := []DonasiMasukRow{{Tanggal: "1 Jan 2026", Donatur: "Budi", Nominal: "Rp5.000"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MapDonasiMasuk() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapRealisasi(t *testing.T) {
	table := core.NewTable("Realisasi",
		[]string{"Tanggal", "Keperluan", "Quran Qty", "Iqro Qty", "Nominal", "Saldo"},
		[][]core.Cell{
			{core.TextCell("Date(2026,2,3)"), core.TextCell("Cetak"), core.TextCell("100"), {}, core.TextCell("Rp2.000.000"), core.TextCell("Rp500.000")},
			{{}, {}, {}, {}, {}, core.TextCell("Rp500.000")},
		})

	got := MapRealisasi(table, core.DefaultColumns())
	if len(got) != 1 || got[0].Keperluan != "Cetak" || got[0].QuranQty != "100" {
		t.Fatalf("MapRealisasi() = %+v", got)
	}
	if rows, ok := MapTab(TabRealisasi, table, core.DefaultColumns()).([]RealisasiRow); !ok || len(rows) != 1 {
		t.Fatalf("MapTab() = %#v", rows)
	}
}

func TestParseTab(t *testing.T) {
	for _, tab := range Tabs() {
		got, ok := ParseTab(string(tab))
		if !ok || got != tab {
			t.Errorf("ParseTab(%q) = %q %v", tab, got, ok)
		}
	}
	if _, ok := ParseTab("saldo"); ok {
		t.Error("ParseTab(saldo) should fail")
	}
	if got := DefaultSheetNames().For(TabPenyaluran); got != "Penyaluran Donasi" {
		t.Errorf("For(penyaluran) = %q", got)
	}
	cols := CompactColumns(TabPenyaluran, core.DefaultColumns())
	if diff := cmp.Diff([]string{"Tanggal", "Tempat", "Qty Al Quran"}, cols); diff != "" {
		t.Errorf("CompactColumns mismatch (-want +got):\n%s", diff)
	}
}
