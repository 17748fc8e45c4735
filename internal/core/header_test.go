package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanLabel(t *testing.T) {
	vocab := DefaultColumns().Vocabulary()
	cases := []struct {
		in   string
		want string
	}{
		{"Tanggal", "Tanggal"},
		{"Donasi Masuk Tanggal", "Tanggal"},
		{"Penyaluran Donasi Qty Al Quran", "Qty Al Quran"},
		{"Realisasi Quran Qty", "Quran Qty"},
		{"Keterangan", "Keterangan"},
		{"Penyaluran Donasi Bukti [hide]", "Bukti [hide]"},
		{"Catatan [private]", "Catatan [private]"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanLabel(tc.in, vocab); got != tc.want {
			t.Fatalf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanLabelPrefersLongestSuffix(t *testing.T) {
	vocab := []string{"Quran", "Al Quran", "Qty Al Quran"}
	if got := CleanLabel("Sheet Qty Al Quran", vocab); got != "Qty Al Quran" {
		t.Fatalf("got %q", got)
	}
}

func TestParseHeader(t *testing.T) {
	h := ParseHeader("Bukti [hide] [Private]")
	if h.Label != "Bukti" {
		t.Fatalf("label: got %q", h.Label)
	}
	if diff := cmp.Diff([]string{"hide", "private"}, h.Markers); diff != "" {
		t.Fatalf("markers mismatch (-want +got):\n%s", diff)
	}
	if !h.Hidden() || !h.Private() {
		t.Fatalf("expected hidden and private: %+v", h)
	}
	plain := ParseHeader("Nominal")
	if plain.Hidden() || plain.Label != "Nominal" {
		t.Fatalf("unexpected plain header: %+v", plain)
	}
}

func TestScanDetector(t *testing.T) {
	d := ScanDetector{MaxRows: 5, MinFilled: 2}
	rows := [][]Cell{
		{TextCell("LAPORAN DONASI"), {}},
		{TextCell("Date(2026,0,1)"), TextCell("Budi")},
		{TextCell("Tanggal"), TextCell("Donatur"), TextCell("Nominal")},
		{TextCell("Date(2026,0,2)"), TextCell("Sari"), TextCell("5000")},
	}
	idx, ok := d.DetectHeader(rows)
	if !ok || idx != 2 {
		t.Fatalf("got %d %v, want 2 true", idx, ok)
	}
}

func TestScanDetectorRespectsWindow(t *testing.T) {
	d := ScanDetector{MaxRows: 2, MinFilled: 2}
	rows := [][]Cell{
		{TextCell("title")},
		{TextCell("Date(2026,0,1)"), TextCell("x")},
		{TextCell("Tanggal"), TextCell("Donatur")},
	}
	if _, ok := d.DetectHeader(rows); ok {
		t.Fatal("header beyond the scan window must not be found")
	}
}

func TestResolveHeaders(t *testing.T) {
	vocab := DefaultColumns().Vocabulary()
	rows := [][]Cell{
		{TextCell("Rekap"), {}},
		{TextCell("Donasi Masuk Tanggal"), TextCell("Donatur")},
		{TextCell("Date(2026,0,2)"), TextCell("Sari")},
	}
	headers, data := ResolveHeaders(rows, nil, vocab)
	if diff := cmp.Diff([]string{"Tanggal", "Donatur"}, headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(data) != 1 {
		t.Fatalf("expected one data row, got %d", len(data))
	}

	dated := [][]Cell{
		{TextCell("Date(2026,0,2)"), TextCell("Sari")},
		{TextCell("Date(2026,0,3)"), TextCell("Budi"), TextCell("1000")},
	}
	headers, data = ResolveHeaders(dated, nil, vocab)
	if diff := cmp.Diff([]string{"col_0", "col_1", "col_2"}, headers); diff != "" {
		t.Fatalf("synthetic headers mismatch (-want +got):\n%s", diff)
	}
	if len(data) != 2 {
		t.Fatalf("expected all rows as data, got %d", len(data))
	}
}

type fixedDetector int

func (f fixedDetector) DetectHeader(rows [][]Cell) (int, bool) {
	if int(f) < len(rows) {
		return int(f), true
	}
	return 0, false
}

func TestResolveHeadersCustomDetector(t *testing.T) {
	rows := [][]Cell{
		{TextCell("A"), TextCell("B")},
		{TextCell("C"), TextCell("D")},
	}
	headers, data := ResolveHeaders(rows, fixedDetector(1), nil)
	if diff := cmp.Diff([]string{"C", "D"}, headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(data) != 0 {
		t.Fatalf("expected no data rows, got %d", len(data))
	}
}
