package http

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"donasi/internal/core"
	"donasi/internal/report"
)

func labels(cols []columnView) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

func TestCompactColumns(t *testing.T) {
	cols := core.DefaultColumns()
	tests := []struct {
		name    string
		headers []string
		tab     report.Tab
		want    []string
	}{
		{
			name:    "limited to compact columns",
			headers: []string{"Tanggal", "Keperluan", "Quran Qty", "Nominal", "Saldo"},
			tab:     report.TabRealisasi,
			want:    []string{"Tanggal", "Keperluan", "Nominal"},
		},
		{
			name:    "hidden compact column dropped",
			headers: []string{"Tanggal [hide]", "Donatur", "Nominal"},
			tab:     report.TabDonasi,
			want:    []string{"Donatur", "Nominal"},
		},
		{
			name:    "falls back to every visible column",
			headers: []string{"Kolom A", "Kolom B [hide]", "Kolom C [private]", "Kolom D"},
			tab:     report.TabPenyaluran,
			want:    []string{"Kolom A", "Kolom D"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := core.NewTable("S", tt.headers, nil)
			got := labels(compactColumns(table, tt.tab, cols))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("compactColumns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewDetailViewMissingEvidence(t *testing.T) {
	table := core.NewTable("Penyaluran Donasi", []string{"Tempat", "Catatan", "Bukti"}, [][]core.Cell{
		{core.TextCell("Masjid Al Ikhlas"), {}, {}},
	})
	view, ok := newDetailView(table, report.TabPenyaluran, 0, report.DefaultConfig())
	if !ok {
		t.Fatal("row not found")
	}
	if len(view.Fields) != 2 {
		t.Fatalf("fields = %+v", view.Fields)
	}
	ev := view.Fields[1].Evidence
	if ev == nil || ev.Kind != core.EvidenceNone {
		t.Fatalf("evidence = %+v", ev)
	}
	if _, ok := newDetailView(table, report.TabPenyaluran, 1, report.DefaultConfig()); ok {
		t.Fatal("out of range row should not be found")
	}
}

func TestNewTableViewFormatsAmounts(t *testing.T) {
	table := core.NewTable("Realisasi", []string{"Tanggal", "Keperluan", "Nominal"}, [][]core.Cell{
		{core.TextCell("Date(2026,0,10)"), core.TextCell("Ongkir"), {Value: float64(1250000)}},
	})
	view := newTableView(table, report.TabRealisasi, report.DefaultConfig(), "")
	want := []string{"10 Jan 2026", "Ongkir", "Rp1.250.000"}
	if diff := cmp.Diff(want, view.Rows[0].Cells); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
	if !view.Columns[2].Amount || view.Columns[0].Amount {
		t.Errorf("columns = %+v", view.Columns)
	}
}

func TestNewDetailViewShowsMarkedColumns(t *testing.T) {
	headers := []string{"Tanggal", "Donatur", "Nominal", "Catatan [private]", "Bukti Transfer"}
	table := core.NewTable("Donasi", headers, [][]core.Cell{{
		core.TextCell("Date(2026,0,10)"),
		core.TextCell("Hamba Allah"),
		{Value: float64(500000)},
		core.TextCell("via transfer BSI"),
		core.TextCell("https://drive.google.com/file/d/abc123/view"),
	}})
	view, ok := newDetailView(table, report.TabDonasi, 0, report.DefaultConfig())
	if !ok {
		t.Fatal("row not found")
	}
	got := make([]string, len(view.Fields))
	for i, f := range view.Fields {
		got[i] = f.Label
	}
	want := []string{"Tanggal", "Donatur", "Nominal", "Catatan", "Bukti Transfer"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if view.Fields[3].Value != "via transfer BSI" {
		t.Errorf("Catatan = %q", view.Fields[3].Value)
	}
	ev := view.Fields[4].Evidence
	if ev == nil || ev.Kind != core.EvidenceDrive {
		t.Fatalf("evidence = %+v", ev)
	}
}

func TestIsEvidenceColumn(t *testing.T) {
	cols := core.DefaultColumns()
	for label, want := range map[string]bool{
		"Bukti":          true,
		"Bukti Transfer": true,
		"link bukti":     true,
		"Keterangan":     false,
	} {
		if got := isEvidenceColumn(label, cols); got != want {
			t.Errorf("isEvidenceColumn(%q) = %v, want %v", label, got, want)
		}
	}
}
