package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"donasi/internal/core"
	"donasi/internal/sheets/gviz"
)

func TestStorePutAndRead(t *testing.T) {
	s := New(core.NewTable("Donasi Masuk", []string{"Donatur"}, [][]core.Cell{{core.TextCell("Budi")}}))

	got, err := s.ReadTable(context.Background(), "Donasi Masuk")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0].Text("Donatur") != "Budi" {
		t.Fatalf("unexpected table: %+v", got.Records())
	}

	// Callers may not mutate the stored table.
	got.Rows[0]["Donatur"] = core.TextCell("changed")
	again, _ := s.ReadTable(context.Background(), "Donasi Masuk")
	if again.Rows[0].Text("Donatur") != "Budi" {
		t.Fatalf("stored table was mutated")
	}
	if s.Reads("Donasi Masuk") != 2 {
		t.Errorf("Reads() = %d, want 2", s.Reads("Donasi Masuk"))
	}
}

func TestStoreUnknownSheet(t *testing.T) {
	_, err := New().ReadTable(context.Background(), "Nope")
	if !errors.Is(err, core.ErrUnknownSheet) {
		t.Fatalf("ReadTable() error = %v, want ErrUnknownSheet", err)
	}
}

func TestStoreFail(t *testing.T) {
	s := New(core.Table{Sheet: "Realisasi"})
	boom := errors.New("boom")
	s.Fail("Realisasi", boom)
	if _, err := s.ReadTable(context.Background(), "Realisasi"); !errors.Is(err, boom) {
		t.Fatalf("ReadTable() error = %v, want boom", err)
	}
	s.Put(core.Table{Sheet: "Realisasi"})
	if _, err := s.ReadTable(context.Background(), "Realisasi"); err != nil {
		t.Fatalf("Put should clear the failure: %v", err)
	}
}

func TestStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(core.Table{Sheet: "S"}).ReadTable(ctx, "S"); !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadTable() error = %v, want context.Canceled", err)
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	body := `google.visualization.Query.setResponse({"table":{"cols":[{"label":"Donatur"},{"label":"Nominal"}],"rows":[{"c":[{"v":"Sari"},{"v":5000}]}],"parsedNumHeaders":1}});`
	if err := os.WriteFile(filepath.Join(dir, "Donasi Masuk.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := NewFromFiles(dir, gviz.DefaultParser())
	table, err := s.ReadTable(context.Background(), "Donasi Masuk")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].Text("Nominal") != "5000" {
		t.Fatalf("unexpected table: %+v", table.Records())
	}

	if _, err := s.ReadTable(context.Background(), "Realisasi"); !errors.Is(err, core.ErrUnknownSheet) {
		t.Fatalf("missing fixture: error = %v, want ErrUnknownSheet", err)
	}
}
