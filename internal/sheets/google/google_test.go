package google

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"donasi/internal/core"
	"donasi/internal/log"
	ports "donasi/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

func ptr[T any](v T) *T { return &v }

func TestGridRows(t *testing.T) {
	dateFormat := &gsheet.CellFormat{NumberFormat: &gsheet.NumberFormat{Type: "DATE", Pattern: "d mmm yyyy"}}
	ss := &gsheet.Spreadsheet{Sheets: []*gsheet.Sheet{{Data: []*gsheet.GridData{{RowData: []*gsheet.RowData{
		{Values: []*gsheet.CellData{
			{FormattedValue: "Tanggal", EffectiveValue: &gsheet.ExtendedValue{StringValue: ptr("Tanggal")}},
			{FormattedValue: "Nominal", EffectiveValue: &gsheet.ExtendedValue{StringValue: ptr("Nominal")}},
		}},
		nil,
		{Values: []*gsheet.CellData{
			{FormattedValue: "14/02/2026", EffectiveValue: &gsheet.ExtendedValue{NumberValue: ptr(46067.0)}, EffectiveFormat: dateFormat},
			{FormattedValue: "Rp10.000", EffectiveValue: &gsheet.ExtendedValue{NumberValue: ptr(10000.0)}},
			nil,
		}},
	}}}}}}

	rows := gridRows(ss)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1] != nil {
		t.Errorf("missing row data should become an empty row")
	}

	date, ok := rows[2][0].Date()
	if !ok || !date.Equal(time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date() = %v %v", date, ok)
	}
	if got := rows[2][0].Text(); got != "14 Feb 2026" {
		t.Errorf("Text() = %q", got)
	}
	if got, _ := rows[2][1].Amount(); got.IntPart() != 10000 {
		t.Errorf("Amount() = %s", got)
	}
	if !rows[2][2].IsEmpty() {
		t.Errorf("nil cell should be empty")
	}
}

func TestSerialToTime(t *testing.T) {
	got := serialToTime(46067.5)
	want := time.Date(2026, time.February, 14, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("serialToTime() = %v, want %v", got, want)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Donasi Qur'an"); got != "'Donasi Qur''an'" {
		t.Errorf("quoteSheet() = %q", got)
	}
}

const gridResponse = `{"sheets":[{"data":[{"rowData":[
	{"values":[{"formattedValue":"LAPORAN","effectiveValue":{"stringValue":"LAPORAN"}}]},
	{"values":[
		{"formattedValue":"Penyaluran Donasi Tanggal","effectiveValue":{"stringValue":"Penyaluran Donasi Tanggal"}},
		{"formattedValue":"Tempat","effectiveValue":{"stringValue":"Tempat"}},
		{"formattedValue":"Qty Al Quran","effectiveValue":{"stringValue":"Qty Al Quran"}}
	]},
	{"values":[
		{"formattedValue":"14/02/2026","effectiveValue":{"numberValue":46067},"effectiveFormat":{"numberFormat":{"type":"DATE"}}},
		{"formattedValue":"Masjid Al Ikhlas","effectiveValue":{"stringValue":"Masjid Al Ikhlas"}},
		{"formattedValue":"20","effectiveValue":{"numberValue":20}}
	]}
]}]}]}`

func TestReadTable(t *testing.T) {
	var gotPath, gotRanges string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRanges = r.URL.Query().Get("ranges")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, gridResponse)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{
		SpreadsheetID: "sheet-id",
		Vocabulary:    core.DefaultColumns().Vocabulary(),
		Logger:        log.Discard(),
		Endpoint:      srv.URL + "/",
		HTTPClient:    srv.Client(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	table, err := c.ReadTable(context.Background(), "Penyaluran Donasi")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if gotPath != "/v4/spreadsheets/sheet-id" {
		t.Errorf("path = %q", gotPath)
	}
	if gotRanges != "'Penyaluran Donasi'" {
		t.Errorf("ranges = %q", gotRanges)
	}
	want := []map[string]string{{"Tanggal": "14 Feb 2026", "Tempat": "Masjid Al Ikhlas", "Qty Al Quran": "20"}}
	if diff := cmp.Diff(want, table.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTableAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{
		SpreadsheetID: "sheet-id",
		Logger:        log.Discard(),
		Endpoint:      srv.URL + "/",
		HTTPClient:    srv.Client(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.ReadTable(context.Background(), "Realisasi")
	var ferr *ports.FetchError
	if !errors.As(err, &ferr) || ferr.StatusCode != http.StatusForbidden {
		t.Fatalf("ReadTable() error = %v, want FetchError 403", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{SpreadsheetID: "x"}); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := New(context.Background(), Config{APIKey: "k"}); err == nil {
		t.Error("expected error without spreadsheet ID")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "x", CredentialsJSON: []byte("{not json")}); err == nil {
		t.Error("expected error for malformed credentials")
	}
}
