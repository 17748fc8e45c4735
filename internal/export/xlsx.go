// Package export writes report tables as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"donasi/internal/core"
)

const (
	maxSheetName = 31
	amountFormat = "#,##0"
	dateFormat   = "d mmm yyyy"
)

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// Options controls how a table is written.
type Options struct {
	// AmountColumns are written as numbers when the cell parses as rupiah.
	AmountColumns []string
}

// Columns returns the headers a workbook exports: every column not marked
// private, in sheet order.
func Columns(t core.Table) []string {
	out := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if core.ParseHeader(h).Private() {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Workbook builds a single-sheet workbook from t. Header markers are stripped,
// dates are written as dates and amount columns as numbers.
func Workbook(t core.Table, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()
	name := SheetName(t.Sheet)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stream writer: %w", err)
	}

	cols := Columns(t)
	amount := make(map[string]bool, len(opts.AmountColumns))
	for _, c := range opts.AmountColumns {
		if h, ok := t.Column(c); ok {
			amount[h] = true
		}
	}

	if len(cols) > 0 {
		if err := sw.SetColWidth(1, len(cols), 18); err != nil {
			f.Close()
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	header := make([]any, len(cols))
	for i, h := range cols {
		header[i] = excelize.Cell{StyleID: styles.header, Value: core.StripMarkers(h)}
	}
	if err := sw.SetRow("A1", header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]any, len(cols))
		for j, h := range cols {
			values[j] = styles.value(row[h], amount[h])
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := sw.SetRow(ref, values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush: %w", err)
	}
	return f, nil
}

// Write streams the workbook of t to w.
func Write(w io.Writer, t core.Table, opts Options) error {
	f, err := Workbook(t, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SheetName makes name usable as a worksheet name.
func SheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Laporan"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// Filename is the download name of a tab export.
func Filename(tab string, now time.Time) string {
	return "laporan-" + tab + "-" + now.Format("20060102") + ".xlsx"
}

type styles struct {
	header int
	amount int
	date   int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	numFmt := amountFormat
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return s, fmt.Errorf("amount style: %w", err)
	}
	dateFmt := dateFormat
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, fmt.Errorf("date style: %w", err)
	}
	return s, nil
}

func (s styles) value(c core.Cell, isAmount bool) any {
	if c.IsEmpty() {
		return nil
	}
	if t, ok := c.Date(); ok {
		return excelize.Cell{StyleID: s.date, Value: t}
	}
	if isAmount {
		if d, ok := c.Amount(); ok {
			return excelize.Cell{StyleID: s.amount, Value: d.InexactFloat64()}
		}
	}
	return c.Text()
}
