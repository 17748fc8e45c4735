package google

import (
	"math"
	"time"

	"donasi/internal/core"

	gsheet "google.golang.org/api/sheets/v4"
)

// sheetsEpoch is day zero of spreadsheet date serial numbers.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// gridRows flattens the grid data of the first returned sheet into cells.
func gridRows(s *gsheet.Spreadsheet) [][]core.Cell {
	if s == nil || len(s.Sheets) == 0 {
		return nil
	}
	var rows [][]core.Cell
	for _, data := range s.Sheets[0].Data {
		if data == nil {
			continue
		}
		for _, rd := range data.RowData {
			if rd == nil {
				rows = append(rows, nil)
				continue
			}
			row := make([]core.Cell, len(rd.Values))
			for i, v := range rd.Values {
				row[i] = toCell(v)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func toCell(cd *gsheet.CellData) core.Cell {
	var c core.Cell
	if cd == nil {
		return c
	}
	if cd.FormattedValue != "" {
		c.Formatted = cd.FormattedValue
		c.HasFormat = true
	}
	ev := cd.EffectiveValue
	if ev == nil {
		return c
	}
	switch {
	case ev.NumberValue != nil:
		if isDateFormat(cd) {
			c.Value = serialToTime(*ev.NumberValue)
		} else {
			c.Value = *ev.NumberValue
		}
	case ev.StringValue != nil:
		c.Value = *ev.StringValue
	case ev.BoolValue != nil:
		c.Value = *ev.BoolValue
	}
	return c
}

func isDateFormat(cd *gsheet.CellData) bool {
	if cd.EffectiveFormat == nil || cd.EffectiveFormat.NumberFormat == nil {
		return false
	}
	switch cd.EffectiveFormat.NumberFormat.Type {
	case "DATE", "DATE_TIME":
		return true
	}
	return false
}

func serialToTime(serial float64) time.Time {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	return sheetsEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}
