package http

import (
	"net/http"
	"strconv"
	"strings"

	"donasi/internal/report"
)

const xlsxSuffix = ".xlsx"

// parseTab reads the {tab} path value.
func parseTab(r *http.Request) (report.Tab, bool) {
	return report.ParseTab(strings.ToLower(strings.TrimSpace(r.PathValue("tab"))))
}

// parseExportTab reads a "<tab>.xlsx" path value.
func parseExportTab(r *http.Request) (report.Tab, bool) {
	file := strings.ToLower(r.PathValue("file"))
	name, ok := strings.CutSuffix(file, xlsxSuffix)
	if !ok {
		return "", false
	}
	return report.ParseTab(name)
}

// parseRowIndex reads the zero-based {row} path value.
func parseRowIndex(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("row"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
