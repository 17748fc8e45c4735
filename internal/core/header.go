package core

import (
	"regexp"
	"strings"
)

// Column markers recognised in header labels, e.g. "Bukti [hide]".
const (
	MarkerHide    = "hide"
	MarkerPrivate = "private"
)

var markerPattern = regexp.MustCompile(`\s*\[([^\[\]]*)\]\s*`)

// Header is a parsed column label.
type Header struct {
	Raw     string
	Label   string
	Markers []string
}

// ParseHeader splits a raw label into its display text and bracketed markers.
func ParseHeader(raw string) Header {
	h := Header{Raw: raw}
	for _, m := range markerPattern.FindAllStringSubmatch(raw, -1) {
		h.Markers = append(h.Markers, strings.ToLower(strings.TrimSpace(m[1])))
	}
	h.Label = strings.TrimSpace(markerPattern.ReplaceAllString(raw, " "))
	return h
}

// Has reports whether the header carries the given marker.
func (h Header) Has(marker string) bool {
	for _, m := range h.Markers {
		if m == marker {
			return true
		}
	}
	return false
}

// Hidden reports whether the column is left out of compact tables.
func (h Header) Hidden() bool { return h.Has(MarkerHide) || h.Has(MarkerPrivate) }

// Private reports whether the column is left out of exports.
func (h Header) Private() bool { return h.Has(MarkerPrivate) }

// StripMarkers returns the label without any bracketed markers.
func StripMarkers(raw string) string { return ParseHeader(raw).Label }

// CleanLabel removes a duplicated sheet-title prefix from a label by picking
// the longest vocabulary entry the label ends with. Labels without a match
// are returned unchanged. Trailing markers survive the cleanup.
func CleanLabel(label string, vocabulary []string) string {
	base := label
	suffix := ""
	if loc := trailingMarkers.FindStringIndex(label); loc != nil && loc[0] > 0 {
		base, suffix = label[:loc[0]], label[loc[0]:]
	}
	base = strings.TrimSpace(base)

	best := ""
	for _, v := range vocabulary {
		if v == "" || len(v) <= len(best) {
			continue
		}
		if strings.HasSuffix(base, v) {
			best = v
		}
	}
	if best == "" {
		return label
	}
	if suffix != "" {
		return best + " " + strings.TrimSpace(suffix)
	}
	return best
}

var trailingMarkers = regexp.MustCompile(`(\s*\[[^\[\]]*\])+\s*$`)

// HeaderDetector finds the header row of a sheet whose labels were not
// declared by the data source.
type HeaderDetector interface {
	// DetectHeader returns the index of the header row within rows.
	DetectHeader(rows [][]Cell) (int, bool)
}

// ScanDetector picks the first row in the first MaxRows rows that has at
// least MinFilled non-empty cells and no date cell.
type ScanDetector struct {
	MaxRows   int
	MinFilled int
}

// DefaultDetector is the detector used when none is configured.
var DefaultDetector HeaderDetector = ScanDetector{MaxRows: 5, MinFilled: 2}

func (d ScanDetector) DetectHeader(rows [][]Cell) (int, bool) {
	limit := min(d.MaxRows, len(rows))
	for i := 0; i < limit; i++ {
		filled := 0
		dated := false
		for _, c := range rows[i] {
			if c.IsEmpty() {
				continue
			}
			filled++
			if _, ok := c.Date(); ok {
				dated = true
				break
			}
		}
		if !dated && filled >= d.MinFilled {
			return i, true
		}
	}
	return 0, false
}

// ResolveHeaders turns undeclared sheet data into headers and data rows
// using the detector. Without a header row every row is data and columns are
// named col_0, col_1, ...
func ResolveHeaders(rows [][]Cell, detector HeaderDetector, vocabulary []string) ([]string, [][]Cell) {
	if detector == nil {
		detector = DefaultDetector
	}
	if idx, ok := detector.DetectHeader(rows); ok {
		headers := make([]string, len(rows[idx]))
		for i, c := range rows[idx] {
			headers[i] = CleanLabel(strings.TrimSpace(c.Text()), vocabulary)
		}
		return headers, rows[idx+1:]
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	headers := make([]string, width)
	for i := range headers {
		headers[i] = SyntheticHeader(i)
	}
	return headers, rows
}
