package gviz

import (
	"bytes"
	"encoding/json"
	"strings"

	"donasi/internal/core"
	ports "donasi/internal/sheets"
)

// response mirrors the JSON the visualization endpoint wraps in its
// callback envelope.
type response struct {
	Status string     `json:"status"`
	Errors []apiError `json:"errors"`
	Table  *table     `json:"table"`
}

type apiError struct {
	Reason          string `json:"reason"`
	Message         string `json:"message"`
	DetailedMessage string `json:"detailed_message"`
}

type table struct {
	Cols             []column `json:"cols"`
	Rows             []row    `json:"rows"`
	ParsedNumHeaders *int     `json:"parsedNumHeaders"`
}

type column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type row struct {
	C []*cell `json:"c"`
}

type cell struct {
	V any     `json:"v"`
	F *string `json:"f"`
}

// Parser turns a visualization endpoint body into a table.
type Parser struct {
	// Vocabulary is the set of known column labels used to strip sheet-title
	// prefixes from headers.
	Vocabulary []string
	// Detector finds the header row when the response declares no labels.
	Detector core.HeaderDetector
}

// DefaultParser uses the default column vocabulary and header detector.
func DefaultParser() Parser {
	return Parser{
		Vocabulary: core.DefaultColumns().Vocabulary(),
		Detector:   core.DefaultDetector,
	}
}

// Parse extracts the JSON object between the first '{' and the last '}' of
// body and builds a table from it. On failure it returns an empty table and
// a *ports.ParseError.
func (p Parser) Parse(sheet string, body []byte) (core.Table, error) {
	empty := core.Table{Sheet: sheet}

	raw, ok := extractObject(body)
	if !ok {
		return empty, &ports.ParseError{Sheet: sheet, Reason: "no JSON object in response"}
	}

	var resp response
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return empty, &ports.ParseError{Sheet: sheet, Reason: "invalid JSON", Err: err}
	}
	if strings.EqualFold(resp.Status, "error") {
		return empty, &ports.ParseError{Sheet: sheet, Reason: describeErrors(resp.Errors)}
	}
	if resp.Table == nil {
		return empty, &ports.ParseError{Sheet: sheet, Reason: "response has no table"}
	}

	records := make([][]core.Cell, len(resp.Table.Rows))
	for i, r := range resp.Table.Rows {
		records[i] = toCells(r.C, len(resp.Table.Cols))
	}

	if labels, ok := p.declaredLabels(resp.Table); ok {
		return core.NewTable(sheet, labels, records), nil
	}

	headers, data := core.ResolveHeaders(records, p.Detector, p.Vocabulary)
	return core.NewTable(sheet, headers, data), nil
}

// declaredLabels returns the cleaned column labels when the response carries
// usable ones: at least one non-blank label and a parsed header count that
// is either absent or positive.
func (p Parser) declaredLabels(t *table) ([]string, bool) {
	if t.ParsedNumHeaders != nil && *t.ParsedNumHeaders <= 0 {
		return nil, false
	}
	labels := make([]string, len(t.Cols))
	found := false
	for i, c := range t.Cols {
		l := strings.TrimSpace(c.Label)
		if l != "" {
			found = true
		}
		labels[i] = core.CleanLabel(l, p.Vocabulary)
	}
	return labels, found
}

func toCells(cs []*cell, width int) []core.Cell {
	out := make([]core.Cell, max(width, len(cs)))
	for i, c := range cs {
		if c == nil {
			continue
		}
		out[i] = core.Cell{Value: c.V}
		if c.F != nil {
			out[i].Formatted = *c.F
			out[i].HasFormat = true
		}
	}
	return out
}

func extractObject(body []byte) ([]byte, bool) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, false
	}
	return body[start : end+1], true
}

func describeErrors(errs []apiError) string {
	if len(errs) == 0 {
		return "query failed"
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := e.DetailedMessage
		if msg == "" {
			msg = e.Message
		}
		if msg == "" {
			msg = e.Reason
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
