// Package memory is an offline table reader. It serves tables put into it
// directly or, when built with NewFromFiles, gviz response bodies saved as
// "<dir>/<sheet name>.json".
package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"donasi/internal/core"
	ports "donasi/internal/sheets"
	"donasi/internal/sheets/gviz"
)

type Store struct {
	mu     sync.RWMutex
	tables map[string]core.Table
	fails  map[string]error
	reads  map[string]int

	dir    string
	parser gviz.Parser
}

// Ensure interface conformance
var _ ports.TableReader = (*Store)(nil)

func New(tables ...core.Table) *Store {
	s := &Store{
		tables: map[string]core.Table{},
		fails:  map[string]error{},
		reads:  map[string]int{},
		parser: gviz.DefaultParser(),
	}
	for _, t := range tables {
		s.tables[t.Sheet] = t
	}
	return s
}

// NewFromFiles serves sheets from saved gviz payloads under base. Files are
// read on every call so edits show up without a restart.
func NewFromFiles(base string, parser gviz.Parser) *Store {
	s := New()
	s.dir = base
	s.parser = parser
	return s
}

// Put stores or replaces a table.
func (s *Store) Put(t core.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Sheet] = t
	delete(s.fails, t.Sheet)
}

// Fail makes reads of sheet return err until the next Put.
func (s *Store) Fail(sheet string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[sheet] = err
}

// Reads reports how many times sheet was read.
func (s *Store) Reads(sheet string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[sheet]
}

// ReadTable returns the stored table for sheet.
func (s *Store) ReadTable(ctx context.Context, sheet string) (core.Table, error) {
	empty := core.Table{Sheet: sheet}
	if err := ctx.Err(); err != nil {
		return empty, err
	}

	s.mu.Lock()
	s.reads[sheet]++
	err, failing := s.fails[sheet]
	t, ok := s.tables[sheet]
	s.mu.Unlock()

	if failing {
		return empty, err
	}
	if ok {
		return clone(t), nil
	}
	if s.dir != "" {
		return s.readFile(sheet)
	}
	return empty, fmt.Errorf("%w: %q", core.ErrUnknownSheet, sheet)
}

func (s *Store) readFile(sheet string) (core.Table, error) {
	empty := core.Table{Sheet: sheet}
	body, err := os.ReadFile(filepath.Join(s.dir, sheet+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return empty, fmt.Errorf("%w: %q", core.ErrUnknownSheet, sheet)
	}
	if err != nil {
		return empty, fmt.Errorf("read fixture for %q: %w", sheet, err)
	}
	return s.parser.Parse(sheet, body)
}

func clone(t core.Table) core.Table {
	out := core.Table{
		Sheet:   t.Sheet,
		Headers: append([]string(nil), t.Headers...),
		Rows:    make([]core.Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		row := make(core.Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		out.Rows[i] = row
	}
	return out
}
