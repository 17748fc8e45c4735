package report

import (
	"context"
	"fmt"
	"time"

	"donasi/internal/core"
	"donasi/internal/sheets"
)

// Config carries the sheet layout the aggregators need.
type Config struct {
	Sheets         SheetNames
	Columns        core.Columns
	Anonymizer     core.Anonymizer
	CurrencyPrefix string
	// Timeout bounds a single sheet read; zero means no extra bound.
	Timeout time.Duration
}

// DefaultConfig matches the donation spreadsheet.
func DefaultConfig() Config {
	return Config{
		Sheets:         DefaultSheetNames(),
		Columns:        core.DefaultColumns(),
		Anonymizer:     core.NewAnonymizer(core.DefaultAnonymousNames(), core.DefaultAnonymousLabel),
		CurrencyPrefix: core.DefaultCurrencyPrefix,
		Timeout:        15 * time.Second,
	}
}

// Service computes each view from a fresh read of its sheet. Nothing is
// shared between calls.
type Service struct {
	reader sheets.TableReader
	cfg    Config
}

func NewService(reader sheets.TableReader, cfg Config) *Service {
	return &Service{reader: reader, cfg: cfg}
}

// Config returns the layout the service was built with.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) read(ctx context.Context, sheet string) (core.Table, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	t, err := s.reader.ReadTable(ctx, sheet)
	if err != nil {
		return core.Table{Sheet: sheet}, fmt.Errorf("read %q: %w", sheet, err)
	}
	return t, nil
}

// DonationTotal sums the Nominal column of the incoming donations sheet.
func (s *Service) DonationTotal(ctx context.Context) (Total, error) {
	t, err := s.read(ctx, s.cfg.Sheets.DonasiMasuk)
	if err != nil {
		return s.EmptyTotal(), err
	}
	return NewTotal(t, s.cfg.Columns.Nominal, s.cfg.Columns.Tanggal, s.cfg.CurrencyPrefix), nil
}

// DisbursedTotal sums the Nominal column of the spending sheet.
func (s *Service) DisbursedTotal(ctx context.Context) (Total, error) {
	t, err := s.read(ctx, s.cfg.Sheets.Realisasi)
	if err != nil {
		return s.EmptyTotal(), err
	}
	return NewTotal(t, s.cfg.Columns.Nominal, s.cfg.Columns.Tanggal, s.cfg.CurrencyPrefix), nil
}

// Donors lists unique donor names of the incoming donations sheet.
func (s *Service) Donors(ctx context.Context) ([]string, error) {
	t, err := s.read(ctx, s.cfg.Sheets.DonasiMasuk)
	if err != nil {
		return []string{}, err
	}
	return DonorNames(t, s.cfg.Columns.Donatur, s.cfg.Anonymizer), nil
}

// Sheet reads the table behind a report tab.
func (s *Service) Sheet(ctx context.Context, tab Tab) (core.Table, error) {
	return s.read(ctx, s.cfg.Sheets.For(tab))
}

// EmptyTotal is the total shown when a load fails.
func (s *Service) EmptyTotal() Total { return EmptyTotal(s.cfg.CurrencyPrefix) }
