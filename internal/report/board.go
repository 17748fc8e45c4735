package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"donasi/internal/core"
	"donasi/internal/log"
)

// Board holds one task per view of the site.
type Board struct {
	Total     *Task[Total]
	Disbursed *Task[Total]
	Donors    *Task[[]string]
	tabs      map[Tab]*Task[core.Table]
	svc       *Service
}

// NewBoard wires every view to the service.
func NewBoard(svc *Service, logger *log.Logger) *Board {
	b := &Board{
		Total:     NewTask("total", svc.DonationTotal, svc.EmptyTotal, logger),
		Disbursed: NewTask("disbursed", svc.DisbursedTotal, svc.EmptyTotal, logger),
		Donors:    NewTask("donors", svc.Donors, func() []string { return []string{} }, logger),
		tabs:      make(map[Tab]*Task[core.Table], len(Tabs())),
		svc:       svc,
	}
	for _, tab := range Tabs() {
		sheet := svc.Config().Sheets.For(tab)
		b.tabs[tab] = NewTask("laporan_"+string(tab),
			func(ctx context.Context) (core.Table, error) { return svc.Sheet(ctx, tab) },
			func() core.Table { return core.Table{Sheet: sheet} },
			logger)
	}
	return b
}

// Service returns the service behind the board.
func (b *Board) Service() *Service { return b.svc }

// Tab returns the task of a report tab.
func (b *Board) Tab(tab Tab) (*Task[core.Table], bool) {
	t, ok := b.tabs[tab]
	return t, ok
}

// Summary is the state of the headline views.
type Summary struct {
	Total     Snapshot[Total]    `json:"total"`
	Disbursed Snapshot[Total]    `json:"disbursed"`
	Donors    Snapshot[[]string] `json:"donors"`
}

// Refresh refetches the headline views concurrently and returns their
// states once all have settled. Every view settles even when another
// fails; the error is the first failure, which the summary also carries.
func (b *Board) Refresh(ctx context.Context) (Summary, error) {
	var g errgroup.Group
	g.Go(func() error { return viewErr(b.Total.Name(), (<-b.Total.Refetch(ctx)).Err) })
	g.Go(func() error { return viewErr(b.Disbursed.Name(), (<-b.Disbursed.Refetch(ctx)).Err) })
	g.Go(func() error { return viewErr(b.Donors.Name(), (<-b.Donors.Refetch(ctx)).Err) })
	err := g.Wait()
	return b.Summary(), err
}

func viewErr(view string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("view %s: %w", view, err)
}

// Summary returns the current headline states without fetching.
func (b *Board) Summary() Summary {
	return Summary{
		Total:     b.Total.Snapshot(),
		Disbursed: b.Disbursed.Snapshot(),
		Donors:    b.Donors.Snapshot(),
	}
}

// Wait blocks until every task's fetches have finished.
func (b *Board) Wait() {
	b.Total.Wait()
	b.Disbursed.Wait()
	b.Donors.Wait()
	for _, t := range b.tabs {
		t.Wait()
	}
}
