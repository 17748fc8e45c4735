package sheets

import (
	"context"

	"donasi/internal/core"
)

// Ports for outbound adapters.
type (
	// TableReader reads one named sheet of the spreadsheet as a table.
	TableReader interface {
		ReadTable(ctx context.Context, sheet string) (core.Table, error)
	}
)
