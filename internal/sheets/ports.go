package sheets

import (
	"context"

	"expensetracker/internal/core"
	"expensetracker/internal/pivot"
)

// SummaryWriter publishes an account's pivoted summary to a spreadsheet tab.
// Each call replaces the tab contents.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, account core.Account, m pivot.Matrix) (sheetRef string, err error)
}
