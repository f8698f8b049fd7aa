package memory

import (
	"context"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/pivot"
	ports "expensetracker/internal/sheets"
)

// Writer keeps the last summary written per account. It backs the export
// worker's dry-run mode and tests.
type Writer struct {
	mu     sync.Mutex
	sheets map[core.Account]pivot.Matrix
	writes int
}

var _ ports.SummaryWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{sheets: make(map[core.Account]pivot.Matrix)}
}

func (w *Writer) WriteSummary(_ context.Context, account core.Account, m pivot.Matrix) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sheets[account] = m
	w.writes++
	return "mem:" + account.String(), nil
}

// Summary returns the last matrix written for account.
func (w *Writer) Summary(account core.Account) (pivot.Matrix, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.sheets[account]
	return m, ok
}

// Writes counts WriteSummary calls.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
