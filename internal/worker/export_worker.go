package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/pivot"
	"expensetracker/internal/sheets"
)

// Summarizer computes an account's aggregated summary.
type Summarizer interface {
	Summarize(ctx context.Context, account core.Account, f core.Filter) ([]core.AggregationRow, error)
}

// ExportWorker keeps one spreadsheet tab per account in step with the store.
// Every event triggers a full recompute of the account summary, so events
// may arrive out of order or be redelivered without harm.
type ExportWorker struct {
	summaries Summarizer
	writer    sheets.SummaryWriter
}

func NewExportWorker(summaries Summarizer, writer sheets.SummaryWriter) *ExportWorker {
	return &ExportWorker{summaries: summaries, writer: writer}
}

// HandleEvent processes a single change event from AMQP. A returned error
// requeues the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	account, err := core.ParseAccount(ev.Account)
	if err != nil {
		// Redelivery cannot fix a bad account name.
		slog.WarnContext(ctx, "Dropping event with invalid account",
			"component", "worker",
			"event_id", ev.EventID,
			"account", ev.Account,
			"error", err)
		return nil
	}

	slog.InfoContext(ctx, "Processing expense event",
		"component", "worker",
		"event_id", ev.EventID,
		"event_type", string(ev.Type),
		"account", account.String(),
		"expense_id", ev.ExpenseID)

	return w.Export(ctx, account)
}

// Export recomputes and writes the full summary of account.
func (w *ExportWorker) Export(ctx context.Context, account core.Account) error {
	rows, err := w.summaries.Summarize(ctx, account, core.Filter{})
	if err != nil {
		return fmt.Errorf("summarize %s: %w", account, err)
	}

	m := pivot.Build(rows)
	ref, err := w.writer.WriteSummary(ctx, account, m)
	if err != nil {
		return fmt.Errorf("write summary %s: %w", account, err)
	}

	slog.InfoContext(ctx, "Summary exported",
		"component", "worker",
		"account", account.String(),
		"periods", len(m.Rows),
		"categories", len(m.Categories),
		"grand_total", m.GrandTotal.String(),
		"ref", ref)
	return nil
}

// ExportAll exports every account, continuing past failures. It backs the
// startup reconciliation in case events were lost while the worker was down.
func (w *ExportWorker) ExportAll(ctx context.Context, accounts []core.Account) error {
	var errs []error
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Export(ctx, account); err != nil {
			slog.ErrorContext(ctx, "Export failed", "component", "worker", "account", account.String(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
