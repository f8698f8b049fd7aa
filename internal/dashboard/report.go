package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	"expensetracker/internal/pivot"
)

// ReportSource is the part of the API a report reads.
type ReportSource interface {
	MonthYears(ctx context.Context) ([]core.MonthYear, error)
	Summary(ctx context.Context, f core.Filter) ([]core.AggregationRow, error)
	ListByMonthYear(ctx context.Context, f core.Filter) ([]core.Expense, error)
	List(ctx context.Context) ([]core.Expense, error)
}

// ReportOptions tune BuildReport.
type ReportOptions struct {
	// Concurrency bounds parallel summary fetches. Defaults to 4.
	Concurrency int
	// Details also loads the matching records, newest first.
	Details bool
}

// Report is everything the summary and detail views show.
type Report struct {
	Filter   core.Filter
	Periods  []core.MonthYear
	Matrix   pivot.Matrix
	Details  []core.Expense
	Warnings []string
}

// BuildReport assembles a report. With an empty filter it lists the
// distinct periods and fetches each period's summary concurrently;
// otherwise it fetches the filtered summary directly. Failures never abort
// the report: each one becomes a warning and an empty section.
func BuildReport(ctx context.Context, src ReportSource, f core.Filter, opts ReportOptions) Report {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	r := Report{Filter: f}

	var rows []core.AggregationRow
	if f.IsZero() {
		rows = r.summaryByPeriod(ctx, src, opts.Concurrency)
	} else {
		got, err := src.Summary(ctx, f)
		if err != nil {
			r.warn(ctx, "summary", err)
		}
		rows = got
	}
	r.Matrix = pivot.Build(rows)

	if opts.Details {
		r.Details = r.details(ctx, src, f)
	}
	return r
}

func (r *Report) summaryByPeriod(ctx context.Context, src ReportSource, limit int) []core.AggregationRow {
	periods, err := src.MonthYears(ctx)
	if err != nil {
		r.warn(ctx, "periods", err)
		return nil
	}
	r.Periods = periods

	// Each goroutine writes only its own index.
	results := make([][]core.AggregationRow, len(periods))
	failures := make([]error, len(periods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range periods {
		g.Go(func() error {
			rows, err := src.Summary(gctx, core.PeriodFilter(p))
			if err != nil {
				failures[i] = fmt.Errorf("summary %s: %w", p.Label(), err)
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range failures {
		if err != nil {
			r.warn(ctx, "summary", err)
		}
	}

	var rows []core.AggregationRow
	for _, part := range results {
		rows = append(rows, part...)
	}
	return rows
}

func (r *Report) details(ctx context.Context, src ReportSource, f core.Filter) []core.Expense {
	var (
		items []core.Expense
		err   error
	)
	if f.IsZero() {
		items, err = src.List(ctx)
	} else {
		items, err = src.ListByMonthYear(ctx, f)
	}
	if err != nil {
		r.warn(ctx, "details", err)
		return []core.Expense{}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date.Time)
	})
	return items
}

func (r *Report) warn(ctx context.Context, section string, err error) {
	slog.WarnContext(ctx, "Report section degraded", "component", "dashboard", "section", section, "error", err)
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %v", section, err))
}
