// Package query implements the filtering and aggregation rules over the
// record store: per-period category sums, period listings and the set of
// periods that hold data.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"expensetracker/internal/core"
	"expensetracker/internal/store"

	"github.com/shopspring/decimal"
)

// Source is the subset of the store the engine reads from.
type Source interface {
	FindAll(ctx context.Context, account core.Account, f core.Filter) ([]core.Expense, error)
}

// Engine answers aggregate queries. It delegates to the backend's native
// aggregation when available and otherwise folds records in memory.
type Engine struct {
	src    Source
	native store.Aggregator
}

// New returns an engine over src. If src also implements store.Aggregator
// its native aggregation is used.
func New(src Source) *Engine {
	e := &Engine{src: src}
	if agg, ok := src.(store.Aggregator); ok {
		e.native = agg
	}
	return e
}

// Native reports whether aggregation runs inside the backend.
func (e *Engine) Native() bool { return e.native != nil }

// Summarize returns per-(month, year, category) sums sorted by year, month
// and category. An empty partition yields an empty, non-nil slice.
func (e *Engine) Summarize(ctx context.Context, account core.Account, f core.Filter) ([]core.AggregationRow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if e.native != nil {
		rows, err := e.native.Summarize(ctx, account, f)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", account, err)
		}
		if rows == nil {
			rows = []core.AggregationRow{}
		}
		return rows, nil
	}
	items, err := e.src.FindAll(ctx, account, f)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", account, err)
	}
	rows := Fold(items)
	slog.DebugContext(ctx, "Summary folded in memory",
		"account", account.String(),
		"records", len(items),
		"groups", len(rows))
	return rows, nil
}

// ListByMonthYear returns the matching records sorted by category, then
// date, then id.
func (e *Engine) ListByMonthYear(ctx context.Context, account core.Account, f core.Filter) ([]core.Expense, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	items, err := e.src.FindAll(ctx, account, f)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", account, err)
	}
	if items == nil {
		items = []core.Expense{}
	}
	SortByCategory(items)
	return items, nil
}

// DistinctMonthYears returns every period holding at least one record,
// sorted by year then month.
func (e *Engine) DistinctMonthYears(ctx context.Context, account core.Account) ([]core.MonthYear, error) {
	if e.native != nil {
		periods, err := e.native.DistinctMonthYears(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("distinct periods %s: %w", account, err)
		}
		if periods == nil {
			periods = []core.MonthYear{}
		}
		return periods, nil
	}
	items, err := e.src.FindAll(ctx, account, core.Filter{})
	if err != nil {
		return nil, fmt.Errorf("distinct periods %s: %w", account, err)
	}
	return Periods(items), nil
}

// Fold groups items by (month, year, category) and sums their amounts.
func Fold(items []core.Expense) []core.AggregationRow {
	type key struct {
		month, year int
		category    string
	}
	totals := make(map[key]decimal.Decimal)
	for _, it := range items {
		k := key{it.Month, it.Year, it.Category}
		totals[k] = totals[k].Add(it.Amount)
	}
	rows := make([]core.AggregationRow, 0, len(totals))
	for k, sum := range totals {
		rows = append(rows, core.AggregationRow{
			Month:       k.month,
			Year:        k.year,
			Category:    k.category,
			TotalAmount: sum,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Less(rows[j]) })
	return rows
}

// Periods returns the distinct periods of items in ascending order.
func Periods(items []core.Expense) []core.MonthYear {
	seen := make(map[core.MonthYear]struct{})
	out := make([]core.MonthYear, 0)
	for _, it := range items {
		p := it.Period()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// SortByCategory orders items by category, date and id, in place.
func SortByCategory(items []core.Expense) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		return a.ID < b.ID
	})
}
