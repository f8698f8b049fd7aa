// Package store defines the record store port. Every method addresses one
// account partition explicitly; backends live in sub-packages.
package store

import (
	"context"

	"expensetracker/internal/core"
)

type (
	// Store persists expenses partitioned by account.
	//
	// Malformed ids yield core.ErrInvalidID and unknown ids core.ErrNotFound.
	Store interface {
		Insert(ctx context.Context, account core.Account, e core.Expense) (id string, err error)
		FindByID(ctx context.Context, account core.Account, id string) (core.Expense, error)
		FindAll(ctx context.Context, account core.Account, f core.Filter) ([]core.Expense, error)
		// UpdateFields applies a normalized patch and returns the post-update record.
		UpdateFields(ctx context.Context, account core.Account, id string, p core.Patch) (core.Expense, error)
		DeleteByID(ctx context.Context, account core.Account, id string) (deleted bool, err error)
		Ping(ctx context.Context) error
		Close() error
	}

	// Aggregator is implemented by backends that can group and sum natively.
	// Results must already be sorted the way the query engine promises.
	Aggregator interface {
		Summarize(ctx context.Context, account core.Account, f core.Filter) ([]core.AggregationRow, error)
		DistinctMonthYears(ctx context.Context, account core.Account) ([]core.MonthYear, error)
	}
)
