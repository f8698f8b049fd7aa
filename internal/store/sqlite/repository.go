// Package sqlite is the embedded SQL backend of the record store. All
// accounts share one table partitioned by the account column.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const expenseColumns = "id, amount, date, month, year, category, description, created_date"

type Repository struct {
	db *sql.DB
}

// Open creates the database file if needed, migrates it and returns a
// ready repository.
func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, account core.Account, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	e.ID = core.NewID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (account, `+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.String(),
		e.ID,
		e.Amount.String(),
		e.Date.String(),
		e.Month,
		e.Year,
		e.Category,
		e.Description,
		e.CreatedDate.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"account", account.String(),
		"amount", e.Amount.String(),
		"month", e.Month,
		"year", e.Year)

	return e.ID, nil
}

func (r *Repository) FindByID(ctx context.Context, account core.Account, id string) (core.Expense, error) {
	id, err := core.CanonicalID(id)
	if err != nil {
		return core.Expense{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE account = ? AND id = ?`,
		account.String(), id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return e, nil
}

// FindAll returns matching records in insertion order.
func (r *Repository) FindAll(ctx context.Context, account core.Account, f core.Filter) ([]core.Expense, error) {
	where, args := filterClause(account, f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE `+where+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateFields(ctx context.Context, account core.Account, id string, p core.Patch) (core.Expense, error) {
	id, err := core.CanonicalID(id)
	if err != nil {
		return core.Expense{}, err
	}
	set, args := setClause(p)
	if len(set) == 0 {
		return core.Expense{}, core.ErrNoFieldsProvided
	}
	args = append(args, account.String(), id)
	row := r.db.QueryRowContext(ctx,
		`UPDATE expenses SET `+strings.Join(set, ", ")+` WHERE account = ? AND id = ? RETURNING `+expenseColumns,
		args...)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", id, err)
	}
	return e, nil
}

func (r *Repository) DeleteByID(ctx context.Context, account core.Account, id string) (bool, error) {
	id, err := core.CanonicalID(id)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE account = ? AND id = ?`, account.String(), id)
	if err != nil {
		return false, fmt.Errorf("delete expense %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense %s: %w", id, err)
	}
	return n > 0, nil
}

func filterClause(account core.Account, f core.Filter) (string, []any) {
	clauses := []string{"account = ?"}
	args := []any{account.String()}
	if f.Month != nil {
		clauses = append(clauses, "month = ?")
		args = append(args, *f.Month)
	}
	if f.Year != nil {
		clauses = append(clauses, "year = ?")
		args = append(args, *f.Year)
	}
	return strings.Join(clauses, " AND "), args
}

func setClause(p core.Patch) ([]string, []any) {
	var set []string
	var args []any
	if p.Amount != nil {
		set = append(set, "amount = ?")
		args = append(args, p.Amount.String())
	}
	if p.Date != nil {
		set = append(set, "date = ?")
		args = append(args, p.Date.String())
	}
	if p.Month != nil {
		set = append(set, "month = ?")
		args = append(args, *p.Month)
	}
	if p.Year != nil {
		set = append(set, "year = ?")
		args = append(args, *p.Year)
	}
	if p.Category != nil {
		set = append(set, "category = ?")
		args = append(args, *p.Category)
	}
	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	return set, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e                     core.Expense
		amount, date, created string
	)
	if err := s.Scan(&e.ID, &amount, &date, &e.Month, &e.Year, &e.Category, &e.Description, &created); err != nil {
		return core.Expense{}, err
	}
	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedDate, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return core.Expense{}, fmt.Errorf("parse created_date %q: %w", created, err)
	}
	return e, nil
}
