package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/query"
	"expensetracker/internal/store"
)

// EventPublisher emits change events. Implemented by *amqp.Client.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// ExpenseService validates requests, talks to the store and emits change
// events after successful writes.
type ExpenseService struct {
	store     store.Store
	engine    *query.Engine
	publisher EventPublisher
	now       func() time.Time
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithPublisher enables change events.
func WithPublisher(p EventPublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

func NewExpenseService(st store.Store, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:  st,
		engine: query.New(st),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request, derives month and year, stores the record
// and returns it as stored.
func (s *ExpenseService) Create(ctx context.Context, account core.Account, req core.NewExpense) (core.Expense, error) {
	e, err := req.Build(s.now())
	if err != nil {
		return core.Expense{}, err
	}
	id, err := s.store.Insert(ctx, account, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	created, err := s.store.FindByID(ctx, account, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("read back expense %s: %w", id, err)
	}
	s.publish(ctx, amqp.EventCreated, account, created)
	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, account core.Account, id string) (core.Expense, error) {
	return s.store.FindByID(ctx, account, id)
}

// List returns every record of the account in store order.
func (s *ExpenseService) List(ctx context.Context, account core.Account) ([]core.Expense, error) {
	return s.store.FindAll(ctx, account, core.Filter{})
}

func (s *ExpenseService) ListByMonthYear(ctx context.Context, account core.Account, f core.Filter) ([]core.Expense, error) {
	return s.engine.ListByMonthYear(ctx, account, f)
}

func (s *ExpenseService) Summary(ctx context.Context, account core.Account, f core.Filter) ([]core.AggregationRow, error) {
	return s.engine.Summarize(ctx, account, f)
}

func (s *ExpenseService) MonthYears(ctx context.Context, account core.Account) ([]core.MonthYear, error) {
	return s.engine.DistinctMonthYears(ctx, account)
}

// Update applies a partial update and returns the post-update record.
func (s *ExpenseService) Update(ctx context.Context, account core.Account, id string, p core.Patch) (core.Expense, error) {
	if err := core.ValidateID(id); err != nil {
		return core.Expense{}, err
	}
	p, err := p.Normalize()
	if err != nil {
		return core.Expense{}, err
	}
	updated, err := s.store.UpdateFields(ctx, account, id, p)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.EventUpdated, account, updated)
	return updated, nil
}

// Delete removes the record permanently.
func (s *ExpenseService) Delete(ctx context.Context, account core.Account, id string) error {
	deleted, err := s.store.DeleteByID(ctx, account, id)
	if err != nil {
		return err
	}
	if !deleted {
		return core.ErrNotFound
	}
	s.publish(ctx, amqp.EventDeleted, account, core.Expense{ID: id})
	return nil
}

// Ping reports whether the store is reachable.
func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish never fails the caller: the write already succeeded.
func (s *ExpenseService) publish(ctx context.Context, t amqp.EventType, account core.Account, e core.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(t, account, e)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"event_type", t,
			"account", account.String(),
			"expense_id", e.ID,
			"error", err)
	}
}
