// Package mongodb is the document database backend of the record store.
// Each account maps to its own collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping mongo: %v", core.ErrStoreUnavailable, err)
	}
	slog.InfoContext(ctx, "Connected to MongoDB", "database", database)
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) coll(account core.Account) *mongo.Collection {
	return s.db.Collection(account.String())
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) Insert(ctx context.Context, account core.Account, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	doc, err := toDocument(primitive.NewObjectID(), e)
	if err != nil {
		return "", err
	}
	if _, err := s.coll(account).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to MongoDB",
		"id", doc.ID.Hex(),
		"account", account.String(),
		"month", e.Month,
		"year", e.Year)
	return doc.ID.Hex(), nil
}

func (s *Store) FindByID(ctx context.Context, account core.Account, id string) (core.Expense, error) {
	oid, err := core.ParseID(id)
	if err != nil {
		return core.Expense{}, err
	}
	var doc expenseDocument
	err = s.coll(account).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return doc.toExpense()
}

// FindAll returns matching records ordered by _id, which follows insertion.
func (s *Store) FindAll(ctx context.Context, account core.Account, f core.Filter) ([]core.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll(account).Find(ctx, FilterDocument(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	var docs []expenseDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(docs))
	for _, d := range docs {
		e, err := d.toExpense()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) UpdateFields(ctx context.Context, account core.Account, id string, p core.Patch) (core.Expense, error) {
	oid, err := core.ParseID(id)
	if err != nil {
		return core.Expense{}, err
	}
	update, err := UpdateDocument(p)
	if err != nil {
		return core.Expense{}, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc expenseDocument
	err = s.coll(account).FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", id, err)
	}
	return doc.toExpense()
}

func (s *Store) DeleteByID(ctx context.Context, account core.Account, id string) (bool, error) {
	oid, err := core.ParseID(id)
	if err != nil {
		return false, err
	}
	res, err := s.coll(account).DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, fmt.Errorf("delete expense %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

// Summarize runs the grouping pipeline inside the server.
func (s *Store) Summarize(ctx context.Context, account core.Account, f core.Filter) ([]core.AggregationRow, error) {
	cur, err := s.coll(account).Aggregate(ctx, SummaryPipeline(f))
	if err != nil {
		return nil, fmt.Errorf("aggregate summary: %w", err)
	}
	var docs []aggregationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	rows := make([]core.AggregationRow, 0, len(docs))
	for _, d := range docs {
		row, err := d.toRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) DistinctMonthYears(ctx context.Context, account core.Account) ([]core.MonthYear, error) {
	cur, err := s.coll(account).Aggregate(ctx, PeriodsPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate periods: %w", err)
	}
	periods := make([]core.MonthYear, 0)
	if err := cur.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("decode periods: %w", err)
	}
	return periods, nil
}
