package mongodb

import (
	"fmt"
	"time"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// expenseDocument is the stored shape of an expense. Amount is written as
// Decimal128; older documents may hold a double or an integer instead.
type expenseDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Amount      any                `bson:"amount"`
	Date        time.Time          `bson:"date"`
	Month       int                `bson:"month"`
	Year        int                `bson:"year"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	CreatedDate time.Time          `bson:"created_date"`
}

type aggregationDocument struct {
	Month       int    `bson:"month"`
	Year        int    `bson:"year"`
	Category    string `bson:"category"`
	TotalAmount any    `bson:"total_amount"`
}

func toDocument(id primitive.ObjectID, e core.Expense) (expenseDocument, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return expenseDocument{}, err
	}
	return expenseDocument{
		ID:          id,
		Amount:      amount,
		Date:        e.Date.Time,
		Month:       e.Month,
		Year:        e.Year,
		Category:    e.Category,
		Description: e.Description,
		CreatedDate: e.CreatedDate.UTC(),
	}, nil
}

func (d expenseDocument) toExpense() (core.Expense, error) {
	amount, err := fromBSONNumber(d.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", d.ID.Hex(), err)
	}
	return core.Expense{
		ID:          d.ID.Hex(),
		Amount:      amount,
		Date:        core.DateOf(d.Date.UTC()),
		Month:       d.Month,
		Year:        d.Year,
		Category:    d.Category,
		Description: d.Description,
		CreatedDate: d.CreatedDate.UTC(),
	}, nil
}

func (d aggregationDocument) toRow() (core.AggregationRow, error) {
	total, err := fromBSONNumber(d.TotalAmount)
	if err != nil {
		return core.AggregationRow{}, err
	}
	return core.AggregationRow{Month: d.Month, Year: d.Year, Category: d.Category, TotalAmount: total}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return v, nil
}

// fromBSONNumber accepts every numeric type a decoded amount can have.
func fromBSONNumber(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case primitive.Decimal128:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("decode amount %s: %w", n, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

// FilterDocument builds the match document for a period filter.
func FilterDocument(f core.Filter) bson.D {
	doc := bson.D{}
	if f.Month != nil {
		doc = append(doc, bson.E{Key: "month", Value: *f.Month})
	}
	if f.Year != nil {
		doc = append(doc, bson.E{Key: "year", Value: *f.Year})
	}
	return doc
}

// UpdateDocument builds the $set update for a normalized patch.
func UpdateDocument(p core.Patch) (bson.D, error) {
	set := bson.D{}
	if p.Amount != nil {
		amount, err := toDecimal128(*p.Amount)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "amount", Value: amount})
	}
	if p.Date != nil {
		set = append(set, bson.E{Key: "date", Value: p.Date.Time})
	}
	if p.Month != nil {
		set = append(set, bson.E{Key: "month", Value: *p.Month})
	}
	if p.Year != nil {
		set = append(set, bson.E{Key: "year", Value: *p.Year})
	}
	if p.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *p.Category})
	}
	if p.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *p.Description})
	}
	if len(set) == 0 {
		return nil, core.ErrNoFieldsProvided
	}
	return bson.D{{Key: "$set", Value: set}}, nil
}
