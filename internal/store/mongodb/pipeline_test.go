package mongodb

import (
	"errors"
	"testing"
	"time"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage[0].Key
	}
	return names
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSummaryPipelineStages(t *testing.T) {
	got := stageNames(SummaryPipeline(core.Filter{}))
	if want := []string{"$group", "$project", "$sort"}; !equal(got, want) {
		t.Fatalf("unfiltered stages = %v, want %v", got, want)
	}

	month := 3
	p := SummaryPipeline(core.Filter{Month: &month})
	got = stageNames(p)
	if want := []string{"$match", "$group", "$project", "$sort"}; !equal(got, want) {
		t.Fatalf("filtered stages = %v, want %v", got, want)
	}
	match := p[0][0].Value.(bson.D)
	if len(match) != 1 || match[0].Key != "month" || match[0].Value != 3 {
		t.Fatalf("unexpected $match: %v", match)
	}

	sort := p[3][0].Value.(bson.D)
	var keys []string
	for _, e := range sort {
		keys = append(keys, e.Key)
	}
	if !equal(keys, []string{"year", "month", "category"}) {
		t.Fatalf("sort keys = %v", keys)
	}
}

func TestPeriodsPipelineStages(t *testing.T) {
	got := stageNames(PeriodsPipeline())
	if want := []string{"$group", "$project", "$sort"}; !equal(got, want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
}

func TestFilterDocument(t *testing.T) {
	if doc := FilterDocument(core.Filter{}); len(doc) != 0 {
		t.Fatalf("empty filter should match all, got %v", doc)
	}
	month, year := 1, 2024
	doc := FilterDocument(core.Filter{Month: &month, Year: &year})
	if len(doc) != 2 || doc[0].Key != "month" || doc[1].Key != "year" {
		t.Fatalf("unexpected filter doc: %v", doc)
	}
}

func TestUpdateDocument(t *testing.T) {
	if _, err := UpdateDocument(core.Patch{}); !errors.Is(err, core.ErrNoFieldsProvided) {
		t.Fatalf("expected ErrNoFieldsProvided, got %v", err)
	}

	amount := decimal.RequireFromString("12.30")
	d := core.NewDate(2024, 2, 29)
	p, err := core.Patch{Amount: &amount, Date: &d}.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	upd, err := UpdateDocument(p)
	if err != nil {
		t.Fatalf("update doc: %v", err)
	}
	set := upd[0].Value.(bson.D)
	keys := make([]string, 0, len(set))
	for _, e := range set {
		keys = append(keys, e.Key)
	}
	if !equal(keys, []string{"amount", "date", "month", "year"}) {
		t.Fatalf("set keys = %v", keys)
	}
	if _, ok := set[0].Value.(primitive.Decimal128); !ok {
		t.Fatalf("amount should be Decimal128, got %T", set[0].Value)
	}
}

func TestDocumentRoundTripKeepsDecimal(t *testing.T) {
	e := core.Expense{
		Amount:      decimal.RequireFromString("1234.56"),
		Date:        core.NewDate(2024, 1, 15),
		Month:       1,
		Year:        2024,
		Category:    "Bill",
		CreatedDate: time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC),
	}
	doc, err := toDocument(primitive.NewObjectID(), e)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back expenseDocument
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	got, err := back.toExpense()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(e.Amount) || got.Date != e.Date || got.ID != doc.ID.Hex() {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLegacyNumericAmounts(t *testing.T) {
	for _, amount := range []any{19.5, int32(20), int64(21)} {
		raw, err := bson.Marshal(bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "amount", Value: amount},
			{Key: "date", Value: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
			{Key: "month", Value: 1},
			{Key: "year", Value: 2024},
			{Key: "category", Value: "Bill"},
		})
		if err != nil {
			t.Fatal(err)
		}
		var doc expenseDocument
		if err := bson.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("%T: %v", amount, err)
		}
		e, err := doc.toExpense()
		if err != nil {
			t.Fatalf("%T: %v", amount, err)
		}
		if !e.Amount.IsPositive() {
			t.Fatalf("%T decoded to %s", amount, e.Amount)
		}
	}
}
