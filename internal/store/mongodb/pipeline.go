package mongodb

import (
	"expensetracker/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SummaryPipeline groups by (month, year, category), sums amounts and sorts
// by year, month, category. The $match stage is present only when the
// filter restricts something.
func SummaryPipeline(f core.Filter) mongo.Pipeline {
	var p mongo.Pipeline
	if !f.IsZero() {
		p = append(p, bson.D{{Key: "$match", Value: FilterDocument(f)}})
	}
	return append(p,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "month", Value: "$month"},
				{Key: "year", Value: "$year"},
				{Key: "category", Value: "$category"},
			}},
			{Key: "total_amount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "month", Value: "$_id.month"},
			{Key: "year", Value: "$_id.year"},
			{Key: "category", Value: "$_id.category"},
			{Key: "total_amount", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "year", Value: 1},
			{Key: "month", Value: 1},
			{Key: "category", Value: 1},
		}}},
	)
}

// PeriodsPipeline yields the distinct (month, year) pairs sorted ascending.
func PeriodsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "month", Value: "$month"},
				{Key: "year", Value: "$year"},
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "month", Value: "$_id.month"},
			{Key: "year", Value: "$_id.year"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "year", Value: 1},
			{Key: "month", Value: 1},
		}}},
	}
}
