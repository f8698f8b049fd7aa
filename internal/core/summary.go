package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AggregationRow is the summed amount of one (month, year, category) group.
type AggregationRow struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// MonthYear identifies a reporting period.
type MonthYear struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Less orders periods by year, then month.
func (p MonthYear) Less(o MonthYear) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Label renders the period as "M-YYYY".
func (p MonthYear) Label() string {
	return fmt.Sprintf("%d-%d", p.Month, p.Year)
}

// Period returns the (month, year) pair of the row.
func (r AggregationRow) Period() MonthYear {
	return MonthYear{Month: r.Month, Year: r.Year}
}

// Less orders rows by year, month, then category.
func (r AggregationRow) Less(o AggregationRow) bool {
	if r.Year != o.Year {
		return r.Year < o.Year
	}
	if r.Month != o.Month {
		return r.Month < o.Month
	}
	return r.Category < o.Category
}
