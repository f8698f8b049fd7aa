package core

import "fmt"

// Filter restricts queries by period. Nil fields match everything.
type Filter struct {
	Month *int
	Year  *int
}

// NewFilter builds a filter and checks the month range.
func NewFilter(month, year *int) (Filter, error) {
	f := Filter{Month: month, Year: year}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// PeriodFilter matches exactly one (month, year) pair.
func PeriodFilter(p MonthYear) Filter {
	month, year := p.Month, p.Year
	return Filter{Month: &month, Year: &year}
}

func (f Filter) Validate() error {
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		return NewValidationError("month", fmt.Sprintf("month %d out of range 1-12", *f.Month))
	}
	return nil
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f.Month == nil && f.Year == nil
}

// Match reports whether e satisfies the filter.
func (f Filter) Match(e Expense) bool {
	if f.Month != nil && e.Month != *f.Month {
		return false
	}
	if f.Year != nil && e.Year != *f.Year {
		return false
	}
	return true
}
