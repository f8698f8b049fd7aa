package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Accepted input layouts for Date, most specific last.
var dateInputLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

type (
	// Date is a calendar date. The time part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Expense is a single stored expense record.
	Expense struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Month       int             `json:"month"`
		Year        int             `json:"year"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		CreatedDate time.Time       `json:"created_date"`
	}

	// NewExpense carries the caller-supplied fields of a create request.
	// Month and Year are accepted on the wire but ignored; they are always
	// derived from Date.
	NewExpense struct {
		Amount      *decimal.Decimal `json:"amount"`
		Date        *Date            `json:"date"`
		Month       *int             `json:"month,omitempty"`
		Year        *int             `json:"year,omitempty"`
		Category    string           `json:"category"`
		Description *string          `json:"description,omitempty"`
	}

	// Patch is a partial update. Nil fields are left untouched.
	Patch struct {
		Amount      *decimal.Decimal `json:"amount,omitempty"`
		Date        *Date            `json:"date,omitempty"`
		Month       *int             `json:"month,omitempty"`
		Year        *int             `json:"year,omitempty"`
		Category    *string          `json:"category,omitempty"`
		Description *string          `json:"description,omitempty"`
	}
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a calendar date, accepting plain dates and timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// Month returns the month as an int in [1,12].
func (d Date) Month() int {
	return int(d.Time.Month())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

// Supported calendar range. Presence is tracked by the pointer fields of
// NewExpense and Patch, so the zero Date (0001-01-01) is simply out of range.
const (
	minDateYear = 1900
	maxDateYear = 9999
)

// Validate rejects dates outside 1900-01-01..9999-12-31.
func (d Date) Validate() error {
	if y := d.Year(); y < minDateYear || y > maxDateYear {
		return NewValidationError("date", fmt.Sprintf("date %s out of range %d-01-01..%d-12-31", d, minDateYear, maxDateYear))
	}
	return nil
}

// MarshalJSON writes null only for the unset Date, which never validates.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the fields a stored expense must always carry.
func (e Expense) Validate() error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Month < 1 || e.Month > 12 {
		return NewValidationError("month", fmt.Sprintf("month %d out of range 1-12", e.Month))
	}
	if strings.TrimSpace(e.Category) == "" {
		return NewValidationError("category", "category is required")
	}
	return nil
}

// Period returns the (month, year) pair the expense is grouped under.
func (e Expense) Period() MonthYear {
	return MonthYear{Month: e.Month, Year: e.Year}
}

// Build turns a create request into an expense ready for insertion.
// Month and Year are derived from Date; CreatedDate is set to now.
func (n NewExpense) Build(now time.Time) (Expense, error) {
	if n.Amount == nil {
		return Expense{}, NewValidationError("amount", "amount is required")
	}
	if n.Date == nil {
		return Expense{}, NewValidationError("date", "date is required")
	}
	e := Expense{
		Amount:      *n.Amount,
		Date:        *n.Date,
		Month:       n.Date.Month(),
		Year:        n.Date.Year(),
		Category:    strings.TrimSpace(n.Category),
		CreatedDate: now.UTC(),
	}
	if n.Description != nil {
		e.Description = *n.Description
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// Empty reports whether the patch carries no updatable field.
// Month and Year alone do not count: they follow Date.
func (p Patch) Empty() bool {
	return p.Amount == nil && p.Date == nil && p.Category == nil && p.Description == nil
}

// Normalize validates present fields and derives Month/Year from Date.
// Caller-supplied Month/Year are discarded.
func (p Patch) Normalize() (Patch, error) {
	if p.Empty() {
		return Patch{}, ErrNoFieldsProvided
	}
	out := Patch{
		Amount:      p.Amount,
		Date:        p.Date,
		Description: p.Description,
	}
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			return Patch{}, err
		}
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return Patch{}, err
		}
		month, year := p.Date.Month(), p.Date.Year()
		out.Month, out.Year = &month, &year
	}
	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		if category == "" {
			return Patch{}, NewValidationError("category", "category cannot be empty")
		}
		out.Category = &category
	}
	return out, nil
}

// Apply returns e with the patch fields replaced. The patch must be normalized.
func (p Patch) Apply(e Expense) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Month != nil {
		e.Month = *p.Month
	}
	if p.Year != nil {
		e.Year = *p.Year
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	return e
}
