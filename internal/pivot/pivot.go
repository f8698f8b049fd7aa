// Package pivot reshapes flat aggregation rows into a period by category
// matrix for display. It performs no I/O.
package pivot

import (
	"sort"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Row is one period of the matrix. Cells line up with Matrix.Categories.
type Row struct {
	Period core.MonthYear
	Label  string
	Cells  []decimal.Decimal
	Total  decimal.Decimal
}

// Matrix is the pivoted summary.
type Matrix struct {
	Categories   []string
	Rows         []Row
	ColumnTotals []decimal.Decimal
	GrandTotal   decimal.Decimal
}

// Build pivots rows. Categories become columns in ascending order, periods
// become rows ordered by year then month, and missing cells are zero.
// Duplicate (period, category) rows are added together.
func Build(rows []core.AggregationRow) Matrix {
	catIndex := map[string]int{}
	var categories []string
	periodSet := map[core.MonthYear]struct{}{}
	for _, r := range rows {
		if _, ok := catIndex[r.Category]; !ok {
			catIndex[r.Category] = 0
			categories = append(categories, r.Category)
		}
		periodSet[r.Period()] = struct{}{}
	}
	sort.Strings(categories)
	for i, c := range categories {
		catIndex[c] = i
	}

	periods := make([]core.MonthYear, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Less(periods[j]) })
	rowIndex := make(map[core.MonthYear]int, len(periods))

	m := Matrix{
		Categories:   categories,
		Rows:         make([]Row, len(periods)),
		ColumnTotals: zeros(len(categories)),
		GrandTotal:   decimal.Zero,
	}
	if m.Categories == nil {
		m.Categories = []string{}
	}
	for i, p := range periods {
		rowIndex[p] = i
		m.Rows[i] = Row{Period: p, Label: p.Label(), Cells: zeros(len(categories)), Total: decimal.Zero}
	}

	for _, r := range rows {
		row := &m.Rows[rowIndex[r.Period()]]
		col := catIndex[r.Category]
		row.Cells[col] = row.Cells[col].Add(r.TotalAmount)
		row.Total = row.Total.Add(r.TotalAmount)
		m.ColumnTotals[col] = m.ColumnTotals[col].Add(r.TotalAmount)
		m.GrandTotal = m.GrandTotal.Add(r.TotalAmount)
	}
	return m
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

// Header returns the column titles: period, categories, total.
func (m Matrix) Header() []string {
	h := make([]string, 0, len(m.Categories)+2)
	h = append(h, "Period")
	h = append(h, m.Categories...)
	return append(h, "Total")
}

// Strings renders the matrix with FormatAmount, header first and a totals
// line last.
func (m Matrix) Strings() [][]string {
	out := [][]string{m.Header()}
	for _, r := range m.Rows {
		line := []string{r.Label}
		for _, c := range r.Cells {
			line = append(line, FormatAmount(c))
		}
		out = append(out, append(line, FormatAmount(r.Total)))
	}
	totals := []string{"Total"}
	for _, c := range m.ColumnTotals {
		totals = append(totals, FormatAmount(c))
	}
	return append(out, append(totals, FormatAmount(m.GrandTotal)))
}

// Values is Strings with raw numbers instead of formatted text, for
// spreadsheet cells.
func (m Matrix) Values() [][]any {
	header := m.Header()
	out := make([][]any, 0, len(m.Rows)+2)
	hrow := make([]any, len(header))
	for i, h := range header {
		hrow[i] = h
	}
	out = append(out, hrow)
	for _, r := range m.Rows {
		line := []any{r.Label}
		for _, c := range r.Cells {
			line = append(line, c.InexactFloat64())
		}
		out = append(out, append(line, r.Total.InexactFloat64()))
	}
	totals := []any{"Total"}
	for _, c := range m.ColumnTotals {
		totals = append(totals, c.InexactFloat64())
	}
	return append(out, append(totals, m.GrandTotal.InexactFloat64()))
}

var printer = message.NewPrinter(language.English)

// FormatAmount rounds half to even to whole units and inserts thousands
// separators: 1234.5 -> "1,234", 1235.5 -> "1,236".
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.RoundBank(0).IntPart())
}
