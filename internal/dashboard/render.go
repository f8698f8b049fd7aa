package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"expensetracker/internal/core"
	"expensetracker/internal/pivot"
)

// RenderMatrix writes the pivot as an aligned table.
func RenderMatrix(w io.Writer, m pivot.Matrix) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, line := range m.Strings() {
		fmt.Fprintln(tw, strings.Join(line, "\t")+"\t")
	}
	return tw.Flush()
}

// RenderExpenses writes records newest first as shown by the detail view.
func RenderExpenses(w io.Writer, items []core.Expense) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
	for _, e := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Date.Format("02-01-2006"),
			pivot.FormatAmount(e.Amount),
			e.Category,
			e.Description,
			e.ID)
	}
	return tw.Flush()
}

// RenderReport writes the matrix, the optional detail table and warnings.
func RenderReport(w io.Writer, r Report) error {
	if err := RenderMatrix(w, r.Matrix); err != nil {
		return err
	}
	if r.Details != nil {
		fmt.Fprintln(w)
		if err := RenderExpenses(w, r.Details); err != nil {
			return err
		}
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}
