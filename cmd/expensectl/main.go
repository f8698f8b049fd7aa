// Command expensectl is a terminal front end for the expense API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/dashboard"
)

const usage = `usage: expensectl [-api URL] -account NAME <command> [flags]

commands:
  summary  [-month M] [-year Y] [-details]   pivot of totals by category and period
  list     [-month M] [-year Y]              records, newest first
  periods                                    distinct (month, year) pairs
  get      ID
  create   -amount A -category C [-date YYYY-MM-DD] [-description D]
  update   ID [-amount A] [-category C] [-date YYYY-MM-DD] [-description D]
  delete   ID
`

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.APIBaseURL, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, defaultAPI string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("expensectl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	api := fs.String("api", defaultAPI, "expense API base URL")
	account := fs.String("account", os.Getenv("EXPENSE_ACCOUNT"), "account (collection) name")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if fs.NArg() == 0 {
		return errors.New(usage)
	}

	acct, err := core.ParseAccount(*account)
	if err != nil {
		return err
	}
	client, err := dashboard.NewClient(*api, acct)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "summary":
		return runSummary(ctx, client, rest, out)
	case "list":
		return runList(ctx, client, rest, out)
	case "periods":
		return runPeriods(ctx, client, out)
	case "get":
		return runGet(ctx, client, rest, out)
	case "create":
		return runCreate(ctx, client, rest, out)
	case "update":
		return runUpdate(ctx, client, rest, out)
	case "delete":
		return runDelete(ctx, client, rest, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// periodFlags registers -month and -year and returns a filter builder.
func periodFlags(fs *flag.FlagSet) func() (core.Filter, error) {
	month := fs.Int("month", 0, "month 1-12")
	year := fs.Int("year", 0, "year")
	return func() (core.Filter, error) {
		var f core.Filter
		fs.Visit(func(fl *flag.Flag) {
			switch fl.Name {
			case "month":
				f.Month = month
			case "year":
				f.Year = year
			}
		})
		return f, f.Validate()
	}
}

func runSummary(ctx context.Context, c *dashboard.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	filter := periodFlags(fs)
	details := fs.Bool("details", false, "append the matching records")
	concurrency := fs.Int("concurrency", 4, "parallel period queries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}

	state := dashboard.Select(dashboard.InitialState(), dashboard.Action{Kind: dashboard.Navigate, View: dashboard.ViewSummary})
	fmt.Fprintf(out, "%s / %s\n\n", c.Account(), state.View)

	report := dashboard.BuildReport(ctx, c, f, dashboard.ReportOptions{Concurrency: *concurrency, Details: *details})
	return dashboard.RenderReport(out, report)
}

func runList(ctx context.Context, c *dashboard.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	filter := periodFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}

	var items []core.Expense
	if f.IsZero() {
		items, err = c.List(ctx)
	} else {
		items, err = c.ListByMonthYear(ctx, f)
	}
	if err != nil {
		return err
	}
	slices.SortStableFunc(items, func(a, b core.Expense) int { return b.Date.Compare(a.Date.Time) })
	return dashboard.RenderExpenses(out, items)
}

func runPeriods(ctx context.Context, c *dashboard.Client, out io.Writer) error {
	periods, err := c.MonthYears(ctx)
	if err != nil {
		return err
	}
	for _, p := range periods {
		fmt.Fprintln(out, p.Label())
	}
	return nil
}

func runGet(ctx context.Context, c *dashboard.Client, args []string, out io.Writer) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	e, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	return dashboard.RenderExpenses(out, []core.Expense{e})
}

func runCreate(ctx context.Context, c *dashboard.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	date := fs.String("date", time.Now().Format("2006-01-02"), "date YYYY-MM-DD")
	category := fs.String("category", "", "category")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amt, err := core.ParseAmount(*amount)
	if err != nil {
		return err
	}
	d, err := core.ParseDate(*date)
	if err != nil {
		return err
	}
	req := core.NewExpense{Amount: &amt, Date: &d, Category: *category}
	if *description != "" {
		req.Description = description
	}

	e, err := c.Create(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s\n", e.ID)
	return dashboard.RenderExpenses(out, []core.Expense{e})
}

func runUpdate(ctx context.Context, c *dashboard.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("update requires an expense ID")
	}
	id, args := args[0], args[1:]

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	amount := fs.String("amount", "", "new amount")
	date := fs.String("date", "", "new date YYYY-MM-DD")
	category := fs.String("category", "", "new category")
	description := fs.String("description", "", "new description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var p core.Patch
	var parseErr error
	fs.Visit(func(fl *flag.Flag) {
		if parseErr != nil {
			return
		}
		switch fl.Name {
		case "amount":
			amt, err := core.ParseAmount(*amount)
			parseErr = err
			p.Amount = &amt
		case "date":
			d, err := core.ParseDate(*date)
			parseErr = err
			p.Date = &d
		case "category":
			p.Category = category
		case "description":
			p.Description = description
		}
	})
	if parseErr != nil {
		return parseErr
	}

	state := dashboard.Select(dashboard.InitialState(), dashboard.Action{Kind: dashboard.Navigate, View: dashboard.ViewUpdate})
	state = dashboard.Select(state, dashboard.Action{Kind: dashboard.Target, ID: id})

	current, err := c.Get(ctx, state.TargetID)
	if err != nil {
		return err
	}
	state = dashboard.Select(state, dashboard.Action{Kind: dashboard.Loaded, Expense: &current})
	fmt.Fprintln(out, "before:")
	if err := dashboard.RenderExpenses(out, []core.Expense{*state.Fetched}); err != nil {
		return err
	}

	updated, err := c.Update(ctx, state.TargetID, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "after:")
	return dashboard.RenderExpenses(out, []core.Expense{updated})
}

func runDelete(ctx context.Context, c *dashboard.Client, args []string, out io.Writer) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	state := dashboard.Select(dashboard.InitialState(), dashboard.Action{Kind: dashboard.Navigate, View: dashboard.ViewDelete})
	state = dashboard.Select(state, dashboard.Action{Kind: dashboard.Target, ID: id})

	msg, err := c.Delete(ctx, state.TargetID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, msg)
	return nil
}

func singleID(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("exactly one expense ID is required")
	}
	return args[0], nil
}
