package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/query"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	sheetsmem "expensetracker/internal/sheets/memory"
	"expensetracker/internal/worker"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "compute summaries without writing to Google Sheets")
	accountsFlag := flag.String("accounts", "", "comma-separated accounts to export once at startup")
	flag.Parse()

	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	if *dryRun {
		cli.ValidateOrExit(logger, cfg, validateDryRun)
	} else {
		cli.ValidateOrExit(logger, cfg, (*config.Config).ValidateWorker)
	}

	accounts, err := parseAccounts(*accountsFlag)
	if err != nil {
		logger.Error("Invalid -accounts flag", log.FieldError, err.Error())
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.Events == nil {
		logger.Error("AMQP broker unreachable, the export worker cannot start", "amqp_queue", cfg.AMQPQueue)
		_ = res.Cleanup()
		os.Exit(1)
	}

	var writer sheets.SummaryWriter
	if *dryRun {
		writer = sheetsmem.New()
		logger.Info("Dry run: summaries are computed but not written")
	} else {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetSuffix:     cfg.GoogleSummarySheetSuffix,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			_ = res.Cleanup()
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	exporter := worker.NewExportWorker(query.New(res.Store), writer)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err.Error())
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	if len(accounts) > 0 {
		g.Go(func() error {
			if err := exporter.ExportAll(gctx, accounts); err != nil {
				logger.Warn("Startup export incomplete", log.FieldError, err.Error())
			}
			return nil
		})
	}
	g.Go(func() error {
		return consume(gctx, logger, res.Events, exporter)
	})

	logger.Info("Starting expense-worker", "queue", cfg.AMQPQueue, "dry_run", *dryRun)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// consume restarts the consumer with backoff until ctx is cancelled.
func consume(ctx context.Context, logger *log.Logger, events *amqp.Client, exporter *worker.ExportWorker) error {
	for attempt := 0; ; attempt++ {
		err := events.ConsumeExpenseEvents(ctx, func(ctx context.Context, ev *amqp.ExpenseEvent) error {
			logger.DebugContext(ctx, "Expense event received",
				"event_type", ev.Type,
				log.FieldAccount, ev.Account,
				log.FieldExpenseID, ev.ExpenseID)
			return exporter.HandleEvent(ctx, ev)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := amqp.Backoff(attempt)
		logger.Warn("Consumer stopped, retrying", log.FieldError, err.Error(), "retry_in", wait.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func validateDryRun(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.EventsEnabled() {
		return errors.New("AMQP_URL is required for the export worker")
	}
	return nil
}

func parseAccounts(s string) ([]core.Account, error) {
	var out []core.Account
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		a, err := core.ParseAccount(part)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
