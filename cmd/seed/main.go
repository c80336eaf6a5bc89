// Command seed loads breed and category fixtures into the database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dogbreeds-graphql/internal/config"
	"dogbreeds-graphql/internal/dbexec"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/migrations"
	"dogbreeds-graphql/internal/seed"
	"dogbreeds-graphql/internal/store"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	dataDir := pflag.String("data-dir", "seed-data", "Directory holding categories.json and breed files")
	migrate := pflag.Bool("migrate", false, "Apply schema migrations before seeding")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}).WithComponent("seed")
	slog.SetDefault(logger.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := seed.LoadDir(*dataDir, logger)
	if err != nil {
		return err
	}
	logger.Info("fixtures loaded",
		slog.String("dir", *dataDir),
		slog.Int("categories", len(data.Categories)),
		slog.Int("breeds", len(data.Breeds)),
	)

	dsn, err := cfg.Database.DSN()
	if err != nil {
		return err
	}
	driverName := cfg.Database.DriverName()
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database not reachable at %s: %w", cfg.Database.RedactedDSN(), err)
	}

	if *migrate || cfg.Database.AutoMigrate {
		if err := migrations.Up(db, driverName); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	dialect, err := store.DialectFor(driverName)
	if err != nil {
		return err
	}
	exec := dbexec.NewStandardExecutor(db)

	report, err := seed.New(logger).Run(ctx, exec, store.New(exec, dialect), data)
	if err != nil {
		return err
	}
	logger.Info("seeding complete",
		slog.Int("categories_created", report.CategoriesCreated),
		slog.Int("breeds_created", report.BreedsCreated),
		slog.Int("breeds_skipped", report.BreedsSkipped),
		slog.Int("breeds_invalid", report.BreedsInvalid),
	)
	return nil
}
