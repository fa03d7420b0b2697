package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/sanskrit-lexicon/internal/adapter/postgres"
	"github.com/heartmarshall/sanskrit-lexicon/internal/adapter/postgres/lexicon"
	"github.com/heartmarshall/sanskrit-lexicon/internal/app/migrator"
	"github.com/heartmarshall/sanskrit-lexicon/internal/config"
	"github.com/heartmarshall/sanskrit-lexicon/internal/flatten"
	"github.com/heartmarshall/sanskrit-lexicon/pkg/ctxutil"
)

// Compile-time interface assertions.
var (
	_ migrator.LexiconRepo = (*lexicon.Repo)(nil)
	_ migrator.TxRunner    = (*postgres.TxManager)(nil)
	_ migrator.Flattener   = (*flatten.Flattener)(nil)
)

// Overrides are command-line values that take precedence over config.
type Overrides struct {
	SourcePath string
	DryRun     bool
}

func (o Overrides) apply(cfg *config.Config) {
	if o.SourcePath != "" {
		cfg.Migration.SourcePath = o.SourcePath
	}
	if o.DryRun {
		cfg.Migration.DryRun = true
	}
}

// Run is the application entry point. It loads configuration, initializes
// the logger, prepares the schema and migrates the configured document.
func Run(ctx context.Context, o Overrides) error {
	cfg, err := config.Load(o.apply)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)

	runID := uuid.New()
	ctx = ctxutil.WithRunID(ctx, runID)
	ctx, cancel := context.WithTimeout(ctx, cfg.Migration.Timeout)
	defer cancel()

	logger.Info("starting lexicon migration",
		slog.String("version", BuildVersion()),
		slog.String("env", cfg.App.Env),
		slog.String("run_id", runID.String()),
		slog.String("source", cfg.Migration.SourcePath),
	)

	flattener := flatten.New(flatten.DefaultVocabulary(), uuid.New)

	if cfg.Migration.DryRun {
		_, err := migrator.New(logger, nil, nil, flattener, cfg.Migration).Migrate(ctx, cfg.Migration.SourcePath)
		return err
	}

	if !cfg.Migration.SkipSchema {
		if err := postgres.CreateSchema(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	repo := lexicon.New(pool)
	m := migrator.New(logger, postgres.NewTxManager(pool), repo, flattener, cfg.Migration)
	if _, err := m.Migrate(ctx, cfg.Migration.SourcePath); err != nil {
		return err
	}

	counts, err := repo.CountRows(ctx)
	if err != nil {
		logger.Warn("count rows after migration", slog.String("error", err.Error()))
		return nil
	}
	logger.Info("store totals",
		slog.Int("headwords", counts.Headwords),
		slog.Int("definitions", counts.Definitions),
		slog.Int("rows", counts.Total()),
	)
	return nil
}
