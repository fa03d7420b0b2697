// Package migrator loads a lexicon source document into the relational
// store: parse, flatten every top-level entry, persist all records in a
// single transaction.
package migrator

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/sanskrit-lexicon/internal/config"
	"github.com/heartmarshall/sanskrit-lexicon/internal/domain"
	"github.com/heartmarshall/sanskrit-lexicon/internal/markup"
	"github.com/heartmarshall/sanskrit-lexicon/pkg/ctxutil"
)

// RootTag names the synthetic element wrapped around the source entries.
const RootTag = "root"

// TxRunner runs a unit of work atomically.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LexiconRepo persists flattened entries.
type LexiconRepo interface {
	SaveEntry(ctx context.Context, rec domain.EntryRecords) error
	HasHeadwords(ctx context.Context) (bool, error)
}

// Flattener turns one entry element into records; ok=false skips the entry.
type Flattener interface {
	Flatten(entry markup.Node, position int) (rec domain.EntryRecords, ok bool, err error)
}

// Report summarizes a finished run.
type Report struct {
	EntriesSeen int
	Skipped     int
	Rows        domain.TableCounts
	DryRun      bool
	Duration    time.Duration
}

// Migrator drives one document through parse, flatten and store. tx and repo
// may be nil when cfg.DryRun is set.
type Migrator struct {
	log       *slog.Logger
	tx        TxRunner
	repo      LexiconRepo
	flattener Flattener
	cfg       config.MigrationConfig
}

// New creates a Migrator.
func New(log *slog.Logger, tx TxRunner, repo LexiconRepo, flattener Flattener, cfg config.MigrationConfig) *Migrator {
	return &Migrator{
		log:       log,
		tx:        tx,
		repo:      repo,
		flattener: flattener,
		cfg:       cfg,
	}
}

// Migrate loads the document at path. The whole document is parsed before
// the transaction opens; a malformed document therefore never touches the
// store. Entries are numbered 1, 2, 3, ... in document order, skipped ones
// included. Any flatten or insert failure rolls back every row of the
// document and is returned with the failing position.
func (m *Migrator) Migrate(ctx context.Context, path string) (Report, error) {
	start := time.Now()
	log := m.logger(ctx)

	root, err := loadDocument(path)
	if err != nil {
		log.Error("load source document", slog.String("path", path), slog.String("error", err.Error()))
		return Report{}, err
	}
	entries := root.Children()
	log.Info("source document parsed", slog.String("path", path), slog.Int("entries", len(entries)))

	var report Report
	if m.cfg.DryRun {
		report, err = m.process(ctx, entries, func(context.Context, domain.EntryRecords) error { return nil })
		if err != nil {
			return Report{}, fmt.Errorf("migrate %s: %w", path, err)
		}
		report.DryRun = true
	} else {
		err = m.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if m.cfg.RequireEmpty {
				has, err := m.repo.HasHeadwords(txCtx)
				if err != nil {
					return fmt.Errorf("check existing data: %w", err)
				}
				if has {
					return fmt.Errorf("%w: headwords table is not empty", domain.ErrAlreadyMigrated)
				}
			}

			r, err := m.process(txCtx, entries, m.repo.SaveEntry)
			report = r
			return err
		})
		if err != nil {
			log.Error("migration rolled back", slog.String("path", path), slog.String("error", err.Error()))
			return Report{}, fmt.Errorf("migrate %s: %w", path, err)
		}
	}

	report.Duration = time.Since(start)
	log.Info("migration completed",
		slog.String("path", path),
		slog.Bool("dry_run", report.DryRun),
		slog.Int("entries", report.EntriesSeen),
		slog.Int("skipped", report.Skipped),
		slog.Int("headwords", report.Rows.Headwords),
		slog.Int("definitions", report.Rows.Definitions),
		slog.Int("sanskrit_forms", report.Rows.SanskritForms),
		slog.Int("abbreviations", report.Rows.Abbreviations),
		slog.Int("sources", report.Rows.Sources),
		slog.Int("lexical_categories", report.Rows.LexicalCategories),
		slog.Int("metadata", report.Rows.Metadata),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

// process flattens entries in order and hands every kept entry to save.
func (m *Migrator) process(ctx context.Context, entries []markup.Node, save func(context.Context, domain.EntryRecords) error) (Report, error) {
	var report Report
	log := m.logger(ctx)
	position := 0

	for _, entry := range entries {
		position++

		rec, ok, err := m.flattener.Flatten(entry, position)
		if err != nil {
			return report, fmt.Errorf("entry %d <%s>: %w", position, entry.Tag(), err)
		}
		if !ok {
			report.Skipped++
			log.Debug("entry skipped", slog.Int("position", position), slog.String("tag", entry.Tag()))
			continue
		}

		if err := save(ctx, rec); err != nil {
			return report, fmt.Errorf("entry %d (%s): %w", position, rec.Headword.Key1, err)
		}
		report.Rows.Add(rec)

		if m.cfg.ProgressEvery > 0 && position%m.cfg.ProgressEvery == 0 {
			log.Info("migration progress",
				slog.Int("position", position),
				slog.Int("of", len(entries)),
				slog.Int("rows", report.Rows.Total()),
			)
		}
	}

	report.EntriesSeen = position
	return report, nil
}

// logger tags records with the run ID carried by ctx, if any.
func (m *Migrator) logger(ctx context.Context) *slog.Logger {
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		return m.log.With(slog.String("run_id", id.String()))
	}
	return m.log
}

func loadDocument(path string) (markup.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return markup.Node{}, fmt.Errorf("open source document: %w", err)
	}
	defer f.Close()

	root, err := markup.ParseFragment(bufio.NewReader(f), RootTag)
	if err != nil {
		return markup.Node{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return root, nil
}
