// Command migrate loads a Cologne-style Sanskrit lexicon document into
// PostgreSQL. The whole document is written in one transaction: either every
// entry lands or none does.
//
// Flags:
//
//	--file     path to the source document (overrides MIGRATION_SOURCE_PATH)
//	--dry-run  parse and flatten without touching the database
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/heartmarshall/sanskrit-lexicon/internal/app"
)

func main() {
	fileFlag := flag.String("file", "", "path to the source document (default: MIGRATION_SOURCE_PATH)")
	dryRunFlag := flag.Bool("dry-run", false, "parse and flatten without writing to the database")
	flag.Parse()

	err := app.Run(context.Background(), app.Overrides{
		SourcePath: *fileFlag,
		DryRun:     *dryRunFlag,
	})
	if err != nil {
		slog.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
