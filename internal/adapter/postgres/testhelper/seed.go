package testhelper

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LexiconTables lists the lexicon tables, children first.
var LexiconTables = []string{
	"metadata", "lexical_categories", "sources", "abbreviations",
	"sanskrit_forms", "definitions", "headwords",
}

// TruncateLexicon empties every lexicon table.
func TruncateLexicon(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`TRUNCATE metadata, lexical_categories, sources, abbreviations, sanskrit_forms, definitions, headwords`)
	if err != nil {
		t.Fatalf("testhelper: truncate lexicon tables: %v", err)
	}
}

// CountRows returns the number of rows in table. table must be one of
// LexiconTables.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), `SELECT count(*) FROM `+table).Scan(&n); err != nil {
		t.Fatalf("testhelper: count %s: %v", table, err)
	}
	return n
}
