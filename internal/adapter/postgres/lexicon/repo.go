// Package lexicon persists flattened dictionary entries into the seven
// lexicon tables.
package lexicon

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/sanskrit-lexicon/internal/adapter/postgres"
	"github.com/heartmarshall/sanskrit-lexicon/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo writes lexicon records. Inside postgres.TxManager.RunInTx every call
// runs on the context transaction; otherwise on the pool.
type Repo struct {
	db postgres.Querier
}

// New creates a lexicon repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Inserts
// ---------------------------------------------------------------------------

// InsertHeadword appends one headword row.
func (r *Repo) InsertHeadword(ctx context.Context, h domain.Headword) error {
	return r.insert(ctx, "headword", h.ID, Headwords,
		h.ID, h.EntryType, h.Key1, h.Key2, h.Homonym, h.Position, h.PageRef, h.LineRef)
}

// InsertDefinition appends one definition row. RawContent is stored as jsonb.
func (r *Repo) InsertDefinition(ctx context.Context, d domain.Definition) error {
	var raw any
	if d.RawContent != nil {
		raw = string(d.RawContent)
	}
	return r.insert(ctx, "definition", d.ID, Definitions,
		d.ID, d.HeadwordID, d.Content, raw, d.DisplayOrder)
}

// InsertSanskritForm appends one sanskrit_forms row.
func (r *Repo) InsertSanskritForm(ctx context.Context, s domain.SanskritForm) error {
	return r.insert(ctx, "sanskrit_form", s.ID, SanskritForms,
		s.ID, s.DefinitionID, s.Text, s.DisplayOrder)
}

// InsertAbbreviation appends one abbreviations row.
func (r *Repo) InsertAbbreviation(ctx context.Context, a domain.Abbreviation) error {
	return r.insert(ctx, "abbreviation", a.ID, Abbreviations,
		a.ID, a.DefinitionID, a.AbbrText, a.DisplayOrder)
}

// InsertSource appends one sources row.
func (r *Repo) InsertSource(ctx context.Context, s domain.Source) error {
	return r.insert(ctx, "source", s.ID, Sources,
		s.ID, s.DefinitionID, s.SourceText, s.DisplayOrder)
}

// InsertLexicalCategory appends one lexical_categories row.
func (r *Repo) InsertLexicalCategory(ctx context.Context, c domain.LexicalCategory) error {
	return r.insert(ctx, "lexical_category", c.ID, LexicalCategories,
		c.ID, c.DefinitionID, c.Category, c.DisplayOrder)
}

// InsertMetadata appends one metadata row.
func (r *Repo) InsertMetadata(ctx context.Context, m domain.Metadata) error {
	return r.insert(ctx, "metadata", m.ID, Metadata,
		m.ID, m.RelatedID, m.RelatedTable, m.MetaKey, m.MetaValue, m.AttrSource)
}

// SaveEntry inserts every record of one entry, parents before children.
// It stops at the first failure; the caller's transaction decides what
// happens to rows already written.
func (r *Repo) SaveEntry(ctx context.Context, rec domain.EntryRecords) error {
	if err := r.InsertHeadword(ctx, rec.Headword); err != nil {
		return err
	}
	if rec.Definition == nil {
		return nil
	}
	if err := r.InsertDefinition(ctx, *rec.Definition); err != nil {
		return err
	}
	for _, s := range rec.SanskritForms {
		if err := r.InsertSanskritForm(ctx, s); err != nil {
			return err
		}
	}
	for _, a := range rec.Abbreviations {
		if err := r.InsertAbbreviation(ctx, a); err != nil {
			return err
		}
	}
	for _, s := range rec.Sources {
		if err := r.InsertSource(ctx, s); err != nil {
			return err
		}
	}
	for _, c := range rec.LexicalCategories {
		if err := r.InsertLexicalCategory(ctx, c); err != nil {
			return err
		}
	}
	for _, m := range rec.Metadata {
		if err := r.InsertMetadata(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) insert(ctx context.Context, entity string, id uuid.UUID, t Table, values ...any) error {
	query, args, err := psql.Insert(t.Name).Columns(t.Columns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", entity, err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, entity, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// HasHeadwords reports whether the headwords table holds any row.
func (r *Repo) HasHeadwords(ctx context.Context) (bool, error) {
	query, args, err := psql.Select("1").From(Headwords.Name).Limit(1).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build headwords probe: %w", err)
	}

	var exists bool
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("probe headwords: %w", err)
	}
	return exists, nil
}

type tableRows struct {
	TableName string `db:"table_name"`
	RowCount  int    `db:"row_count"`
}

// countQuery is a UNION ALL of one count(*) per lexicon table.
var countQuery = func() string {
	parts := make([]string, len(Tables))
	for i, t := range Tables {
		parts[i] = fmt.Sprintf("SELECT '%s' AS table_name, count(*) AS row_count FROM %s", t.Name, t.Name)
	}
	return strings.Join(parts, " UNION ALL ")
}()

// CountRows returns the number of rows in each lexicon table.
func (r *Repo) CountRows(ctx context.Context) (domain.TableCounts, error) {
	var rows []tableRows
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, countQuery); err != nil {
		return domain.TableCounts{}, fmt.Errorf("count lexicon rows: %w", err)
	}

	var c domain.TableCounts
	for _, row := range rows {
		switch row.TableName {
		case Headwords.Name:
			c.Headwords = row.RowCount
		case Definitions.Name:
			c.Definitions = row.RowCount
		case SanskritForms.Name:
			c.SanskritForms = row.RowCount
		case Abbreviations.Name:
			c.Abbreviations = row.RowCount
		case Sources.Name:
			c.Sources = row.RowCount
		case LexicalCategories.Name:
			c.LexicalCategories = row.RowCount
		case Metadata.Name:
			c.Metadata = row.RowCount
		}
	}
	return c, nil
}
