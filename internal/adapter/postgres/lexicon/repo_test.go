package lexicon

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/sanskrit-lexicon/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/sanskrit-lexicon/internal/domain"
)

func strPtr(s string) *string { return &s }

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestRepo_InsertHeadword_SQL(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	repo := New(mock)

	hw := domain.Headword{
		ID:        uuid.New(),
		EntryType: "H1",
		Key1:      "agni",
		Key2:      strPtr("agni/"),
		Position:  1,
		LineRef:   strPtr("12"),
	}

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO headwords (id,type,key1,key2,homonym,position,page_ref,line_ref) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`)).
		WithArgs(hw.ID, "H1", "agni", hw.Key2, hw.Homonym, 1, hw.PageRef, hw.LineRef).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.InsertHeadword(context.Background(), hw))
}

func TestRepo_InsertDefinition_RawContentAsJSONText(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	repo := New(mock)

	def := domain.Definition{
		ID:           uuid.New(),
		HeadwordID:   uuid.New(),
		Content:      "fire",
		RawContent:   json.RawMessage(`{"tag":"body","text":"fire","attributes":{},"children":[]}`),
		DisplayOrder: 1,
	}

	mock.ExpectExec(`INSERT INTO definitions \(id,headword_id,content,raw_content,display_order\)`).
		WithArgs(def.ID, def.HeadwordID, "fire", string(def.RawContent), 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.InsertDefinition(context.Background(), def))
}

func TestRepo_Insert_MapsErrors(t *testing.T) {
	tests := []struct {
		name    string
		pgErr   error
		wantErr error
	}{
		{name: "duplicate id", pgErr: &pgconn.PgError{Code: "23505"}, wantErr: domain.ErrAlreadyExists},
		{name: "missing parent", pgErr: &pgconn.PgError{Code: "23503"}, wantErr: domain.ErrNotFound},
		{name: "type too long", pgErr: &pgconn.PgError{Code: "22001"}, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelper.NewMockPool(t)
			repo := New(mock)

			mock.ExpectExec(`INSERT INTO sanskrit_forms`).
				WithArgs(anyArgs(4)...).
				WillReturnError(tt.pgErr)

			err := repo.InsertSanskritForm(context.Background(), domain.SanskritForm{ID: uuid.New(), Text: "a"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRepo_SaveEntry_ParentBeforeChildren(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.MatchExpectationsInOrder(true)
	repo := New(mock)

	defID := uuid.New()
	rec := domain.EntryRecords{
		Headword:          domain.Headword{ID: uuid.New(), EntryType: "H1", Key1: "agni", Position: 1},
		Definition:        &domain.Definition{ID: defID, Content: "fire", RawContent: json.RawMessage(`{}`), DisplayOrder: 1},
		SanskritForms:     []domain.SanskritForm{{ID: uuid.New(), DefinitionID: defID, Text: "a", DisplayOrder: 1}},
		Abbreviations:     []domain.Abbreviation{{ID: uuid.New(), DefinitionID: defID, AbbrText: "m.", DisplayOrder: 1}},
		Sources:           []domain.Source{{ID: uuid.New(), DefinitionID: defID, SourceText: "RV.", DisplayOrder: 1}},
		LexicalCategories: []domain.LexicalCategory{{ID: uuid.New(), DefinitionID: defID, Category: "m.", DisplayOrder: 1}},
		Metadata: []domain.Metadata{
			{ID: uuid.New(), RelatedID: defID, RelatedTable: "definitions", MetaKey: "lang", MetaValue: "sa", AttrSource: "info"},
			{ID: uuid.New(), RelatedID: defID, RelatedTable: "definitions", MetaKey: "type", MetaValue: "noun", AttrSource: "info"},
		},
	}

	ok := pgxmock.NewResult("INSERT", 1)
	mock.ExpectExec(`INSERT INTO headwords`).WithArgs(anyArgs(8)...).WillReturnResult(ok)
	mock.ExpectExec(`INSERT INTO definitions`).WithArgs(anyArgs(5)...).WillReturnResult(ok)
	mock.ExpectExec(`INSERT INTO sanskrit_forms`).WithArgs(anyArgs(4)...).WillReturnResult(ok)
	mock.ExpectExec(`INSERT INTO abbreviations`).WithArgs(anyArgs(4)...).WillReturnResult(ok)
	mock.ExpectExec(`INSERT INTO sources`).WithArgs(anyArgs(4)...).WillReturnResult(ok)
	mock.ExpectExec(`INSERT INTO lexical_categories`).WithArgs(anyArgs(4)...).WillReturnResult(ok)
	mock.ExpectExec(`INSERT INTO metadata`).WithArgs(anyArgs(6)...).WillReturnResult(ok)
	mock.ExpectExec(`INSERT INTO metadata`).
		WithArgs(pgxmock.AnyArg(), defID, "definitions", "type", "noun", "info").
		WillReturnResult(ok)

	require.NoError(t, repo.SaveEntry(context.Background(), rec))
}

func TestRepo_SaveEntry_HeadwordOnly(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	repo := New(mock)

	mock.ExpectExec(`INSERT INTO headwords`).
		WithArgs(anyArgs(8)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec := domain.EntryRecords{Headword: domain.Headword{ID: uuid.New(), EntryType: "H1", Key1: "agni", Position: 1}}
	require.NoError(t, repo.SaveEntry(context.Background(), rec))
}

func TestRepo_SaveEntry_StopsAtFirstFailure(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	repo := New(mock)

	mock.ExpectExec(`INSERT INTO headwords`).
		WithArgs(anyArgs(8)...).
		WillReturnError(errors.New("connection lost"))

	defID := uuid.New()
	rec := domain.EntryRecords{
		Headword:      domain.Headword{ID: uuid.New(), EntryType: "H1", Key1: "agni"},
		Definition:    &domain.Definition{ID: defID},
		SanskritForms: []domain.SanskritForm{{ID: uuid.New(), DefinitionID: defID, Text: "a"}},
	}
	err := repo.SaveEntry(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection lost")
}

func TestRepo_HasHeadwords(t *testing.T) {
	for _, want := range []bool{true, false} {
		mock := testhelper.NewMockPool(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS ( SELECT 1 FROM headwords LIMIT 1 )`)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := New(mock).HasHeadwords(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRepo_CountRows(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	repo := New(mock)

	rows := pgxmock.NewRows([]string{"table_name", "row_count"}).
		AddRow("headwords", 3).
		AddRow("definitions", 2).
		AddRow("sanskrit_forms", 5).
		AddRow("abbreviations", 1).
		AddRow("sources", 0).
		AddRow("lexical_categories", 4).
		AddRow("metadata", 6)
	mock.ExpectQuery(`SELECT 'headwords' AS table_name, count\(\*\) AS row_count FROM headwords UNION ALL`).
		WillReturnRows(rows)

	got, err := repo.CountRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TableCounts{
		Headwords:         3,
		Definitions:       2,
		SanskritForms:     5,
		Abbreviations:     1,
		Sources:           0,
		LexicalCategories: 4,
		Metadata:          6,
	}, got)
	assert.Equal(t, 21, got.Total())
}

func TestRepo_CountRows_QueryError(t *testing.T) {
	mock := testhelper.NewMockPool(t)

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("relation \"metadata\" does not exist"))

	_, err := New(mock).CountRows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count lexicon rows")
}

func TestCountQuery_CoversEveryTable(t *testing.T) {
	for _, table := range Tables {
		assert.Contains(t, countQuery, "FROM "+table.Name)
	}
}
