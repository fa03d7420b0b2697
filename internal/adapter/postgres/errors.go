package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/sanskrit-lexicon/internal/domain"
)

// PostgreSQL error codes mapped to domain sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeStringTruncation    = "22001"
)

// MapError converts pgx/pgconn errors to domain errors, prefixed with the
// entity name and id. Context errors pass through unmapped.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s %s: %w: %s", entity, id, domain.ErrAlreadyExists, detail(pgErr))
		case codeForeignKeyViolation:
			return fmt.Errorf("%s %s: %w: %s", entity, id, domain.ErrNotFound, detail(pgErr))
		case codeCheckViolation, codeNotNullViolation, codeStringTruncation:
			return fmt.Errorf("%s %s: %w: %s", entity, id, domain.ErrValidation, detail(pgErr))
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}

func detail(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return pgErr.Message
}
