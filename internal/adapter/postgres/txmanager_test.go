package postgres_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/sanskrit-lexicon/internal/adapter/postgres"
	"github.com/heartmarshall/sanskrit-lexicon/internal/adapter/postgres/testhelper"
)

const insertHeadwordSQL = `INSERT INTO headwords (id, type, key1) VALUES ($1, $2, $3)`

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO headwords`).
		WithArgs(pgxmock.AnyArg(), "H1", "agni").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if postgres.QuerierFromCtx(ctx, mock) == postgres.Querier(mock) {
			t.Error("callback context should carry the transaction")
		}
		_, err := postgres.QuerierFromCtx(ctx, mock).Exec(ctx, insertHeadwordSQL, "id", "H1", "agni")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("third entry failed")
	err := postgres.NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
}

func TestRunInTx_RollbackFailureKeepsBothErrors(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.ExpectBegin()
	rbErr := errors.New("connection reset")
	mock.ExpectRollback().WillReturnError(rbErr)

	err := postgres.NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		return errors.New("insert failed")
	})
	if !errors.Is(err, rbErr) {
		t.Fatalf("expected rollback error to be wrapped, got: %v", err)
	}
	if !strings.Contains(err.Error(), "insert failed") {
		t.Errorf("original error missing from %q", err.Error())
	}
}

func TestRunInTx_RollsBackOnCancelledContext(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, cancel := context.WithCancel(context.Background())
	err := postgres.NewTxManager(mock).RunInTx(ctx, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestRunInTx_RollsBackAndRepanics(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected panic value %q, got %v", "boom", r)
		}
	}()

	_ = postgres.NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		panic("boom")
	})
}

func TestRunInTx_BeginFailure(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := postgres.NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err == nil || !strings.HasPrefix(err.Error(), "begin transaction:") {
		t.Fatalf("expected begin error, got: %v", err)
	}
	if called {
		t.Error("callback must not run when Begin fails")
	}
}

func TestRunInTx_CommitFailure(t *testing.T) {
	mock := testhelper.NewMockPool(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := postgres.NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err == nil || !strings.HasPrefix(err.Error(), "commit transaction:") {
		t.Fatalf("expected commit error, got: %v", err)
	}
}

func TestQuerierFromCtx_FallbackWithoutTx(t *testing.T) {
	mock := testhelper.NewMockPool(t)

	ctx := context.Background()
	if q := postgres.QuerierFromCtx(ctx, mock); q != mock {
		t.Errorf("QuerierFromCtx without tx = %v, want fallback", q)
	}
}
