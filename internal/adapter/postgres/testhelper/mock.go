package testhelper

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
)

// NewMockPool returns a pgxmock pool whose expectations are verified when
// the test finishes.
func NewMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("testhelper: create pgxmock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("testhelper: unmet pgxmock expectations: %v", err)
		}
		mock.Close()
	})

	return mock
}
