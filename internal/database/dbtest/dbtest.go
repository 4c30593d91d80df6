// Package dbtest opens the integration test database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/uptrace/bun"

	"github.com/seeran-grades/seeran-backend/internal/database"
)

// Open connects to SEERAN_TEST_DB and creates the schema.
// The test is skipped when the variable is unset or the database is unreachable.
func Open(t *testing.T) *bun.DB {
	t.Helper()

	dsn := os.Getenv("SEERAN_TEST_DB")
	if dsn == "" {
		t.Skip("SEERAN_TEST_DB not set")
		return nil
	}

	ctx := context.Background()
	db, err := database.Open(ctx, dsn)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.CreateSchema(ctx, db); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return db
}
