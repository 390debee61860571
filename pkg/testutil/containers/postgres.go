//go:build integration

// Package containers spins up throwaway infrastructure for integration tests.
package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	did        TEXT,
	user_code  TEXT,
	phone      TEXT NOT NULL DEFAULT '',
	ssn        TEXT NOT NULL DEFAULT '',
	dob        TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_did_idx ON users (did) WHERE did IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS users_user_code_idx ON users (user_code) WHERE user_code IS NOT NULL;

CREATE TABLE IF NOT EXISTS issuers (
	id                  UUID PRIMARY KEY,
	did                 TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL DEFAULT '',
	auth_token          TEXT NOT NULL DEFAULT '',
	signing_private_key TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
`

// NewPostgresDB starts a PostgreSQL container, applies the schema and returns
// an open connection. The container and connection are cleaned up with the test.
func NewPostgresDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("issuergw_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return db
}

// TruncateAll clears all tables between test cases.
func TruncateAll(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE users, issuers"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
