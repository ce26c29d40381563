// Package testutil provides shared helpers for integration tests.
// Helpers in this package skip automatically when no database is available,
// so unit tests can run without Postgres.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// DSN returns the connection string integration tests should use.
//
// TEST_DATABASE_URL wins when set. Otherwise, when TESTCONTAINERS=1, a
// throwaway Postgres container is started once per test binary and reused by
// every caller; the testcontainers reaper removes it when the process exits.
// ok is false when neither source is available.
func DSN(ctx context.Context) (dsn string, ok bool, err error) {
	if v := os.Getenv("TEST_DATABASE_URL"); v != "" {
		return v, true, nil
	}
	if os.Getenv("TESTCONTAINERS") != "1" {
		return "", false, nil
	}

	containerOnce.Do(func() {
		containerDSN, containerErr = startPostgres(ctx)
	})
	if containerErr != nil {
		return "", false, containerErr
	}
	return containerDSN, true, nil
}

func startPostgres(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("spots"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		return "", err
	}
	return c.ConnectionString(ctx, "sslmode=disable")
}

// NewPool opens a *pgxpool.Pool connected to the test database.
//
// The test is skipped automatically if no database is configured, so
// integration tests are opt-in and never break environments that lack one.
// The pool is closed automatically when the test (and all its subtests) finish.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens a *sql.DB connected to the test database using the pgx
// database/sql driver. Use this when driving goose migrations in tests.
// The connection is closed automatically when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB opens a *sql.DB for the given DSN and panics on any error.
// Use this in TestMain functions where no *testing.T is available.
// Callers are responsible for closing the returned *sql.DB.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

// requireDSN returns the test database DSN, skipping the test when none is
// configured.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn, ok, err := DSN(context.Background())
	if err != nil {
		t.Fatalf("testutil: start postgres container: %v", err)
	}
	if !ok {
		t.Skip("TEST_DATABASE_URL not set and TESTCONTAINERS != 1; skipping integration test")
	}
	return dsn
}
