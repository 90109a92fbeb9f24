// Package testdb starts a throwaway PostgreSQL for integration tests and
// applies the embedded schema to it.
package testdb

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/enrollment-backend/internal/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedContainer *PostgresContainer
	sharedOnce      sync.Once
	sharedErr       error
)

// PostgresContainer wraps the postgres testcontainer and a pool connected to it.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// SetupSharedPostgres starts one container per test binary and migrates it.
// Tests using it must not run in parallel with each other; call
// CleanupTables at the start of every subtest instead.
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in -short mode")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("enrollment_test"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			sharedErr = err
			return
		}

		dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedErr = err
			return
		}

		if err := database.Migrate(dsn, zerolog.New(io.Discard)); err != nil {
			sharedErr = err
			return
		}

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			sharedErr = err
			return
		}

		sharedContainer = &PostgresContainer{
			Container: pgContainer,
			Pool:      pool,
			DSN:       dsn,
		}
	})

	require.NoError(t, sharedErr, "start postgres container")
	return sharedContainer
}

// CleanupTables truncates the given tables and resets their id sequences.
func CleanupTables(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()

	for _, table := range tables {
		_, err := pool.Exec(context.Background(), "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate table: %s", table)
	}
}

// ResetAll empties every application table.
func ResetAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	CleanupTables(t, pool, "enrollment_events", "enrollments", "courses", "students")
}
