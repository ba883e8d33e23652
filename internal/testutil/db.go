package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/elemental/internal/db/migrations"
)

// TestDSNEnv points tests at an existing database instead of a container.
const TestDSNEnv = "ARENA_TEST_DSN"

// StartPostgres returns a migrated database for a test binary.
// ARENA_TEST_DSN wins when set; otherwise a postgres:16-alpine container is
// started and stop terminates it.
func StartPostgres(ctx context.Context) (dsn string, stop func(), err error) {
	stop = func() {}
	if dsn = os.Getenv(TestDSNEnv); dsn == "" {
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("arena_test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			return "", stop, fmt.Errorf("starting postgres container: %w", err)
		}
		stop = func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				fmt.Fprintf(os.Stderr, "terminating postgres container: %v\n", err)
			}
		}

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			stop()
			return "", func() {}, fmt.Errorf("getting connection string: %w", err)
		}
	}

	if err := migrate(dsn); err != nil {
		stop()
		return "", func() {}, err
	}
	return dsn, stop, nil
}

// migrate applies the embedded migrations; it cannot use db.RunMigrations
// because package db tests import testutil.
func migrate(dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql.DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	return nil
}
