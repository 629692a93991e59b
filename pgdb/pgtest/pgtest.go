// Package pgtest hands out isolated, migrated Postgres databases to tests.
package pgtest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peterldowns/pgtestdb"
	"github.com/programme-lv/autograde/migrate"
	"github.com/stretchr/testify/require"
)

// EnvFlag must be set to 1 for database tests to run.
const EnvFlag = "AUTOGRADE_PGTEST"

type gooseMigrator struct{}

func (gooseMigrator) Hash() (string, error) {
	return migrate.Hash()
}

func (gooseMigrator) Migrate(ctx context.Context, db *sql.DB, _ pgtestdb.Config) error {
	_, err := migrate.Up(ctx, db)
	return err
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// NewDB returns a connection pool to a unique and isolated test database,
// fully migrated and ready for testing.
func NewDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv(EnvFlag) != "1" {
		t.Skipf("set %s=1 to run postgres tests", EnvFlag)
	}
	ctx := context.Background()
	conf := pgtestdb.Config{
		DriverName: "pgx",
		User:       envOr("PGTEST_USER", "autograde"), // local dev pg user
		Password:   envOr("PGTEST_PASSWORD", "autograde"),
		Host:       envOr("PGTEST_HOST", "localhost"),
		Port:       envOr("PGTEST_PORT", "5433"),
		Options:    "sslmode=disable",
	}
	config := pgtestdb.Custom(t, conf, gooseMigrator{})

	pool, err := pgxpool.New(ctx, config.URL())
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Close()
	})
	return pool
}
