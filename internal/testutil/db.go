// Package testutil opens throwaway databases for tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TodoAPI/internal/config"
	"TodoAPI/internal/migrations"
	"TodoAPI/internal/repo"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// SQLiteConfig returns a DB config pointing at a fresh file in t.TempDir().
func SQLiteConfig(t testing.TB) config.DBConfig {
	t.Helper()
	return config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "todo.db"),
		PoolSize:   1,
	}
}

// NewSQLiteStore returns a migrated SQLite-backed store closed at test cleanup.
func NewSQLiteStore(t testing.TB) *repo.SQLStore {
	t.Helper()
	return openMigrated(t, SQLiteConfig(t))
}

// NewStoreFromEnv opens the database named by the env var (a DSN) for the given
// driver, or skips the test when the variable is unset.
func NewStoreFromEnv(t testing.TB, driver, envVar string) repo.Store {
	t.Helper()
	dsn := os.Getenv(envVar)
	if dsn == "" {
		t.Skipf("%s not set", envVar)
	}
	cfg := config.DBConfig{Driver: driver, PoolSize: 4}
	switch driver {
	case config.DriverPostgres:
		cfg.PGDSN = dsn
		if err := migrations.Apply(context.Background(), cfg, migrations.CmdRebuild, nil); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		store, err := repo.OpenPostgres(context.Background(), cfg)
		if err != nil {
			t.Fatalf("open postgres: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	case config.DriverMySQL:
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			t.Fatalf("parse %s: %v", envVar, err)
		}
		mc.ParseTime = true
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		db, err := sqlx.Open(config.DriverMySQL, mc.FormatDSN())
		if err != nil {
			t.Fatalf("open mysql: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		if err := migrations.Run(context.Background(), db.DB, config.DriverMySQL, migrations.CmdRebuild, nil); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		return repo.NewSQLStore(db)
	default:
		t.Fatalf("unsupported driver %q", driver)
		return nil
	}
}

func openMigrated(t testing.TB, cfg config.DBConfig) *repo.SQLStore {
	t.Helper()
	ctx := context.Background()
	store, err := repo.OpenSQL(ctx, cfg)
	if err != nil {
		t.Fatalf("open %s: %v", cfg.Driver, err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := migrations.Run(ctx, store.DB(), cfg.Dialect(), migrations.CmdUp, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}
