// Package migrations embeds the goose schema migrations for every supported
// dialect and runs them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"TodoAPI/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql mysql/*.sql sqlite3/*.sql
var FS embed.FS

// Commands accepted by Run.
const (
	CmdUp      = "up"
	CmdDown    = "down"
	CmdStatus  = "status"
	CmdVersion = "version"
	CmdRebuild = "rebuild"
)

// goose keeps its dialect, base FS and logger in package globals.
var mu sync.Mutex

// Run executes a goose command against db. The migration directory is the
// dialect name inside FS.
func Run(ctx context.Context, db *sql.DB, dialect, command string, logger goose.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(FS)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	var err error
	switch command {
	case CmdUp:
		err = goose.UpContext(ctx, db, dialect)
	case CmdDown:
		err = goose.DownContext(ctx, db, dialect)
	case CmdStatus:
		err = goose.StatusContext(ctx, db, dialect)
	case CmdVersion:
		err = goose.VersionContext(ctx, db, dialect)
	case CmdRebuild:
		if err = goose.ResetContext(ctx, db, dialect); err == nil {
			err = goose.UpContext(ctx, db, dialect)
		}
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Apply opens a dedicated connection for cfg, runs command and closes it.
func Apply(ctx context.Context, cfg config.DBConfig, command string, logger goose.Logger) error {
	db, err := sql.Open(cfg.SQLDriver(), cfg.DSN())
	if err != nil {
		return fmt.Errorf("migrations open db: %w", err)
	}
	defer db.Close()

	return Run(ctx, db, cfg.Dialect(), command, logger)
}
