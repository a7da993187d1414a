package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TodoAPI/internal/config"

	_ "github.com/go-sql-driver/mysql" // Import driver
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Import driver
)

// SQLStore implements Store on database/sql through sqlx. It serves the
// mysql and sqlite3 drivers, which share "?" placeholders and LastInsertId.
type SQLStore struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

// NewSQLStore wraps an open connection pool.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, ext: db}
}

// OpenSQL opens a mysql or sqlite3 pool sized from cfg and pings it.
func OpenSQL(ctx context.Context, cfg config.DBConfig) (*SQLStore, error) {
	db, err := sqlx.Open(cfg.SQLDriver(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", cfg.Driver, err)
	}
	if cfg.Driver == config.DriverSQLite {
		// one writer at a time; also keeps transactions on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.PoolSize)
		db.SetMaxIdleConns(max(cfg.MinConns, 1))
	}
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime.Duration())
	db.SetConnMaxLifetime(cfg.MaxConnLifetime.Duration())

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", cfg.Driver, err)
	}
	return NewSQLStore(db), nil
}

// DB exposes the underlying pool, e.g. for migrations.
func (s *SQLStore) DB() *sql.DB { return s.db.DB }

func (s *SQLStore) Todos() TodoRepo { return &SQLTodoRepo{db: s.ext} }

func (s *SQLStore) Items() ItemRepo { return &SQLItemRepo{db: s.ext} }

func (s *SQLStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, ext: tx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DBConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	case config.DriverMySQL, config.DriverSQLite:
		return OpenSQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}
