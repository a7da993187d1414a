package repo

import (
	"context"
	"fmt"
	"time"

	"TodoAPI/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgConn is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore implements Store with Postgres.
type PGStore struct {
	pool *pgxpool.Pool
	db   pgConn
}

// NewPGStore returns a Store backed by the pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

// OpenPostgres connects a pool sized from cfg and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg config.DBConfig) (*PGStore, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.PGDSN)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	pcfg.MaxConns = int32(cfg.PoolSize)
	pcfg.MinConns = int32(min(cfg.MinConns, cfg.PoolSize))
	pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime.Duration()
	pcfg.MaxConnLifetime = cfg.MaxConnLifetime.Duration()
	if d := cfg.ConnectTimeout.Duration(); d > 0 {
		pcfg.ConnConfig.ConnectTimeout = d
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return NewPGStore(pool), nil
}

func (s *PGStore) Todos() TodoRepo { return &PGTodoRepo{db: s.db} }

func (s *PGStore) Items() ItemRepo { return &PGItemRepo{db: s.db} }

func (s *PGStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&PGStore{pool: s.pool, db: tx})
	})
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
