package repo

import (
	"context"
	"errors"
	"time"

	dom "TodoAPI/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup or write matches no live row.
	ErrNotFound = errors.New("record not found")
	// ErrConstraint is returned when the database rejects a write on a
	// foreign key or check constraint.
	ErrConstraint = errors.New("constraint violation")
)

// TodoRepo persists todos. Every read and write ignores soft-deleted rows.
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, id int64) (dom.Todo, error)
	List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error)
	Count(ctx context.Context, f dom.TodoFilter) (int64, error)
	Update(ctx context.Context, id int64, t dom.Todo) (dom.Todo, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// ItemRepo persists items.
type ItemRepo interface {
	Create(ctx context.Context, it dom.Item) (dom.Item, error)
	GetByID(ctx context.Context, id int64) (dom.Item, error)
	// ListByTodoIDs returns the items of the given todos ordered by id.
	ListByTodoIDs(ctx context.Context, todoIDs []int64, f dom.ItemFilter) ([]dom.Item, error)
	Update(ctx context.Context, id int64, it dom.Item) (dom.Item, error)
	SetCompletion(ctx context.Context, id int64, done bool, completedAt *time.Time, at time.Time) error
	Delete(ctx context.Context, id int64) error
	// ExistingIDs returns the subset of ids that exist.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// Store is the persistence gateway used by the services.
type Store interface {
	Todos() TodoRepo
	Items() ItemRepo
	// InTx runs fn against a Store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
