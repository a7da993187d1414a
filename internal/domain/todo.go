package domain

import (
	"math"
	"strings"
	"time"
)

// TodoStatus is the lifecycle flag of a todo list.
type TodoStatus string

const (
	TodoStatusActive   TodoStatus = "ACTIVE"
	TodoStatusInactive TodoStatus = "INACTIVE"
)

// Valid reports whether s is one of the known statuses.
func (s TodoStatus) Valid() bool {
	return s == TodoStatusActive || s == TodoStatusInactive
}

// ParseTodoStatus accepts the exact upper-case enum values only.
func ParseTodoStatus(raw string) (TodoStatus, bool) {
	s := TodoStatus(strings.TrimSpace(raw))
	return s, s.Valid()
}

// Domain entity: a todo list owning its items.
// Не зависит от Gin, Postgres, MySQL.
type Todo struct {
	ID       int64
	Title    string
	Subtitle *string
	Status   TodoStatus
	Items    []Item

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// TodoFilter selects live todos. Zero Limit means no limit.
type TodoFilter struct {
	Status *TodoStatus
	Limit  int
	Offset int
}

// PageOffset converts a 1-based page into a row offset; page 0 means "not given".
// ok is false when the offset does not fit in an int.
func PageOffset(page, limit int) (offset int, ok bool) {
	if page <= 1 || limit <= 0 {
		return 0, true
	}
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

// MaxBulkIDs bounds the ids accepted by one bulk completion request.
const MaxBulkIDs = 1000
