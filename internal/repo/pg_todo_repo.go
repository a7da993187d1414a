package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	dom "TodoAPI/internal/domain"

	"github.com/jackc/pgx/v5"
)

const todoColumns = `id, title, subtitle, status, created_at, updated_at, deleted_at`

// PGTodoRepo implements TodoRepo with Postgres.
type PGTodoRepo struct {
	db pgConn
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (title, subtitle, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING ` + todoColumns
	out, err := scanPGTodo(r.db.QueryRow(ctx, query, t.Title, t.Subtitle, string(t.Status), t.CreatedAt))
	return out, normalize(err)
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND deleted_at IS NULL`
	t, err := scanPGTodo(r.db.QueryRow(ctx, query, id))
	return t, normalize(err)
}

func (r *PGTodoRepo) List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	where, args := pgTodoWhere(f)
	var b strings.Builder
	b.WriteString(`SELECT ` + todoColumns + ` FROM todos WHERE ` + where + ` ORDER BY id ASC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, normalize(err)
	}
	defer rows.Close()
	var list []dom.Todo
	for rows.Next() {
		t, err := scanPGTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) Count(ctx context.Context, f dom.TodoFilter) (int64, error) {
	where, args := pgTodoWhere(f)
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM todos WHERE `+where, args...).Scan(&n)
	return n, normalize(err)
}

func (r *PGTodoRepo) Update(ctx context.Context, id int64, t dom.Todo) (dom.Todo, error) {
	query := `
		UPDATE todos SET title = $2, subtitle = $3, status = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + todoColumns
	out, err := scanPGTodo(r.db.QueryRow(ctx, query, id, t.Title, t.Subtitle, string(t.Status), t.UpdatedAt))
	return out, normalize(err)
}

func (r *PGTodoRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE todos SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return normalize(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTodoRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM todos WHERE id = $1 AND deleted_at IS NULL)`, id).Scan(&ok)
	return ok, normalize(err)
}

func pgTodoWhere(f dom.TodoFilter) (string, []any) {
	where := "deleted_at IS NULL"
	var args []any
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	return where, args
}

func scanPGTodo(row pgx.Row) (dom.Todo, error) {
	var (
		t      dom.Todo
		status string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Subtitle, &status, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	t.Status = dom.TodoStatus(status)
	return t, err
}
