package repo

import (
	"context"
	"database/sql"
	"time"

	dom "TodoAPI/internal/domain"

	"github.com/jmoiron/sqlx"
)

type todoRow struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Subtitle  sql.NullString `db:"subtitle"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt sql.NullTime   `db:"deleted_at"`
}

func (r todoRow) toDomain() dom.Todo {
	t := dom.Todo{
		ID:        r.ID,
		Title:     r.Title,
		Status:    dom.TodoStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Subtitle.Valid {
		s := r.Subtitle.String
		t.Subtitle = &s
	}
	if r.DeletedAt.Valid {
		d := r.DeletedAt.Time
		t.DeletedAt = &d
	}
	return t
}

// SQLTodoRepo implements TodoRepo for mysql and sqlite3.
type SQLTodoRepo struct {
	db sqlx.ExtContext
}

func (r *SQLTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (title, subtitle, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.Title, t.Subtitle, string(t.Status), t.CreatedAt, t.CreatedAt,
	)
	if err != nil {
		return dom.Todo{}, normalize(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dom.Todo{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *SQLTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	var row todoRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return dom.Todo{}, normalize(err)
	}
	return row.toDomain(), nil
}

func (r *SQLTodoRepo) List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	where, args := sqlTodoWhere(f)
	query := `SELECT ` + todoColumns + ` FROM todos WHERE ` + where + ` ORDER BY id ASC`
	// mysql and sqlite only accept OFFSET after a LIMIT; callers always page.
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	var rows []todoRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, normalize(err)
	}
	list := make([]dom.Todo, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toDomain())
	}
	return list, nil
}

func (r *SQLTodoRepo) Count(ctx context.Context, f dom.TodoFilter) (int64, error) {
	where, args := sqlTodoWhere(f)
	var n int64
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM todos WHERE `+where, args...)
	return n, normalize(err)
}

func (r *SQLTodoRepo) Update(ctx context.Context, id int64, t dom.Todo) (dom.Todo, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, subtitle = ?, status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		t.Title, t.Subtitle, string(t.Status), t.UpdatedAt, id,
	)
	if err := checkAffected(res, err); err != nil {
		return dom.Todo{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *SQLTodoRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE todos SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, at, at, id)
	return checkAffected(res, err)
}

func (r *SQLTodoRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM todos WHERE id = ? AND deleted_at IS NULL`, id)
	return n > 0, normalize(err)
}

func sqlTodoWhere(f dom.TodoFilter) (string, []any) {
	where := "deleted_at IS NULL"
	var args []any
	if f.Status != nil {
		where += " AND status = ?"
		args = append(args, string(*f.Status))
	}
	return where, args
}

// checkAffected turns an exec that touched no row into ErrNotFound.
func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return normalize(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
