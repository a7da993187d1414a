package repo

import (
	"context"
	"database/sql"
	"time"

	dom "TodoAPI/internal/domain"

	"github.com/jmoiron/sqlx"
)

type itemRow struct {
	ID          int64        `db:"id"`
	TodoID      int64        `db:"todo_id"`
	Content     string       `db:"content"`
	IsCompleted bool         `db:"is_completed"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r itemRow) toDomain() dom.Item {
	it := dom.Item{
		ID:          r.ID,
		TodoID:      r.TodoID,
		Content:     r.Content,
		IsCompleted: r.IsCompleted,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		at := r.CompletedAt.Time
		it.CompletedAt = &at
	}
	return it
}

// SQLItemRepo implements ItemRepo for mysql and sqlite3.
type SQLItemRepo struct {
	db sqlx.ExtContext
}

func (r *SQLItemRepo) Create(ctx context.Context, it dom.Item) (dom.Item, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO items (todo_id, content, is_completed, completed_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		it.TodoID, it.Content, it.IsCompleted, it.CompletedAt, it.CreatedAt, it.CreatedAt,
	)
	if err != nil {
		return dom.Item{}, normalize(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dom.Item{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *SQLItemRepo) GetByID(ctx context.Context, id int64) (dom.Item, error) {
	var row itemRow
	if err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id); err != nil {
		return dom.Item{}, normalize(err)
	}
	return row.toDomain(), nil
}

func (r *SQLItemRepo) ListByTodoIDs(ctx context.Context, todoIDs []int64, f dom.ItemFilter) ([]dom.Item, error) {
	if len(todoIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE todo_id IN (?)`
	args := []any{todoIDs}
	if f.IsCompleted != nil {
		query += ` AND is_completed = ?`
		args = append(args, *f.IsCompleted)
	}
	query += ` ORDER BY id ASC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, normalize(err)
	}
	list := make([]dom.Item, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toDomain())
	}
	return list, nil
}

func (r *SQLItemRepo) Update(ctx context.Context, id int64, it dom.Item) (dom.Item, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET content = ?, is_completed = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		it.Content, it.IsCompleted, it.CompletedAt, it.UpdatedAt, id,
	)
	if err := checkAffected(res, err); err != nil {
		return dom.Item{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *SQLItemRepo) SetCompletion(ctx context.Context, id int64, done bool, completedAt *time.Time, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET is_completed = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		done, completedAt, at, id,
	)
	return checkAffected(res, err)
}

func (r *SQLItemRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return checkAffected(res, err)
}

func (r *SQLItemRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM items WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	var found []int64
	if err := sqlx.SelectContext(ctx, r.db, &found, r.db.Rebind(query), args...); err != nil {
		return nil, normalize(err)
	}
	return found, nil
}
