package repo

import (
	"context"
	"time"

	dom "TodoAPI/internal/domain"

	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, todo_id, content, is_completed, completed_at, created_at, updated_at`

// PGItemRepo implements ItemRepo with Postgres.
type PGItemRepo struct {
	db pgConn
}

func (r *PGItemRepo) Create(ctx context.Context, it dom.Item) (dom.Item, error) {
	query := `
		INSERT INTO items (todo_id, content, is_completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + itemColumns
	out, err := scanPGItem(r.db.QueryRow(ctx, query, it.TodoID, it.Content, it.IsCompleted, it.CompletedAt, it.CreatedAt))
	return out, normalize(err)
}

func (r *PGItemRepo) GetByID(ctx context.Context, id int64) (dom.Item, error) {
	it, err := scanPGItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	return it, normalize(err)
}

func (r *PGItemRepo) ListByTodoIDs(ctx context.Context, todoIDs []int64, f dom.ItemFilter) ([]dom.Item, error) {
	if len(todoIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE todo_id = ANY($1)`
	args := []any{todoIDs}
	if f.IsCompleted != nil {
		query += ` AND is_completed = $2`
		args = append(args, *f.IsCompleted)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, normalize(err)
	}
	defer rows.Close()
	var list []dom.Item
	for rows.Next() {
		it, err := scanPGItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *PGItemRepo) Update(ctx context.Context, id int64, it dom.Item) (dom.Item, error) {
	query := `
		UPDATE items SET content = $2, is_completed = $3, completed_at = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + itemColumns
	out, err := scanPGItem(r.db.QueryRow(ctx, query, id, it.Content, it.IsCompleted, it.CompletedAt, it.UpdatedAt))
	return out, normalize(err)
}

func (r *PGItemRepo) SetCompletion(ctx context.Context, id int64, done bool, completedAt *time.Time, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE items SET is_completed = $2, completed_at = $3, updated_at = $4 WHERE id = $1`,
		id, done, completedAt, at,
	)
	if err != nil {
		return normalize(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGItemRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return normalize(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGItemRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id FROM items WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, normalize(err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func scanPGItem(row pgx.Row) (dom.Item, error) {
	var it dom.Item
	err := row.Scan(&it.ID, &it.TodoID, &it.Content, &it.IsCompleted, &it.CompletedAt, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}
