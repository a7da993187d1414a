package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"TodoAPI/internal/apperr"
	dom "TodoAPI/internal/domain"
	"TodoAPI/internal/repo"

	"golang.org/x/sync/errgroup"
)

// bulkWriteLimit caps the completion writes in flight for one bulk request.
const bulkWriteLimit = 8

type UpdateItemInput struct {
	Content     *string
	IsCompleted *bool
}

type ItemService struct {
	store repo.Store
	now   func() time.Time
}

func NewItemService(store repo.Store) *ItemService {
	return &ItemService{store: store, now: utcNow}
}

// ListByTodo returns the items of a live todo ordered by id.
func (s *ItemService) ListByTodo(ctx context.Context, todoID int64, f dom.ItemFilter) ([]dom.Item, error) {
	if err := s.requireTodo(ctx, todoID); err != nil {
		return nil, err
	}
	items, err := s.store.Items().ListByTodoIDs(ctx, []int64{todoID}, f)
	if err != nil {
		return nil, storageErr("list items", err, nil)
	}
	if items == nil {
		items = []dom.Item{}
	}
	return items, nil
}

func (s *ItemService) GetByID(ctx context.Context, id int64) (dom.Item, error) {
	it, err := s.store.Items().GetByID(ctx, id)
	if err != nil {
		return dom.Item{}, storageErr("get item", err, itemNotFound(id))
	}
	return it, nil
}

// Create adds an item to a live todo.
func (s *ItemService) Create(ctx context.Context, todoID int64, in CreateItemInput) (dom.Item, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return dom.Item{}, apperr.Validation("content is required", map[string]any{"field": "content"})
	}
	if err := s.requireTodo(ctx, todoID); err != nil {
		return dom.Item{}, err
	}

	now := s.now()
	it := dom.Item{TodoID: todoID, Content: content, CreatedAt: now, UpdatedAt: now}
	it.SetCompleted(in.IsCompleted != nil && *in.IsCompleted, now)
	saved, err := s.store.Items().Create(ctx, it)
	if err != nil {
		return dom.Item{}, storageErr("create item", err, nil)
	}
	return saved, nil
}

// Update patches content and completion. Changing content alone leaves the
// completion fields untouched.
func (s *ItemService) Update(ctx context.Context, id int64, in UpdateItemInput) (dom.Item, error) {
	var content string
	if in.Content != nil {
		content = strings.TrimSpace(*in.Content)
		if content == "" {
			return dom.Item{}, apperr.Validation("content must not be empty", map[string]any{"field": "content"})
		}
	}

	existing, err := s.store.Items().GetByID(ctx, id)
	if err != nil {
		return dom.Item{}, storageErr("get item", err, itemNotFound(id))
	}
	now := s.now()
	patch := existing
	if in.Content != nil {
		patch.Content = content
	}
	if in.IsCompleted != nil {
		patch.SetCompleted(*in.IsCompleted, now)
	}
	patch.UpdatedAt = now

	it, err := s.store.Items().Update(ctx, id, patch)
	if err != nil {
		return dom.Item{}, storageErr("update item", err, itemNotFound(id))
	}
	return it, nil
}

// Delete removes the item permanently.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Items().Delete(ctx, id); err != nil {
		return storageErr("delete item", err, itemNotFound(id))
	}
	return nil
}

// SetCompletion sets is_completed and derives completed_at in the same write.
func (s *ItemService) SetCompletion(ctx context.Context, id int64, done bool) error {
	now := s.now()
	if err := s.store.Items().SetCompletion(ctx, id, done, dom.CompletionStamp(done, now), now); err != nil {
		return storageErr("set item completion", err, itemNotFound(id))
	}
	return nil
}

// BulkSetCompletion applies SetCompletion to every id with one shared
// timestamp. Nothing is written unless all ids exist.
func (s *ItemService) BulkSetCompletion(ctx context.Context, ids []int64, done bool) error {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return apperr.Validation("ids must not be empty", map[string]any{"field": "ids"})
	}
	if len(ids) > dom.MaxBulkIDs {
		return apperr.Validation(fmt.Sprintf("ids must hold at most %d entries", dom.MaxBulkIDs),
			map[string]any{"field": "ids", "max": dom.MaxBulkIDs})
	}

	found, err := s.store.Items().ExistingIDs(ctx, ids)
	if err != nil {
		return storageErr("check items", err, nil)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return apperr.Validation("some items do not exist", map[string]any{"missing": missing})
	}

	now := s.now()
	stamp := dom.CompletionStamp(done, now)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkWriteLimit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.store.Items().SetCompletion(gctx, id, done, stamp, now); err != nil {
				return storageErr("set item completion", err, itemNotFound(id))
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *ItemService) requireTodo(ctx context.Context, todoID int64) error {
	ok, err := s.store.Todos().Exists(ctx, todoID)
	if err != nil {
		return storageErr("check todo", err, nil)
	}
	if !ok {
		return todoNotFound(todoID)
	}
	return nil
}

// dedupeIDs returns ids sorted with duplicates removed.
func dedupeIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// missingIDs returns the members of want absent from found. Both are sorted.
func missingIDs(want, found []int64) []int64 {
	missing := []int64{}
	for _, id := range want {
		if _, ok := slices.BinarySearch(found, id); !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
