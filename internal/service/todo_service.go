package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"TodoAPI/internal/apperr"
	dom "TodoAPI/internal/domain"
	"TodoAPI/internal/repo"
)

const maxTitleLen = 512

type CreateTodoInput struct {
	Title    string
	Subtitle *string
	Status   string
}

type CreateItemInput struct {
	Content     string
	IsCompleted *bool
}

type UpdateTodoInput struct {
	Title    *string
	Subtitle *string
	Status   *string
}

type ListTodosParams struct {
	Status string
	Page   int
	Limit  int
}

type TodoService struct {
	store repo.Store
	now   func() time.Time
}

func NewTodoService(store repo.Store) *TodoService {
	return &TodoService{store: store, now: utcNow}
}

// Create validates the todo and all of its items, then writes them in one
// transaction. Nothing is written when any input is rejected.
func (s *TodoService) Create(ctx context.Context, in CreateTodoInput, items []CreateItemInput) (dom.Todo, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return dom.Todo{}, err
	}
	status := dom.TodoStatusActive
	if strings.TrimSpace(in.Status) != "" {
		st, ok := dom.ParseTodoStatus(in.Status)
		if !ok {
			return dom.Todo{}, invalidStatus(in.Status)
		}
		status = st
	}
	contents := make([]string, len(items))
	for i, it := range items {
		c := strings.TrimSpace(it.Content)
		if c == "" {
			return dom.Todo{}, apperr.Validation("item content is required",
				map[string]any{"field": "content", "index": i})
		}
		contents[i] = c
	}

	now := s.now()
	var created dom.Todo
	err = s.store.InTx(ctx, func(tx repo.Store) error {
		t, err := tx.Todos().Create(ctx, dom.Todo{
			Title:     title,
			Subtitle:  in.Subtitle,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		t.Items = make([]dom.Item, 0, len(items))
		for i, item := range items {
			it := dom.Item{TodoID: t.ID, Content: contents[i], CreatedAt: now, UpdatedAt: now}
			it.SetCompleted(item.IsCompleted != nil && *item.IsCompleted, now)
			saved, err := tx.Items().Create(ctx, it)
			if err != nil {
				return err
			}
			t.Items = append(t.Items, saved)
		}
		created = t
		return nil
	})
	if err != nil {
		return dom.Todo{}, storageErr("create todo", err, nil)
	}
	return created, nil
}

// List returns one page of live todos with their items and the number of
// todos matching the filter across all pages.
func (s *TodoService) List(ctx context.Context, p ListTodosParams) ([]dom.Todo, int64, error) {
	limit := p.Limit
	switch {
	case limit == 0:
		limit = dom.DefaultPageLimit
	case limit < 0 || limit > dom.MaxPageLimit:
		return nil, 0, apperr.Validation("limit must be between 1 and 100",
			map[string]any{"field": "limit", "value": p.Limit})
	}
	if p.Page < 0 {
		return nil, 0, apperr.Validation("page must be a positive integer",
			map[string]any{"field": "page", "value": p.Page})
	}
	offset, ok := dom.PageOffset(p.Page, limit)
	if !ok {
		return nil, 0, pageNotFound(p.Page)
	}
	f := dom.TodoFilter{Limit: limit, Offset: offset}
	if strings.TrimSpace(p.Status) != "" {
		st, ok := dom.ParseTodoStatus(p.Status)
		if !ok {
			return nil, 0, invalidStatus(p.Status)
		}
		f.Status = &st
	}

	list, err := s.store.Todos().List(ctx, f)
	if err != nil {
		return nil, 0, storageErr("list todos", err, nil)
	}
	if len(list) == 0 && p.Page > 1 {
		return nil, 0, pageNotFound(p.Page)
	}
	total, err := s.store.Todos().Count(ctx, f)
	if err != nil {
		return nil, 0, storageErr("count todos", err, nil)
	}
	if err := s.attachItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	t, err := s.store.Todos().GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, storageErr("get todo", err, todoNotFound(id))
	}
	list := []dom.Todo{t}
	if err := s.attachItems(ctx, list); err != nil {
		return dom.Todo{}, err
	}
	return list[0], nil
}

// Update applies the supplied fields onto the live todo. Omitted fields keep
// their stored values.
func (s *TodoService) Update(ctx context.Context, id int64, in UpdateTodoInput) (dom.Todo, error) {
	var (
		title  string
		status dom.TodoStatus
		err    error
	)
	if in.Title != nil {
		if title, err = validateTitle(*in.Title); err != nil {
			return dom.Todo{}, err
		}
	}
	if in.Status != nil {
		var ok bool
		if status, ok = dom.ParseTodoStatus(*in.Status); !ok {
			return dom.Todo{}, invalidStatus(*in.Status)
		}
	}

	existing, err := s.store.Todos().GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, storageErr("get todo", err, todoNotFound(id))
	}
	patch := existing
	if in.Title != nil {
		patch.Title = title
	}
	if in.Subtitle != nil {
		patch.Subtitle = in.Subtitle
	}
	if in.Status != nil {
		patch.Status = status
	}
	patch.UpdatedAt = s.now()

	t, err := s.store.Todos().Update(ctx, id, patch)
	if err != nil {
		return dom.Todo{}, storageErr("update todo", err, todoNotFound(id))
	}
	list := []dom.Todo{t}
	if err := s.attachItems(ctx, list); err != nil {
		return dom.Todo{}, err
	}
	return list[0], nil
}

// Delete soft-deletes the todo. Its items are left as they are.
func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Todos().SoftDelete(ctx, id, s.now()); err != nil {
		return storageErr("delete todo", err, todoNotFound(id))
	}
	return nil
}

// attachItems loads the items of every todo in one query.
func (s *TodoService) attachItems(ctx context.Context, list []dom.Todo) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	byID := make(map[int64]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		byID[list[i].ID] = i
		list[i].Items = []dom.Item{}
	}
	items, err := s.store.Items().ListByTodoIDs(ctx, ids, dom.ItemFilter{})
	if err != nil {
		return storageErr("list items", err, nil)
	}
	for _, it := range items {
		i := byID[it.TodoID]
		list[i].Items = append(list[i].Items, it)
	}
	return nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apperr.Validation("title is required", map[string]any{"field": "title"})
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", apperr.Validation("title is too long",
			map[string]any{"field": "title", "max": maxTitleLen})
	}
	return title, nil
}

func invalidStatus(raw string) error {
	return apperr.Validation("status must be ACTIVE or INACTIVE",
		map[string]any{"field": "status", "value": raw})
}

func todoNotFound(id int64) *apperr.Error {
	return apperr.NotFound("todo not found", map[string]any{"id": id})
}

func itemNotFound(id int64) *apperr.Error {
	return apperr.NotFound("item not found", map[string]any{"id": id})
}

// storageErr translates a gateway error. Errors already in the taxonomy pass
// through, ErrNotFound becomes notFound (when given) and constraint violations
// become validation errors. Anything else is a storage failure.
func storageErr(op string, err error, notFound *apperr.Error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case notFound != nil && errors.Is(err, repo.ErrNotFound):
		return notFound.WithCause(err)
	case errors.Is(err, repo.ErrConstraint):
		return apperr.Validation("request violates a data constraint", nil).WithCause(err)
	default:
		return apperr.Storage(op+" failed", err)
	}
}

func utcNow() time.Time { return time.Now().UTC() }

func pageNotFound(page int) *apperr.Error {
	return apperr.NotFound("page out of range", map[string]any{"page": page})
}
