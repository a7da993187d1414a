package handlers

import (
	"net/http"
	"strconv"

	"TodoAPI/internal/apperr"
	dom "TodoAPI/internal/domain"
	"TodoAPI/internal/dto"
	"TodoAPI/internal/service"

	"github.com/gin-gonic/gin"
)

// TotalCountHeader carries the number of todos matching a list filter.
const TotalCountHeader = "X-Total-Count"

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Create godoc
// @Summary      Create a todo with its items
// @Description  The todo and all items are written in one transaction.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTodoRequest  true  "Todo and items"
// @Success      201   {object}  dto.CreateTodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	items := make([]service.CreateItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateItemInput{Content: it.Content, IsCompleted: it.IsCompleted}
	}
	t, err := h.svc.Create(c.Request.Context(), service.CreateTodoInput{
		Title:    req.Todo.Title,
		Subtitle: req.Todo.Subtitle,
		Status:   req.Todo.Status,
	}, items)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateTodoResponse{
		Todo:  todoToBody(t),
		Items: itemsToResponses(t.Items),
	})
}

// List godoc
// @Summary      List todos
// @Description  Live todos ordered by id, each with its items. X-Total-Count holds the number of matching todos.
// @Tags         todos
// @Produce      json
// @Param        status  query     string  false  "Exact status"  Enums(ACTIVE, INACTIVE)
// @Param        page    query     int     false  "1-based page"
// @Param        limit   query     int     false  "Page size (default 10, max 100)"
// @Success      200     {array}   dto.TodoResponse
// @Header       200     {integer} X-Total-Count "Matching todos"
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      500     {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	var q dto.ListTodosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, bindError(err))
		return
	}
	params := service.ListTodosParams{Status: q.Status}
	if q.Page != nil {
		params.Page = *q.Page
	}
	if q.Limit != nil {
		params.Limit = *q.Limit
	}
	list, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header(TotalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, todosToResponses(list))
}

// GetByID godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todoToResponse(t))
}

// Update godoc
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Partial update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, service.UpdateTodoInput{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Status:   req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todoToResponse(t))
}

// Delete godoc
// @Summary      Soft-delete a todo
// @Tags         todos
// @Param        id   path  int  true  "Todo ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(c, apperr.Validation("invalid id", map[string]any{"field": name, "value": raw}))
		return 0, false
	}
	return id, true
}

func todoToBody(t dom.Todo) dto.TodoBody {
	return dto.TodoBody{
		ID:        t.ID,
		Title:     t.Title,
		Subtitle:  t.Subtitle,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		DeletedAt: t.DeletedAt,
	}
}

func todoToResponse(t dom.Todo) dto.TodoResponse {
	return dto.TodoResponse{TodoBody: todoToBody(t), Items: itemsToResponses(t.Items)}
}

func todosToResponses(list []dom.Todo) []dto.TodoResponse {
	out := make([]dto.TodoResponse, len(list))
	for i := range list {
		out[i] = todoToResponse(list[i])
	}
	return out
}
