package handlers

import (
	"net/http"

	dom "TodoAPI/internal/domain"
	"TodoAPI/internal/dto"
	"TodoAPI/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	svc *service.ItemService
}

func NewItemHandler(svc *service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// ListByTodo godoc
// @Summary      List the items of a todo
// @Tags         items
// @Produce      json
// @Param        id           path      int   true   "Todo ID"
// @Param        isCompleted  query     bool  false  "Completion filter"
// @Success      200          {array}   dto.ItemResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Failure      404          {object}  dto.ErrorResponse
// @Failure      500          {object}  dto.ErrorResponse
// @Router       /todos/{id}/items [get]
func (h *ItemHandler) ListByTodo(c *gin.Context) {
	todoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var q dto.ListItemsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, bindError(err))
		return
	}
	items, err := h.svc.ListByTodo(c.Request.Context(), todoID, dom.ItemFilter{IsCompleted: q.IsCompleted})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsToResponses(items))
}

// Create godoc
// @Summary      Add an item to a todo
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Todo ID"
// @Param        body  body      dto.CreateItemRequest  true  "Item"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos/{id}/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	todoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	it, err := h.svc.Create(c.Request.Context(), todoID, service.CreateItemInput{
		Content:     req.Content,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemToResponse(it))
}

// GetByID godoc
// @Summary      Get an item by ID
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /items/{id} [get]
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	it, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(it))
}

// Update godoc
// @Summary      Update an item
// @Description  Supplying isCompleted recomputes completedAt.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Item ID"
// @Param        body  body      dto.UpdateItemRequest  true  "Partial update"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /items/{id} [patch]
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	it, err := h.svc.Update(c.Request.Context(), id, service.UpdateItemInput{
		Content:     req.Content,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(it))
}

// Delete godoc
// @Summary      Delete an item
// @Tags         items
// @Param        id   path  int  true  "Item ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
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

// SetCompletion godoc
// @Summary      Mark an item completed or open
// @Tags         items
// @Accept       json
// @Param        id    path  int                    true  "Item ID"
// @Param        body  body  dto.CompletionRequest  true  "Completion flag"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /items/{id}/completion [patch]
func (h *ItemHandler) SetCompletion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	if err := h.svc.SetCompletion(c.Request.Context(), id, *req.IsCompleted); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkSetCompletion godoc
// @Summary      Mark several items completed or open
// @Description  All ids must exist, otherwise nothing is written.
// @Tags         items
// @Accept       json
// @Param        body  body  dto.BulkCompletionRequest  true  "Ids and completion flag"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /items/bulk-completion [patch]
func (h *ItemHandler) BulkSetCompletion(c *gin.Context) {
	var req dto.BulkCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	if err := h.svc.BulkSetCompletion(c.Request.Context(), req.IDs, *req.IsCompleted); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func itemToResponse(it dom.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:          it.ID,
		TodoID:      it.TodoID,
		Content:     it.Content,
		IsCompleted: it.IsCompleted,
		CompletedAt: it.CompletedAt,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func itemsToResponses(list []dom.Item) []dto.ItemResponse {
	out := make([]dto.ItemResponse, len(list))
	for i := range list {
		out[i] = itemToResponse(list[i])
	}
	return out
}
