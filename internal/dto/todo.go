package dto

import "time"

// TodoInput is the todo part of a create request.
type TodoInput struct {
	Title    string  `json:"title" example:"Groceries"`
	Subtitle *string `json:"subtitle" example:"weekly run"`
	Status   string  `json:"status" example:"ACTIVE" enums:"ACTIVE,INACTIVE"` // optional, ACTIVE by default
}

// CreateTodoRequest is the JSON body for POST /todos: a todo and the items
// created with it in one transaction.
type CreateTodoRequest struct {
	Todo  *TodoInput  `json:"todo" binding:"required"`
	Items []ItemInput `json:"items"`
}

type UpdateTodoRequest struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Status   *string `json:"status" enums:"ACTIVE,INACTIVE"`
}

// ListTodosQuery binds GET /todos query parameters.
type ListTodosQuery struct {
	Status string `form:"status"`
	Page   *int   `form:"page" binding:"omitempty,min=1"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1,max=100"`
}

// TodoBody is a todo without its items.
type TodoBody struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Subtitle  *string    `json:"subtitle"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`
}

type TodoResponse struct {
	TodoBody
	Items []ItemResponse `json:"items"`
}

// CreateTodoResponse mirrors the create request envelope.
type CreateTodoResponse struct {
	Todo  TodoBody       `json:"todo"`
	Items []ItemResponse `json:"items"`
}
