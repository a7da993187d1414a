package dto

import "time"

type ItemInput struct {
	Content     string `json:"content" example:"milk"`
	IsCompleted *bool  `json:"isCompleted"`
}

type CreateItemRequest = ItemInput

// UpdateItemRequest: nil = не менять.
type UpdateItemRequest struct {
	Content     *string `json:"content"`
	IsCompleted *bool   `json:"isCompleted"`
}

type ListItemsQuery struct {
	IsCompleted *bool `form:"isCompleted"`
}

type CompletionRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

type BulkCompletionRequest struct {
	IDs         []int64 `json:"ids" binding:"required,min=1,max=1000,dive,gt=0"`
	IsCompleted *bool   `json:"isCompleted" binding:"required"`
}

type ItemResponse struct {
	ID          int64      `json:"id"`
	TodoID      int64      `json:"todoId"`
	Content     string     `json:"content"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
