package domain

import "time"

// Item is a single entry of a todo list.
type Item struct {
	ID          int64
	TodoID      int64
	Content     string
	IsCompleted bool
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetCompleted sets the completion flag and derives CompletedAt from it,
// so the pair never disagrees.
func (it *Item) SetCompleted(done bool, now time.Time) {
	it.IsCompleted = done
	it.CompletedAt = CompletionStamp(done, now)
}

// CompletionStamp is the completed_at value stored alongside is_completed = done.
func CompletionStamp(done bool, now time.Time) *time.Time {
	if !done {
		return nil
	}
	at := now
	return &at
}

// ItemFilter narrows an item listing. Nil fields do not filter.
type ItemFilter struct {
	IsCompleted *bool
}
