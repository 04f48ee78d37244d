package models

import "time"

// TodoList là một danh sách thuộc về một user
type TodoList struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoItem là một việc cần làm trong một danh sách
type TodoItem struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      ItemStatus `json:"status"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListRequest is the body of POST and PUT /lists. A user_id in the body is
// not read; the owner always comes from the token.
type ListRequest struct {
	Title string `json:"title"`
}

// CreateItemRequest is the body of POST /lists/:id/items.
type CreateItemRequest struct {
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      *ItemStatus `json:"status"`
	Priority    *int        `json:"priority"`
	DueDate     *time.Time  `json:"due_date"`
}

// UpdateItemRequest is the body of PUT /lists/:id/items/:item_id. Absent
// fields are left unchanged. Description and due_date may be sent as null
// to clear them.
type UpdateItemRequest struct {
	Title       *string             `json:"title"`
	Description Optional[string]    `json:"description" swaggertype:"string" extensions:"x-nullable"`
	Status      *ItemStatus         `json:"status"`
	Priority    *int                `json:"priority"`
	DueDate     Optional[time.Time] `json:"due_date" swaggertype:"string" format:"date-time" extensions:"x-nullable"`
}

// Empty reports whether no field was supplied.
func (r UpdateItemRequest) Empty() bool {
	return r.Title == nil && !r.Description.Set && r.Status == nil && r.Priority == nil && !r.DueDate.Set
}

// Created is the response of every create endpoint.
type Created struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Data  []T `json:"data"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}
