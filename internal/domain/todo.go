package domain

import (
	"errors"
	"time"
)

var (
	// ErrTodoNotFound covers both "does not exist" and "owned by someone else".
	ErrTodoNotFound   = errors.New("todo not found")
	ErrTodoTitleTaken = errors.New("todo with this title already exists")
)

type Todo struct {
	ID          string
	Title       string
	Description *string // nil means no description
	UserID      string  // owner, fixed at creation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TodoUpdate is the allow-list of todo fields a caller may change.
type TodoUpdate struct {
	Title       *string
	Description *string
}

func (u TodoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil
}
