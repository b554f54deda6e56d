package repository

import (
	"context"

	"github.com/ErlanBelekov/todo-api/internal/domain"
)

// TodoRepository reads and writes todos. Every method except Create filters by
// both id and owner; a miss on either returns domain.ErrTodoNotFound.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Todo, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Todo, error)
	Update(ctx context.Context, id, userID string, upd domain.TodoUpdate) (*domain.Todo, error)
	Delete(ctx context.Context, id, userID string) error
}
