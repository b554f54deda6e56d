package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/google/uuid"
)

type TodoRepository struct {
	mu    sync.RWMutex
	todos map[string]*domain.Todo
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{todos: make(map[string]*domain.Todo)}
}

func (r *TodoRepository) Create(_ context.Context, todo *domain.Todo) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTakenLocked(todo.Title, "") {
		return nil, domain.ErrTodoTitleTaken
	}

	now := time.Now().UTC()
	t := cloneTodo(todo)
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.todos[t.ID] = t
	return cloneTodo(t), nil
}

// ListByUser returns the owner's todos, newest first.
func (r *TodoRepository) ListByUser(_ context.Context, userID string) ([]*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Todo, 0)
	for _, t := range r.todos {
		if t.UserID == userID {
			out = append(out, cloneTodo(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TodoRepository) GetByID(_ context.Context, id, userID string) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	return cloneTodo(t), nil
}

func (r *TodoRepository) Update(_ context.Context, id, userID string, upd domain.TodoUpdate) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	if upd.Title != nil {
		if r.titleTakenLocked(*upd.Title, id) {
			return nil, domain.ErrTodoTitleTaken
		}
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		d := *upd.Description
		t.Description = &d
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTodo(t), nil
}

func (r *TodoRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return domain.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

// Titles are unique across the whole store, not per owner.
func (r *TodoRepository) titleTakenLocked(title, exceptID string) bool {
	for _, t := range r.todos {
		if t.Title == title && t.ID != exceptID {
			return true
		}
	}
	return false
}

func cloneTodo(t *domain.Todo) *domain.Todo {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}
