package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/repository"
)

type TodoUsecase struct {
	repo repository.TodoRepository
}

func NewTodoUsecase(repo repository.TodoRepository) *TodoUsecase {
	return &TodoUsecase{repo: repo}
}

type CreateTodoInput struct {
	UserID      string
	Title       string
	Description *string
}

func (u *TodoUsecase) CreateTodo(ctx context.Context, input CreateTodoInput) (*domain.Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	created, err := u.repo.Create(ctx, &domain.Todo{
		Title:       title,
		Description: input.Description,
		UserID:      input.UserID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTodoTitleTaken) {
			return nil, domain.ErrTodoTitleTaken
		}
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

func (u *TodoUsecase) ListTodos(ctx context.Context, userID string) ([]*domain.Todo, error) {
	todos, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (u *TodoUsecase) GetTodo(ctx context.Context, id, userID string) (*domain.Todo, error) {
	todo, err := u.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

func (u *TodoUsecase) UpdateTodo(ctx context.Context, id, userID string, upd domain.TodoUpdate) (*domain.Todo, error) {
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidInput)
		}
		upd.Title = &title
	}
	if upd.Empty() {
		return u.GetTodo(ctx, id, userID)
	}

	todo, err := u.repo.Update(ctx, id, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

func (u *TodoUsecase) DeleteTodo(ctx context.Context, id, userID string) error {
	if err := u.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
