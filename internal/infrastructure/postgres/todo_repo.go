package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = `id, title, description, user_id, created_at, updated_at`

type TodoRepository struct {
	pool *pgxpool.Pool
}

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	query := `
		INSERT INTO todos (title, description, user_id)
		VALUES ($1, $2, $3)
		RETURNING ` + todoColumns

	created, err := scanTodo(r.pool.QueryRow(ctx, query, todo.Title, todo.Description, todo.UserID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrTodoTitleTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM   todos
		WHERE  user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*domain.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	return notFoundOnBadID(scanTodo(r.pool.QueryRow(ctx, query, id, userID)))
}

func (r *TodoRepository) Update(ctx context.Context, id, userID string, upd domain.TodoUpdate) (*domain.Todo, error) {
	sets := make([]string, 0, 2)
	args := []any{id, userID}

	if upd.Title != nil {
		args = append(args, *upd.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if upd.Description != nil {
		args = append(args, *upd.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id, userID)
	}

	query := fmt.Sprintf(`
		UPDATE todos
		SET    %s, updated_at = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING %s`, strings.Join(sets, ", "), todoColumns)

	t, err := notFoundOnBadID(scanTodo(r.pool.QueryRow(ctx, query, args...)))
	if err != nil && isUniqueViolation(err) {
		return nil, domain.ErrTodoTitleTaken
	}
	return t, err
}

func (r *TodoRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if isBadID(err) {
			return domain.ErrTodoNotFound
		}
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func notFoundOnBadID(t *domain.Todo, err error) (*domain.Todo, error) {
	if err != nil && isBadID(err) {
		return nil, domain.ErrTodoNotFound
	}
	return t, err
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var t domain.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}
	return &t, nil
}

