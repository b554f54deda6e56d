package memory_test

import (
	"context"
	"testing"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoRepository_TitleUniqueAcrossOwners(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTodoRepository()

	_, err := repo.Create(ctx, &domain.Todo{Title: "groceries", UserID: "alice"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Todo{Title: "groceries", UserID: "bob"})
	assert.ErrorIs(t, err, domain.ErrTodoTitleTaken)
}

func TestTodoRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTodoRepository()

	todo, err := repo.Create(ctx, &domain.Todo{Title: "alice's", UserID: "alice"})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, todo.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)

	title := "stolen"
	_, err = repo.Update(ctx, todo.ID, "bob", domain.TodoUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, todo.ID, "bob"), domain.ErrTodoNotFound)

	list, err := repo.ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := repo.GetByID(ctx, todo.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice's", got.Title)
}

func TestTodoRepository_UpdateKeepsOwnTitle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTodoRepository()

	todo, err := repo.Create(ctx, &domain.Todo{Title: "same", UserID: "alice"})
	require.NoError(t, err)

	title := "same"
	desc := "now with details"
	updated, err := repo.Update(ctx, todo.ID, "alice", domain.TodoUpdate{Title: &title, Description: &desc})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "now with details", *updated.Description)
	assert.Equal(t, "alice", updated.UserID)
}

func TestTodoRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTodoRepository()

	todo, err := repo.Create(ctx, &domain.Todo{Title: "temp", UserID: "alice"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, todo.ID, "alice"))
	_, err = repo.GetByID(ctx, todo.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}
