package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/usecase"
)

type todoUsecaser interface {
	CreateTodo(ctx context.Context, input usecase.CreateTodoInput) (*domain.Todo, error)
	ListTodos(ctx context.Context, userID string) ([]*domain.Todo, error)
	GetTodo(ctx context.Context, id, userID string) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, id, userID string, upd domain.TodoUpdate) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, id, userID string) error
}

type TodoHandler struct {
	todoUsecase todoUsecaser
	logger      *slog.Logger
}

func NewTodoHandler(todoUsecase todoUsecaser, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todoUsecase: todoUsecase, logger: logger.With("component", "todo_handler")}
}

type createTodoRequest struct {
	Title       string  `json:"title"       binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

type updateTodoRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

type todoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTodoResponse(t *domain.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// POST /api/todos/create
func (h *TodoHandler) Create(ctx *gin.Context) {
	var req createTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	todo, err := h.todoUsecase.CreateTodo(ctx.Request.Context(), usecase.CreateTodoInput{
		UserID:      ctx.GetString("userID"),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(ctx, "create todo", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"todo": toTodoResponse(todo), "message": msgTodoCreated})
}

// GET /api/todos
func (h *TodoHandler) List(ctx *gin.Context) {
	todos, err := h.todoUsecase.ListTodos(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		h.writeError(ctx, "list todos", err)
		return
	}

	resp := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		resp = append(resp, toTodoResponse(t))
	}
	ctx.JSON(http.StatusOK, gin.H{"todos": resp})
}

// GET /api/todos/view/:id
func (h *TodoHandler) View(ctx *gin.Context) {
	todo, err := h.todoUsecase.GetTodo(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"))
	if err != nil {
		h.writeError(ctx, "get todo", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"todo": toTodoResponse(todo)})
}

// PUT /api/todos/update/:id
func (h *TodoHandler) Update(ctx *gin.Context) {
	var req updateTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	todo, err := h.todoUsecase.UpdateTodo(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"), domain.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(ctx, "update todo", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"todo": toTodoResponse(todo)})
}

// DELETE /api/todos/delete/:id
func (h *TodoHandler) Delete(ctx *gin.Context) {
	if err := h.todoUsecase.DeleteTodo(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID")); err != nil {
		h.writeError(ctx, "delete todo", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": msgTodoDeleted})
}

// writeError maps todo workflow errors. A missing todo and someone else's
// todo produce the same 400.
func (h *TodoHandler) writeError(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errWrongTodoID})
	case errors.Is(err, domain.ErrTodoTitleTaken):
		ctx.JSON(http.StatusConflict, gin.H{"error": errTodoTitleTaken})
	case errors.Is(err, domain.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": inputMessage(err)})
	default:
		h.logger.ErrorContext(ctx.Request.Context(), op, "todo_id", ctx.Param("id"), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
