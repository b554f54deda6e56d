package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/todo-api/internal/usecase"
)

const (
	passwordMinLen = 8
	// bcrypt ignores everything past 72 bytes.
	passwordMaxLen = 72
)

// accountUsecaser is the subset of AccountUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type accountUsecaser interface {
	Signup(ctx context.Context, input usecase.SignupInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthResult, error)
	ForgotPassword(ctx context.Context, email, linkBase string) error
	CheckResetToken(ctx context.Context, rawToken string) (*domain.User, error)
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	UpdateProfile(ctx context.Context, userID string, input usecase.UpdateProfileInput) (*domain.User, error)
}

type AccountHandler struct {
	accountUsecase accountUsecaser
	logger         *slog.Logger
	publicBaseURL  string
}

// NewAccountHandler builds reset links from publicBaseURL, or from the
// incoming request when it is empty.
func NewAccountHandler(accountUsecase accountUsecaser, publicBaseURL string, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		logger:         logger.With("component", "account_handler"),
	}
}

type signUpRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name"     binding:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

// Unknown fields are dropped by the decoder; only these three can change.
type updateProfileRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email"    binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toUserResponse is the only way a user leaves the HTTP layer; it never
// carries the password hash or the reset pair.
func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// POST /api/user/signUp
func (h *AccountHandler) SignUp(ctx *gin.Context) {
	var req signUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	res, err := h.accountUsecase.Signup(ctx.Request.Context(), usecase.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			ctx.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "sign up", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusCreated, authResponse{User: toUserResponse(res.User), Token: res.Token})
}

// POST /api/user/login
func (h *AccountHandler) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	res, err := h.accountUsecase.Login(ctx.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "login", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, authResponse{User: toUserResponse(res.User), Token: res.Token})
}

// POST /api/user/forgotPassword
// Always acknowledges a well-formed request so the response does not reveal
// whether the email is registered.
func (h *AccountHandler) ForgotPassword(ctx *gin.Context) {
	var req forgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	err := h.accountUsecase.ForgotPassword(ctx.Request.Context(), req.Email, h.linkBase(ctx))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": inputMessage(err)})
		return
	case errors.Is(err, domain.ErrUserNotFound):
		h.logger.InfoContext(ctx.Request.Context(), "reset requested for unknown email")
	default:
		h.logger.ErrorContext(ctx.Request.Context(), "forgot password", "error", err)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": msgResetEmailSent})
}

// GET /api/user/reset/:token
func (h *AccountHandler) ResetView(ctx *gin.Context) {
	user, err := h.accountUsecase.CheckResetToken(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		h.resetFailed(ctx, "check reset token", err)
		return
	}

	ctx.HTML(http.StatusOK, ResetPageName, resetPageData{
		Email:     user.Email,
		Action:    ctx.Request.URL.Path,
		MinLength: passwordMinLen,
		MaxLength: passwordMaxLen,
	})
}

// POST /api/user/reset/:token
// Accepts the form posted by ResetView as well as a JSON body. A dead token
// gets the plain-text reply whatever the body holds.
func (h *AccountHandler) ResetSubmit(ctx *gin.Context) {
	if _, err := h.accountUsecase.CheckResetToken(ctx.Request.Context(), ctx.Param("token")); err != nil {
		h.resetFailed(ctx, "check reset token", err)
		return
	}

	var req resetPasswordRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	if err := h.accountUsecase.ResetPassword(ctx.Request.Context(), ctx.Param("token"), req.Password); err != nil {
		h.resetFailed(ctx, "reset password", err)
		return
	}

	ctx.String(http.StatusOK, msgPasswordUpdated)
}

func (h *AccountHandler) resetFailed(ctx *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrResetTokenInvalid) {
		ctx.String(http.StatusBadRequest, msgResetInvalid)
		return
	}
	h.logger.ErrorContext(ctx.Request.Context(), op, "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}

// GET /api/user/profile
func (h *AccountHandler) Profile(ctx *gin.Context) {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// PUT /api/user/profile/updateprofile
func (h *AccountHandler) UpdateProfile(ctx *gin.Context) {
	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	userID := ctx.GetString("userID")
	user, err := h.accountUsecase.UpdateProfile(ctx.Request.Context(), userID, usecase.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			ctx.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		case errors.Is(err, domain.ErrInvalidInput):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": inputMessage(err)})
		case errors.Is(err, domain.ErrUserNotFound):
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		default:
			h.logger.ErrorContext(ctx.Request.Context(), "update profile", "user_id", userID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *AccountHandler) linkBase(ctx *gin.Context) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	scheme := "http"
	if ctx.Request.TLS != nil || strings.EqualFold(ctx.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + ctx.Request.Host
}
