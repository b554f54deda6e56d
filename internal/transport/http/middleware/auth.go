package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	ctxlog "github.com/ErlanBelekov/todo-api/internal/log"
)

const (
	errUnauthorized   = "Unauthorized"
	errInternalServer = "Internal server error"

	userIDKey = "userID"
	userKey   = "user"
)

type sessionVerifier interface {
	Verify(raw string) (string, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth validates a Bearer session token, loads its user and stores both
// "userID" and the user in the gin context. Every rejection is the same 401.
func Auth(sessions sessionVerifier, users userFinder, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")

	return func(c *gin.Context) {
		// The scheme is case-insensitive.
		scheme, raw, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		userID, err := sessions.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			logger.ErrorContext(c.Request.Context(), "load session user", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
			return
		}

		c.Request = c.Request.WithContext(ctxlog.WithUserID(c.Request.Context(), user.ID))
		c.Set(userIDKey, user.ID)
		c.Set(userKey, user)
		c.Next()
	}
}

// UserFromContext returns the user stored by Auth.
func UserFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}
