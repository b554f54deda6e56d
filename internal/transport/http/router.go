package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	sloggin "github.com/samber/slog-gin"

	"github.com/ErlanBelekov/todo-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/todo-api/internal/transport/http/middleware"
)

type RouterConfig struct {
	Logger  *slog.Logger
	Account *handler.AccountHandler
	Todo    *handler.TodoHandler
	// Auth is the session gate placed in front of every protected route.
	Auth gin.HandlerFunc
	HSTS bool
}

// NewRouter holds the one route table of the API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cfg.HSTS))
	r.Use(sloggin.NewWithConfig(cfg.Logger, sloggin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		// Reset paths carry the plaintext token.
		Filters: []sloggin.Filter{sloggin.IgnorePathPrefix("/api/user/reset/")},
	}))
	r.Use(middleware.Metrics())
	r.SetHTMLTemplate(handler.ResetPageTemplate)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is working"})
	})

	api := r.Group("/api")

	user := api.Group("/user")
	user.POST("/signUp", cfg.Account.SignUp)
	user.POST("/login", cfg.Account.Login)
	user.POST("/forgotPassword", cfg.Account.ForgotPassword)
	user.GET("/reset/:token", cfg.Account.ResetView)
	user.POST("/reset/:token", cfg.Account.ResetSubmit)
	user.GET("/profile", cfg.Auth, cfg.Account.Profile)
	user.PUT("/profile/updateprofile", cfg.Auth, cfg.Account.UpdateProfile)

	todos := api.Group("/todos", cfg.Auth)
	todos.POST("/create", cfg.Todo.Create)
	todos.GET("", cfg.Todo.List)
	todos.GET("/view/:id", cfg.Todo.View)
	todos.PUT("/update/:id", cfg.Todo.Update)
	todos.DELETE("/delete/:id", cfg.Todo.Delete)

	return r
}

// WithCORS wraps the router for browser clients. No origins means no CORS
// headers at all.
func WithCORS(next http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return next
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})(next)
}
