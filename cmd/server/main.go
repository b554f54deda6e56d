package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/todo-api/config"
	"github.com/ErlanBelekov/todo-api/internal/email"
	"github.com/ErlanBelekov/todo-api/internal/health"
	"github.com/ErlanBelekov/todo-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/todo-api/internal/infrastructure/mongodb"
	"github.com/ErlanBelekov/todo-api/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/todo-api/internal/log"
	"github.com/ErlanBelekov/todo-api/internal/metrics"
	"github.com/ErlanBelekov/todo-api/internal/password"
	"github.com/ErlanBelekov/todo-api/internal/repository"
	"github.com/ErlanBelekov/todo-api/internal/scheduler"
	"github.com/ErlanBelekov/todo-api/internal/token"
	httptransport "github.com/ErlanBelekov/todo-api/internal/transport/http"
	"github.com/ErlanBelekov/todo-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/todo-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/todo-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	st, err := openStores(ctx, cfg)
	if err != nil {
		stop()
		log.Fatalf("store: %v", err)
	}
	defer st.close()
	logger.Info("store ready", "driver", cfg.StoreDriver)

	sessions := token.NewSession([]byte(cfg.AccessTokenKey))
	sender := email.NewSender(email.Options{
		Env:          cfg.Env,
		From:         cfg.MailFrom,
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
	}, logger)

	// Accounts
	accountUsecase := usecase.NewAccountUsecase(st.users, password.NewHasher(cfg.BcryptCost), sessions, sender, logger)
	accountHandler := handler.NewAccountHandler(accountUsecase, cfg.PublicBaseURL, logger)

	// Todos
	todoUsecase := usecase.NewTodoUsecase(st.todos)
	todoHandler := handler.NewTodoHandler(todoUsecase, logger)

	reaper, err := scheduler.NewResetTokenReaper(st.users, cfg.ResetReaperSchedule, logger)
	if err != nil {
		stop()
		log.Fatalf("reaper: %v", err)
	}
	go reaper.Start(ctx)

	metrics.Register()
	checker := health.NewChecker(cfg.StoreDriver, st.pinger, logger, prometheus.DefaultRegisterer)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:  logger,
		Account: accountHandler,
		Todo:    todoHandler,
		Auth:    middleware.Auth(sessions, st.users, logger),
		HSTS:    !cfg.IsLocal(),
	})

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.WithCORS(router, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	accountUsecase.Wait()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

type stores struct {
	users  repository.UserRepository
	todos  repository.TodoRepository
	pinger health.Pinger
	close  func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  postgres.NewUserRepository(pool),
			todos:  postgres.NewTodoRepository(pool),
			pinger: pool,
			close:  pool.Close,
		}, nil

	case config.StoreMongo:
		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  store.Users(),
			todos:  store.Todos(),
			pinger: store,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = store.Close(closeCtx)
			},
		}, nil

	case config.StoreMemory:
		users := memory.NewUserRepository()
		return &stores{
			users:  users,
			todos:  memory.NewTodoRepository(),
			pinger: users,
			close:  func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
