// seed creates a demo user with a handful of todos in the local dev database
// and prints a session token for it.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/email"
	"github.com/ErlanBelekov/todo-api/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/todo-api/internal/password"
	"github.com/ErlanBelekov/todo-api/internal/token"
	"github.com/ErlanBelekov/todo-api/internal/usecase"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "seed-password"
	seedName     = "Seed User"
)

var todos = []struct {
	title       string
	description string
}{
	{"Buy groceries", "Milk, eggs, bread"},
	{"Renew passport", "Appointment needs booking two weeks ahead"},
	{"Write weekly report", ""},
	{"Call the plumber", "Kitchen sink is leaking again"},
	{"Read a chapter of a book", ""},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	key := os.Getenv("ACCESS_TOKEN_PRIVATE_KEY")
	if len(key) < 32 {
		log.Fatal("ACCESS_TOKEN_PRIVATE_KEY must be at least 32 characters")
	}

	pool, err := postgres.Open(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	logger := slog.Default()
	accounts := usecase.NewAccountUsecase(
		postgres.NewUserRepository(pool),
		password.NewHasher(bcrypt.MinCost),
		token.NewSession([]byte(key)),
		email.NewSender(email.Options{Env: "local"}, logger),
		logger,
	)

	res, err := accounts.Signup(ctx, usecase.SignupInput{Email: seedEmail, Password: seedPassword, Name: seedName})
	if errors.Is(err, domain.ErrEmailTaken) {
		res, err = accounts.Login(ctx, usecase.LoginInput{Email: seedEmail, Password: seedPassword})
	}
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	todoUsecase := usecase.NewTodoUsecase(postgres.NewTodoRepository(pool))
	created := 0
	for _, t := range todos {
		var desc *string
		if t.description != "" {
			d := t.description
			desc = &d
		}
		_, err := todoUsecase.CreateTodo(ctx, usecase.CreateTodoInput{UserID: res.User.ID, Title: t.title, Description: desc})
		if errors.Is(err, domain.ErrTodoTitleTaken) {
			continue
		}
		if err != nil {
			log.Fatalf("seed todo %q: %v", t.title, err)
		}
		created++
	}

	fmt.Printf("user:  %s (%s / %s)\n", res.User.ID, seedEmail, seedPassword)
	fmt.Printf("todos: %d created\n", created)
	fmt.Printf("token: %s\n", res.Token)
}
