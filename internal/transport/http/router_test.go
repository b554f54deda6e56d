package httptransport_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/todo-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/todo-api/internal/password"
	"github.com/ErlanBelekov/todo-api/internal/token"
	httptransport "github.com/ErlanBelekov/todo-api/internal/transport/http"
	"github.com/ErlanBelekov/todo-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/todo-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/todo-api/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type outbox struct {
	mu     sync.Mutex
	bodies []string
}

func (o *outbox) Send(_ context.Context, _, _, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bodies = append(o.bodies, body)
	return nil
}

func (o *outbox) last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.bodies) == 0 {
		return ""
	}
	return o.bodies[len(o.bodies)-1]
}

type app struct {
	t      *testing.T
	router  http.Handler
	mail    *outbox
	account *usecase.AccountUsecase
}

func newApp(t *testing.T) *app {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memory.NewUserRepository()
	sessions := token.NewSession([]byte("router-test-secret-32-characters!"))
	mail := &outbox{}

	account := usecase.NewAccountUsecase(users, password.NewHasher(bcrypt.MinCost), sessions, mail, logger)
	todos := usecase.NewTodoUsecase(memory.NewTodoRepository())

	r := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:  logger,
		Account: handler.NewAccountHandler(account, "https://api.example.com", logger),
		Todo:    handler.NewTodoHandler(todos, logger),
		Auth:    middleware.Auth(sessions, users, logger),
	})
	return &app{t: t, router: httptransport.WithCORS(r, []string{"https://app.example.com"}), mail: mail, account: account}
}

func (a *app) call(method, path, bearer, body string) (int, map[string]any) {
	a.t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	a.router.ServeHTTP(w, req)

	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	return w.Code, m
}

func (a *app) signup(email string) string {
	a.t.Helper()
	code, body := a.call(http.MethodPost, "/api/user/signUp", "",
		`{"email":"`+email+`","password":"password123","name":"Test"}`)
	require.Equal(a.t, http.StatusCreated, code, body)
	return body["token"].(string)
}

func TestRoot(t *testing.T) {
	code, body := newApp(t).call(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "API is working", body["message"])
}

func TestAccountFlow(t *testing.T) {
	a := newApp(t)
	a.signup("Flow@Example.com")

	code, _ := a.call(http.MethodPost, "/api/user/signUp", "", `{"email":"flow@example.com","password":"password123","name":"X"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, body := a.call(http.MethodPost, "/api/user/login", "", `{"email":"FLOW@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, code)
	tok := body["token"].(string)

	code, body = a.call(http.MethodGet, "/api/user/profile", tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "flow@example.com", body["user"].(map[string]any)["email"])

	code, _ = a.call(http.MethodGet, "/api/user/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = a.call(http.MethodPut, "/api/user/profile/updateprofile", tok, `{"name":"Renamed","isAdmin":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Renamed", body["user"].(map[string]any)["name"])
	assert.NotContains(t, body["user"], "isAdmin")
}

func TestPasswordResetFlow(t *testing.T) {
	a := newApp(t)
	a.signup("reset@example.com")

	code, _ := a.call(http.MethodPost, "/api/user/forgotPassword", "", `{"email":"reset@example.com"}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.call(http.MethodPost, "/api/user/forgotPassword", "", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusOK, code)

	a.account.Wait()
	mail := a.mail.last()
	prefix := "https://api.example.com" + usecase.ResetPath
	i := strings.Index(mail, prefix)
	require.NotEqual(t, -1, i, mail)
	plain := strings.SplitN(mail[i+len(prefix):], `"`, 2)[0]
	resetPath := usecase.ResetPath + plain

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, resetPath, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<form")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, resetPath, strings.NewReader(`{"password":"brand-new-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your password has been updated.", w.Body.String())

	// single use
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, resetPath, strings.NewReader(`{"password":"another-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	a.router.ServeHTTP(w, req)
	assert.Equal(t, "Password reset token is invalid or has expired.", w.Body.String())

	code, _ = a.call(http.MethodPost, "/api/user/login", "", `{"email":"reset@example.com","password":"brand-new-pass"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestTodoFlow_OwnershipIsolation(t *testing.T) {
	a := newApp(t)
	alice := a.signup("alice@example.com")
	bob := a.signup("bob@example.com")

	code, body := a.call(http.MethodPost, "/api/todos/create", alice, `{"title":"alice's","description":"private"}`)
	require.Equal(t, http.StatusCreated, code)
	id := body["todo"].(map[string]any)["id"].(string)

	code, body = a.call(http.MethodGet, "/api/todos", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["todos"], 1)

	code, body = a.call(http.MethodGet, "/api/todos/view/"+id, alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice's", body["todo"].(map[string]any)["title"])

	code, body = a.call(http.MethodGet, "/api/todos", bob, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["todos"])

	_, foreign := a.call(http.MethodGet, "/api/todos/view/"+id, bob, "")
	_, missing := a.call(http.MethodGet, "/api/todos/view/does-not-exist", bob, "")
	assert.Equal(t, missing, foreign)

	code, _ = a.call(http.MethodPut, "/api/todos/update/"+id, bob, `{"title":"pwned"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.call(http.MethodDelete, "/api/todos/delete/"+id, bob, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.call(http.MethodPost, "/api/todos/create", bob, `{"title":"alice's"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.call(http.MethodDelete, "/api/todos/delete/"+id, alice, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestCORS_Preflight(t *testing.T) {
	a := newApp(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	a.router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
