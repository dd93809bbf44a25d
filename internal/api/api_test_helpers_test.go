package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkarpov/todoevo/internal/api"
	apiMiddleware "github.com/mkarpov/todoevo/internal/api/middleware"
	"github.com/mkarpov/todoevo/internal/platform/memory"
	"github.com/mkarpov/todoevo/internal/service"
	"github.com/mkarpov/todoevo/internal/service/auth"
	"github.com/mkarpov/todoevo/internal/store"
)

const testJWTSecret = "api-test-secret-thirty-two-chars!!"

// testEnv wires the full HTTP surface over in-memory stores.
type testEnv struct {
	router     http.Handler
	userStore  *memory.MemoryUserStore
	taskStore  *memory.MemoryTaskStore
	jwtService auth.JWTService
}

// newTestEnv builds a router with the same route layout as the server,
// minus rate limiting, over in-memory stores. An optional task store
// override lets tests inject failing implementations.
func newTestEnv(t *testing.T, taskStoreOverride store.TaskStore) *testEnv {
	t.Helper()

	tasks := memory.NewMemoryTaskStore()
	users := memory.NewMemoryUserStore(bcrypt.MinCost, tasks)
	jwtService := auth.NewTestJWTService(testJWTSecret, time.Hour, time.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var taskStore store.TaskStore = tasks
	if taskStoreOverride != nil {
		taskStore = taskStoreOverride
	}

	authHandler := api.NewAuthHandler(users, jwtService, auth.NewBcryptVerifier())
	taskHandler := api.NewTaskHandler(service.NewTaskService(taskStore, logger))
	authMiddleware := apiMiddleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(apiMiddleware.TraceMiddleware)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/me", authHandler.Me)
			r.Put("/profile", authHandler.UpdateProfile)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/", taskHandler.Create)
		r.Get("/", taskHandler.List)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Patch("/{id}", taskHandler.Update)
		r.Patch("/{id}/complete", taskHandler.ToggleComplete)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return &testEnv{
		router:     r,
		userStore:  users,
		taskStore:  tasks,
		jwtService: jwtService,
	}
}

// doJSON performs a request with a JSON body and optional bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns the decoded public record.
func (e *testEnv) signup(t *testing.T, email, name, password string) api.UserResponse {
	t.Helper()

	rec := e.doJSON(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "signup failed: %s", rec.Body.String())

	var user api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

// login authenticates with the form-encoded credentials and returns the
// bearer token.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var token api.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

// signupAndLogin is the common setup of an authenticated test user.
func (e *testEnv) signupAndLogin(t *testing.T, email string) string {
	t.Helper()
	e.signup(t, email, "Test User", "Password123")
	return e.login(t, email, "Password123")
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) api.TaskResponse {
	t.Helper()
	var task api.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}
