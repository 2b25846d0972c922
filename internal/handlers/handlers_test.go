package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/apiserver/internal/services"
	"github.com/taskhive/apiserver/internal/store"
	"github.com/taskhive/apiserver/types"
)

const testSecret = "test-secret"

type memUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int]types.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	now := time.Now()
	user.LastLogin = now
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) RecordLogin(_ context.Context, id int) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.LastLogin = time.Now()
	r.users[id] = user
	return nil
}

type memTaskRepo struct {
	tasks  map[int]types.Task
	nextID int
	clock  time.Time
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{
		tasks: make(map[int]types.Task),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memTaskRepo) Create(_ context.Context, task types.Task) (types.Task, error) {
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	task.ID = r.nextID
	task.CreatedAt = r.clock
	r.tasks[task.ID] = task
	return task, nil
}

func (r *memTaskRepo) ListByOwner(_ context.Context, ownerID int) ([]types.Task, error) {
	tasks := make([]types.Task, 0)
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

func (r *memTaskRepo) GetForOwner(_ context.Context, ownerID, taskID int) (types.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *memTaskRepo) Update(_ context.Context, task types.Task) (types.Task, error) {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return types.Task{}, store.ErrNotFound
	}
	r.tasks[task.ID] = task
	return task, nil
}

func (r *memTaskRepo) Delete(_ context.Context, ownerID, taskID int) error {
	task, ok := r.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

type testEnv struct {
	router   *chi.Mux
	userRepo *memUserRepo
	taskRepo *memTaskRepo
}

func newTestEnv() *testEnv {
	userRepo := newMemUserRepo()
	taskRepo := newMemTaskRepo()

	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, nil, nil)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, false)
	})
	router.Route("/api/tasks", func(r chi.Router) {
		TaskRouter(r, taskService, RequireAuth(userService, testSecret))
	})

	return &testEnv{router: router, userRepo: userRepo, taskRepo: taskRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authorize func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorize != nil {
		authorize(req)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

// signupAndLogin registers a user and returns the body token plus the
// session cookie from the login response.
func (e *testEnv) signupAndLogin(t *testing.T, name, email, password string) (string, *http.Cookie) {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/signup", SignupRequest{Name: name, Email: email, Password: password}, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = e.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var auth AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	var cookie *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")

	return auth.Token, cookie
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(cookie *http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(cookie)
	}
}
