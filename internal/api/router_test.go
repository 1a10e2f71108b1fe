package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasktrack/internal/app/service"
	"tasktrack/internal/common"
	"tasktrack/internal/common/security"
	"tasktrack/internal/domain/model"
	"tasktrack/internal/platform/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory repositories ---

type memUserRepo struct {
	users []*model.User
}

func (m *memUserRepo) Create(ctx context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return common.ErrConflict
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	m.users = append(m.users, &stored)
	return nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

type memTaskRepo struct {
	tasks []*model.Task
}

func (m *memTaskRepo) Create(ctx context.Context, task *model.Task) error {
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	m.tasks = append(m.tasks, &stored)
	return nil
}

func (m *memTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range m.tasks {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) FindByOwnerAndID(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	for _, t := range m.tasks {
		if t.ID == taskID && t.OwnerID == ownerID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memTaskRepo) Update(ctx context.Context, task *model.Task) error {
	for _, t := range m.tasks {
		if t.ID == task.ID && t.OwnerID == task.OwnerID {
			t.Title = task.Title
			t.Description = task.Description
			t.Priority = task.Priority
			t.DueDate = task.DueDate
			t.Completed = task.Completed
			t.UpdatedAt = time.Now()
			task.CreatedAt = t.CreatedAt
			task.UpdatedAt = t.UpdatedAt
			return nil
		}
	}
	return common.ErrNotFound
}

func (m *memTaskRepo) Delete(ctx context.Context, ownerID, taskID string) error {
	for i, t := range m.tasks {
		if t.ID == taskID && t.OwnerID == ownerID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

// --- harness ---

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	tokens := security.NewTokenManager([]byte("test-secret"), time.Hour)
	authService := service.NewAuthService(&memUserRepo{}, tokens)
	taskService := service.NewTaskService(&memTaskRepo{}, cache.NewTaskListCache(nil, 0))
	return NewRouter(tokens, authService, taskService, []string{"*"})
}

// apiResponse mirrors the wire shape the frontend consumes: payloads sit at
// the top level next to "success".
type apiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	Token   string            `json:"token"`
	User    *model.User       `json:"user"`
	Task    *model.Task       `json:"task"`
	Tasks   []model.Task      `json:"tasks"`
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	}
	return rec.Code, resp
}

// rawKeys returns the top-level JSON keys of a response body.
func rawKeys(t *testing.T, router http.Handler, method, path, token string, body interface{}) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	keys := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys), "body: %s", rec.Body.String())
	return rec.Code, keys
}

func registerUser(t *testing.T, router http.Handler, name, email, password string) (userID, token string) {
	t.Helper()
	code, resp := doRequest(t, router, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, resp.Success)
	require.NotNil(t, resp.User)
	require.NotEmpty(t, resp.Token)
	return resp.User.ID, resp.Token
}

// --- tests ---

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	annID, _ := registerUser(t, router, "Ann", "ann@x.com", "secret123")

	// Wrong password: generic 401.
	code, resp := doRequest(t, router, http.MethodPost, "/api/user/login", "", map[string]string{
		"email": "ann@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)

	// Correct login.
	code, resp = doRequest(t, router, http.MethodPost, "/api/user/login", "", map[string]string{
		"email": "ann@x.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.User)
	assert.Equal(t, annID, resp.User.ID)

	// Current user.
	code, resp = doRequest(t, router, http.MethodGet, "/api/user/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ann", resp.User.Name)

	// Duplicate registration conflicts.
	code, _ = doRequest(t, router, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Ann 2", "email": "ANN@x.com", "password": "secret456",
	})
	assert.Equal(t, http.StatusConflict, code)
}

func TestProtectedRoutesRequireCredential(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	code, resp := doRequest(t, router, http.MethodGet, "/api/tasks/gp", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)

	code, _ = doRequest(t, router, http.MethodGet, "/api/tasks/gp", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = doRequest(t, router, http.MethodGet, "/api/user/me", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	annID, annToken := registerUser(t, router, "Ann", "ann@x.com", "secret123")
	_, bobToken := registerUser(t, router, "Bob", "bob@x.com", "secret456")

	// Create with only a title: everything else defaults.
	code, resp := doRequest(t, router, http.MethodPost, "/api/tasks/gp", annToken, map[string]string{
		"title": "Ship spec",
	})
	require.Equal(t, http.StatusCreated, code)
	require.NotNil(t, resp.Task)
	task := *resp.Task
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, annID, task.OwnerID)
	assert.Equal(t, model.PriorityLow, task.Priority)
	assert.False(t, task.Completed)

	// Empty title rejected with field detail.
	code, resp = doRequest(t, router, http.MethodPost, "/api/tasks/gp", annToken, map[string]string{
		"title": "",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "title")

	// Bob sees an empty list and cannot touch Ann's task.
	code, resp = doRequest(t, router, http.MethodGet, "/api/tasks/gp", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Tasks)

	code, _ = doRequest(t, router, http.MethodGet, "/api/tasks/"+task.ID+"/gp", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = doRequest(t, router, http.MethodDelete, "/api/tasks/"+task.ID+"/gp", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Full-replace update over POST, as the frontend sends it.
	code, resp = doRequest(t, router, http.MethodPost, "/api/tasks/"+task.ID+"/gp", annToken, map[string]interface{}{
		"title": "Ship spec today", "priority": "High", "completed": true,
	})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Task)
	assert.Equal(t, model.PriorityHigh, resp.Task.Priority)
	assert.True(t, resp.Task.Completed)

	// A second update omitting priority resets it to the default.
	code, resp = doRequest(t, router, http.MethodPut, "/api/tasks/"+task.ID+"/gp", annToken, map[string]interface{}{
		"title": "Ship spec today",
	})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Task)
	assert.Equal(t, model.PriorityLow, resp.Task.Priority)
	assert.False(t, resp.Task.Completed)

	// Delete, then the task is gone.
	code, _ = doRequest(t, router, http.MethodDelete, "/api/tasks/"+task.ID+"/gp", annToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = doRequest(t, router, http.MethodGet, "/api/tasks/"+task.ID+"/gp", annToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = doRequest(t, router, http.MethodDelete, "/api/tasks/"+task.ID+"/gp", annToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// The frontend reads response.token, response.user, response.tasks and
// response.task directly off the top level of the body; nothing may be
// nested under an extra wrapper key.
func TestResponsePayloadsAreTopLevel(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	code, keys := rawKeys(t, router, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, keys, "token")
	assert.Contains(t, keys, "user")
	assert.NotContains(t, keys, "data")

	var token string
	require.NoError(t, json.Unmarshal(keys["token"], &token))
	require.NotEmpty(t, token)

	code, keys = rawKeys(t, router, http.MethodPost, "/api/tasks/gp", token, map[string]string{
		"title": "Ship spec",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, keys, "task")
	assert.NotContains(t, keys, "data")

	code, keys = rawKeys(t, router, http.MethodGet, "/api/tasks/gp", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, keys, "tasks")
	assert.NotContains(t, keys, "data")

	code, keys = rawKeys(t, router, http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, keys, "user")
	assert.NotContains(t, keys, "data")
}
