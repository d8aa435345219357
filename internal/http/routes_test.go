package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/http/handlers"
	"taskboard/internal/service"
	"taskboard/internal/validation"
)

// memUserRepo and memTaskRepo stand in for the postgres repositories so the
// full route stack can run under httptest.

type memUserRepo struct {
	nextID int64
	byID   map[int64]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, byID: make(map[int64]domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	r.byID[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

type memTaskRepo struct {
	nextID int64
	tasks  map[int64]domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{nextID: 1, tasks: make(map[int64]domain.Task)}
}

func (r *memTaskRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Task, error) {
	out := []domain.Task{}
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Create(_ context.Context, t *domain.Task) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.tasks[t.ID] = *t
	return nil
}

func (r *memTaskRepo) Update(_ context.Context, id, ownerID int64, patch validation.TaskPatch) (domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return domain.Task{}, domain.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Assignee != nil {
		t.Assignee = *patch.Assignee
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Deadline != nil {
		t.Deadline = *patch.Deadline
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = time.Now()
	r.tasks[id] = t
	return t, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id, ownerID int64) error {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := handlers.New(
		newMemUserRepo(),
		service.NewTaskService(newMemTaskRepo()),
		auth.NewTokens("test-secret"),
		false,
	)
	Register(r, h, handlers.NewHealthHandler(okPinger{}), 100, time.Minute)
	return r
}

// send runs one request through the router. cookie is the session cookie
// value, empty for anonymous requests.
func send(t *testing.T, r *gin.Engine, method, path, cookie, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// register creates an account and returns the session cookie value.
func register(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := send(t, r, http.MethodPost, "/register", "",
		`{"email":"`+email+`","password":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			if !c.HttpOnly {
				t.Fatalf("session cookie must be HttpOnly")
			}
			return c.Value
		}
	}
	t.Fatalf("register did not set a session cookie")
	return ""
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestRoutes_Health(t *testing.T) {
	r := newTestRouter()
	w := send(t, r, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestRoutes_TasksRequireAuth(t *testing.T) {
	r := newTestRouter()

	w := send(t, r, http.MethodGet, "/tasks", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list status = %d; want 401", w.Code)
	}

	w = send(t, r, http.MethodGet, "/tasks", "not-a-token", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d; want 401", w.Code)
	}
	var body map[string]string
	decodeBody(t, w, &body)
	if body["error"] != "invalid or expired token" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestRoutes_TaskLifecycle(t *testing.T) {
	r := newTestRouter()
	cookie := register(t, r, "a@b.c")

	// create with defaults
	w := send(t, r, http.MethodPost, "/tasks", cookie, `{"title":"write tests","deadline":"01.01.2020"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created domain.Task
	decodeBody(t, w, &created)
	if created.Priority != "medium" || created.Completed {
		t.Fatalf("create defaults wrong: %+v", created)
	}

	// toggle completed via partial update
	w = send(t, r, http.MethodPut, "/tasks/1", cookie, `{"completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	var updated domain.Task
	decodeBody(t, w, &updated)
	if !updated.Completed || updated.Title != "write tests" || updated.Deadline != "01.01.2020" {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}

	// list reflects the change
	w = send(t, r, http.MethodGet, "/tasks", cookie, "")
	var list []domain.Task
	decodeBody(t, w, &list)
	if len(list) != 1 || !list[0].Completed {
		t.Fatalf("list = %+v; want one completed task", list)
	}

	// delete, then delete again
	w = send(t, r, http.MethodDelete, "/tasks/1", cookie, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = send(t, r, http.MethodDelete, "/tasks/1", cookie, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d; want 404", w.Code)
	}
}

func TestRoutes_EmptyListIsArray(t *testing.T) {
	r := newTestRouter()
	cookie := register(t, r, "a@b.c")

	w := send(t, r, http.MethodGet, "/tasks", cookie, "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty list body = %q; want []", w.Body.String())
	}
}

func TestRoutes_ValidationDetails(t *testing.T) {
	r := newTestRouter()
	cookie := register(t, r, "a@b.c")

	w := send(t, r, http.MethodPost, "/tasks", cookie, `{"priority":"urgent","assignee":"B0b"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	decodeBody(t, w, &body)
	if body.Error != "validation failed" || len(body.Details) != 3 {
		t.Fatalf("body = %+v; want three violations", body)
	}
}

func TestRoutes_ForeignTaskIsInvisible(t *testing.T) {
	r := newTestRouter()
	owner := register(t, r, "owner@b.c")
	other := register(t, r, "other@b.c")

	w := send(t, r, http.MethodPost, "/tasks", owner, `{"title":"private"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	if w := send(t, r, http.MethodPut, "/tasks/1", other, `{"completed":true}`); w.Code != http.StatusNotFound {
		t.Fatalf("foreign update status = %d; want 404", w.Code)
	}
	if w := send(t, r, http.MethodDelete, "/tasks/1", other, ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d; want 404", w.Code)
	}
	if w := send(t, r, http.MethodGet, "/tasks", other, ""); strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("foreign list body = %q; want []", w.Body.String())
	}
}

func TestRoutes_AuthFlows(t *testing.T) {
	r := newTestRouter()

	// duplicate email
	register(t, r, "a@b.c")
	w := send(t, r, http.MethodPost, "/register", "", `{"email":"a@b.c","password":"secret1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d; want 400", w.Code)
	}

	// short password
	w = send(t, r, http.MethodPost, "/register", "", `{"email":"b@b.c","password":"abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password status = %d; want 400", w.Code)
	}

	// wrong password and unknown email answer identically
	w = send(t, r, http.MethodPost, "/login", "", `{"email":"a@b.c","password":"wrong12"}`)
	wrongPass := w.Body.String()
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d; want 401", w.Code)
	}
	w = send(t, r, http.MethodPost, "/login", "", `{"email":"nobody@b.c","password":"secret1"}`)
	if w.Code != http.StatusUnauthorized || w.Body.String() != wrongPass {
		t.Fatalf("unknown email must answer like a wrong password")
	}

	// good login yields a working session
	w = send(t, r, http.MethodPost, "/login", "", `{"email":"a@b.c","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	var cookie string
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			cookie = c.Value
		}
	}
	if cookie == "" {
		t.Fatalf("login did not set a session cookie")
	}

	w = send(t, r, http.MethodGet, "/me", cookie, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me struct {
		Email string `json:"email"`
	}
	decodeBody(t, w, &me)
	if me.Email != "a@b.c" {
		t.Fatalf("me email = %q", me.Email)
	}

	// logout clears the cookie
	w = send(t, r, http.MethodPost, "/logout", cookie, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.MaxAge >= 0 {
			t.Fatalf("logout must expire the session cookie")
		}
	}
}

func TestRoutes_BearerHeaderFallback(t *testing.T) {
	r := newTestRouter()
	cookie := register(t, r, "a@b.c")

	req := httptest.NewRequest(http.MethodGet, "/tasks", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer auth status = %d; want 200", w.Code)
	}
}

func TestRoutes_InvalidTaskID(t *testing.T) {
	r := newTestRouter()
	cookie := register(t, r, "a@b.c")

	w := send(t, r, http.MethodPut, "/tasks/abc", cookie, `{"completed":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestRoutes_UnknownEndpoint(t *testing.T) {
	r := newTestRouter()

	w := send(t, r, http.MethodGet, "/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	var body map[string]string
	decodeBody(t, w, &body)
	if body["error"] != "endpoint not found" || !strings.Contains(body["message"], "GET /nope") {
		t.Fatalf("body = %v", body)
	}
}
