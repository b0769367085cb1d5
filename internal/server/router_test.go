package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/models"
	"github.com/ayush/taskgate/internal/store"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

// call sends body as JSON and decodes the response into out when out is set.
func (c *client) call(method, path, body string, out any) int {
	c.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func newTestServer(t *testing.T, kv store.KV) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(Deps{
		KV:     kv,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	c := newClient(t, newTestServer(t, store.NewMemory()))
	var body map[string]string
	if code := c.call(http.MethodGet, "/health", "", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health %d %v", code, body)
	}
}

func TestTodosRequireLogin(t *testing.T) {
	c := newClient(t, newTestServer(t, store.NewMemory()))
	var body map[string]string
	if code := c.call(http.MethodGet, "/api/todos", "", &body); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if body["redirect"] != auth.LoginRoute {
		t.Fatalf("expected redirect to login, got %v", body)
	}
}

// TestRegisterLoginTodoRoundTrip walks a user through registration, a task,
// logout and a second login that sees the saved list.
func TestRegisterLoginTodoRoundTrip(t *testing.T) {
	kv := store.NewMemory()
	c := newClient(t, newTestServer(t, kv))

	if code := c.call(http.MethodPost, "/api/auth/register",
		`{"email":"a@x.com","username":"alice","password":"password1"}`, nil); code != http.StatusCreated {
		t.Fatalf("register: %d", code)
	}

	var sess models.SessionResponse
	if code := c.call(http.MethodPost, "/api/auth/login",
		`{"identifier":"alice","password":"password1"}`, &sess); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
	if sess.Email != "a@x.com" || sess.Redirect != auth.TodosRoute {
		t.Fatalf("unexpected session %+v", sess)
	}

	var me models.SessionResponse
	if code := c.call(http.MethodGet, "/api/auth/me", "", &me); code != http.StatusOK || me.Username != "alice" {
		t.Fatalf("me: %d %+v", code, me)
	}

	var list models.TodoListResponse
	if code := c.call(http.MethodPost, "/api/todos", `{"text":"buy milk"}`, &list); code != http.StatusCreated {
		t.Fatalf("create: %d", code)
	}
	if len(list.Todos) != 1 || list.DisplayName != "alice" {
		t.Fatalf("unexpected list %+v", list)
	}
	id := list.Todos[0].ID
	c.call(http.MethodPost, fmt.Sprintf("/api/todos/%d/toggle", id), "", &list)

	if code := c.call(http.MethodPost, "/api/auth/logout", "", nil); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if code := c.call(http.MethodGet, "/api/todos", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", code)
	}

	if code := c.call(http.MethodPost, "/api/auth/login",
		`{"identifier":"a@x.com","password":"password1"}`, nil); code != http.StatusOK {
		t.Fatalf("second login: %d", code)
	}
	list = models.TodoListResponse{}
	c.call(http.MethodGet, "/api/todos", "", &list)
	if len(list.Todos) != 1 || list.Todos[0].Text != "buy milk" || !list.Todos[0].Done() {
		t.Fatalf("expected completed task after relogin, got %+v", list.Todos)
	}
	if list.Stats != (models.Stats{Total: 1, Completed: 1, Remaining: 0}) {
		t.Fatalf("unexpected stats %+v", list.Stats)
	}
}

func TestDevicesHaveSeparateSessions(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	laptop, phone := newClient(t, srv), newClient(t, srv)

	laptop.call(http.MethodPost, "/api/auth/register",
		`{"email":"a@x.com","username":"alice","password":"password1"}`, nil)
	laptop.call(http.MethodPost, "/api/auth/login", `{"identifier":"alice","password":"password1"}`, nil)

	if code := phone.call(http.MethodGet, "/api/todos", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected phone to be logged out, got %d", code)
	}
	if code := laptop.call(http.MethodGet, "/api/todos", "", nil); code != http.StatusOK {
		t.Fatalf("expected laptop to be logged in, got %d", code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := New(Deps{
		KV:             store.NewMemory(),
		AllowedOrigins: []string{"http://localhost:5173"},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
