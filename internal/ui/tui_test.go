package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/models"
	"github.com/ayush/taskgate/internal/store"
	"github.com/ayush/taskgate/internal/todo"
)

func newTestModel(t *testing.T) (*Model, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	return newModelOver(kv), kv
}

func newModelOver(kv auth.Storage) *Model {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewSessionStore(kv)
	authSvc := auth.NewService(kv, sessions, auth.PlainPasswords{}, log)
	todoSvc := todo.NewService(kv, sessions, log)
	return NewModel(context.Background(), authSvc, todoSvc, "")
}

func typeText(m *Model, s string) {
	for _, r := range s {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(m *Model, k tea.KeyType) {
	m.Update(tea.KeyMsg{Type: k})
}

func key(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func login(t *testing.T, m *Model, identifier, password string) {
	t.Helper()
	typeText(m, identifier)
	press(m, tea.KeyTab)
	typeText(m, password)
	press(m, tea.KeyEnter)
	if m.screen != screenTodos {
		t.Fatalf("expected todo screen after login, got:\n%s", m.View())
	}
}

func TestRegisterThenLoginFlow(t *testing.T) {
	m, kv := newTestModel(t)
	if !strings.Contains(m.View(), "Please Sign In") {
		t.Fatalf("expected login screen, got:\n%s", m.View())
	}

	press(m, tea.KeyEsc)
	if m.screen != screenRegister {
		t.Fatal("expected register screen")
	}
	typeText(m, "a@x.com")
	press(m, tea.KeyTab)
	typeText(m, "alice")
	press(m, tea.KeyTab)
	typeText(m, "password1")
	press(m, tea.KeyEnter)

	if m.screen != screenLogin || !strings.Contains(m.View(), "Registered") {
		t.Fatalf("expected login screen with notice, got:\n%s", m.View())
	}
	if _, ok, _ := kv.Get(context.Background(), auth.UsersKey); !ok {
		t.Fatal("expected user persisted")
	}

	login(t, m, "alice", "password1")
	if !strings.Contains(m.View(), "To Do List - alice") {
		t.Fatalf("unexpected todo heading:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "No todos yet. Add one above!") {
		t.Fatalf("expected empty list message:\n%s", m.View())
	}
}

func TestRegisterShowsInlineErrors(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyEsc)
	typeText(m, "not-an-email")

	if !strings.Contains(m.View(), auth.MsgInvalidEmail) {
		t.Fatalf("expected inline email error:\n%s", m.View())
	}
	press(m, tea.KeyEnter)
	if m.formErr != auth.ErrMissingFields.Error() {
		t.Fatalf("expected missing fields error, got %q", m.formErr)
	}
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	m, _ := newTestModel(t)
	typeText(m, "ghost")
	press(m, tea.KeyTab)
	typeText(m, "password1")
	press(m, tea.KeyEnter)

	if m.screen != screenLogin {
		t.Fatal("expected to stay on login screen")
	}
	if !strings.Contains(m.View(), auth.ErrInvalidCredentials.Error()) {
		t.Fatalf("expected invalid credentials message:\n%s", m.View())
	}
	if strings.Contains(m.View(), "password1") {
		t.Fatal("password should be masked")
	}
}

func TestTodoKeys(t *testing.T) {
	m, kv := newTestModel(t)
	ctx := context.Background()
	_, _ = m.auth.Register(ctx, models.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "password1"})
	login(t, m, "a@x.com", "password1")

	key(m, "a")
	typeText(m, "buy milk")
	press(m, tea.KeyEnter)
	key(m, "a")
	typeText(m, "bread")
	press(m, tea.KeyEnter)
	if got := len(m.view.Todos()); got != 2 {
		t.Fatalf("expected 2 todos, got %d", got)
	}

	key(m, "x")
	if !m.view.Todos()[0].Done() {
		t.Fatal("expected first todo completed")
	}
	if !strings.Contains(m.View(), "Total: 2 | Completed: 1 | Remaining: 1") {
		t.Fatalf("unexpected stats line:\n%s", m.View())
	}

	key(m, "j")
	key(m, "d")
	if todos := m.view.Todos(); len(todos) != 1 || todos[0].Text != "buy milk" {
		t.Fatalf("expected bread deleted, got %+v", todos)
	}

	key(m, "a")
	typeText(m, "ignored")
	press(m, tea.KeyEsc)
	if len(m.view.Todos()) != 1 {
		t.Fatal("esc should cancel the new todo")
	}

	key(m, "D")
	if len(m.view.Todos()) != 0 {
		t.Fatalf("expected completed todos removed, got %+v", m.view.Todos())
	}

	key(m, "L")
	if m.screen != screenLogin || m.view != nil {
		t.Fatal("expected logout to return to login")
	}
	if _, ok, _ := kv.Get(ctx, auth.EmailMarkerKey); ok {
		t.Fatal("expected markers cleared on logout")
	}
}

func TestInitResumesSession(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()
	_, _ = m.auth.Register(ctx, models.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "password1"})
	if _, err := m.auth.Login(ctx, "", models.LoginRequest{Identifier: "alice", Password: "password1"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	m.Init()
	if m.screen != screenTodos {
		t.Fatalf("expected todo screen from stored markers, got:\n%s", m.View())
	}
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func addTodo(m *Model, text string) {
	key(m, "a")
	typeText(m, text)
	press(m, tea.KeyEnter)
}

func TestCursorStaysInRangeAfterClearingCompleted(t *testing.T) {
	m, _ := newTestModel(t)
	_, _ = m.auth.Register(context.Background(), models.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "password1"})
	login(t, m, "alice", "password1")

	addTodo(m, "one")
	addTodo(m, "two")
	key(m, "x")
	key(m, "j")
	key(m, "x")
	key(m, "D")
	if len(m.view.Todos()) != 0 || m.cursor != 0 {
		t.Fatalf("expected empty list with cursor 0, got %d todos cursor %d", len(m.view.Todos()), m.cursor)
	}

	addTodo(m, "three")
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if todos := m.view.Todos(); len(todos) != 1 || !todos[0].Done() {
		t.Fatalf("expected the new todo toggled, got %+v", todos)
	}
	key(m, "d")
	if len(m.view.Todos()) != 0 {
		t.Fatalf("expected the new todo deleted, got %+v", m.view.Todos())
	}
}

// removeFailingKV refuses Remove once fail is set, so session markers cannot
// be cleared.
type removeFailingKV struct {
	*store.Memory
	fail bool
}

func (k *removeFailingKV) Remove(ctx context.Context, key string) error {
	if k.fail {
		return errors.New("backend down")
	}
	return k.Memory.Remove(ctx, key)
}

func TestLogoutFailureKeepsTodoScreen(t *testing.T) {
	kv := &removeFailingKV{Memory: store.NewMemory()}
	m := newModelOver(kv)
	_, _ = m.auth.Register(context.Background(), models.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "password1"})
	login(t, m, "alice", "password1")

	kv.fail = true
	key(m, "L")
	if m.screen != screenTodos || m.view == nil {
		t.Fatal("expected to stay on the todo screen while still logged in")
	}
	if m.view.State() != todo.StateLoaded {
		t.Fatalf("expected view still loaded, got %s", m.view.State())
	}
	if !strings.Contains(m.View(), "backend down") {
		t.Fatalf("expected the logout error on screen:\n%s", m.View())
	}

	kv.fail = false
	key(m, "L")
	if m.screen != screenLogin {
		t.Fatal("expected retry to log out")
	}
}
