// Package ui provides the terminal client: login, register and todo screens
// running the auth and todo services in-process.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/models"
	"github.com/ayush/taskgate/internal/todo"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenTodos
)

// field is a single-line text input.
type field struct {
	label  string
	name   string
	value  string
	secret bool
}

func (f field) render(focused bool) string {
	cursor := " "
	if focused {
		cursor = ">"
	}
	shown := f.value
	if f.secret {
		shown = strings.Repeat("*", len([]rune(f.value)))
	}
	return fmt.Sprintf("%s %-18s %s", cursor, f.label+":", shown)
}

// Model is the bubbletea model for the whole client.
type Model struct {
	ctx   context.Context
	auth  *auth.Service
	todos *todo.Service
	scope string

	screen  screen
	fields  []field
	focus   int
	inline  auth.FieldErrors
	formErr string
	notice  string

	view    *todo.View
	cursor  int
	adding  bool
	newTodo string
}

// NewModel builds the client. scope selects the session marker namespace;
// the empty scope uses the bare keys.
func NewModel(ctx context.Context, authSvc *auth.Service, todoSvc *todo.Service, scope string) *Model {
	m := &Model{ctx: ctx, auth: authSvc, todos: todoSvc, scope: scope}
	m.showLogin()
	return m
}

// Run starts the program on the terminal.
func Run(ctx context.Context, m *Model) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	sess, err := m.auth.Current(m.ctx, m.scope)
	if err != nil {
		m.formErr = err.Error()
		return nil
	}
	if sess != nil {
		m.openTodos(sess)
	}
	return nil
}

func (m *Model) showLogin() {
	m.screen = screenLogin
	m.fields = []field{
		{label: "Email or Username", name: auth.FieldIdentifier},
		{label: "Password", name: auth.FieldPassword, secret: true},
	}
	m.focus = 0
	m.inline = auth.FieldErrors{}
	m.formErr = ""
}

func (m *Model) showRegister() {
	m.screen = screenRegister
	m.fields = []field{
		{label: "Email", name: auth.FieldEmail},
		{label: "Username", name: auth.FieldUsername},
		{label: "Password", name: auth.FieldPassword, secret: true},
	}
	m.focus = 0
	m.inline = auth.FieldErrors{}
	m.formErr = ""
	m.notice = ""
}

func (m *Model) openTodos(sess *auth.Session) {
	v, err := m.todos.Open(m.ctx, sess)
	if err != nil {
		m.showLogin()
		if !errors.Is(err, todo.ErrNoSession) {
			m.formErr = err.Error()
		}
		return
	}
	m.view = v
	m.screen = screenTodos
	m.cursor = 0
	m.adding = false
	m.newTodo = ""
	m.formErr = ""
	m.notice = ""
}

func (m *Model) value(name string) string {
	for _, f := range m.fields {
		if f.name == name {
			return f.value
		}
	}
	return ""
}

func (m *Model) registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    m.value(auth.FieldEmail),
		Username: m.value(auth.FieldUsername),
		Password: m.value(auth.FieldPassword),
	}
}

func (m *Model) loginRequest() models.LoginRequest {
	return models.LoginRequest{
		Identifier: m.value(auth.FieldIdentifier),
		Password:   m.value(auth.FieldPassword),
	}
}

func (m *Model) revalidate() {
	if m.screen == screenRegister {
		m.inline = auth.CheckRegistration(m.registerRequest())
		return
	}
	m.inline = auth.CheckLogin(m.loginRequest())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.screen == screenTodos {
		return m.updateTodos(key)
	}
	return m.updateForm(key)
}

func (m *Model) updateForm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % len(m.fields)
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + len(m.fields) - 1) % len(m.fields)
	case tea.KeyEsc:
		if m.screen == screenLogin {
			m.showRegister()
		} else {
			m.showLogin()
		}
	case tea.KeyEnter:
		m.submit()
	case tea.KeyBackspace:
		f := &m.fields[m.focus]
		if r := []rune(f.value); len(r) > 0 {
			f.value = string(r[:len(r)-1])
		}
		m.revalidate()
	case tea.KeyRunes, tea.KeySpace:
		m.fields[m.focus].value += string(key.Runes)
		m.revalidate()
	}
	return m, nil
}

func (m *Model) submit() {
	m.formErr = ""
	if m.screen == screenRegister {
		_, err := m.auth.Register(m.ctx, m.registerRequest())
		if err != nil {
			m.formErr = formMessage(err)
			return
		}
		m.showLogin()
		m.notice = "Registered. Please sign in."
		return
	}

	sess, err := m.auth.Login(m.ctx, m.scope, m.loginRequest())
	if err != nil {
		m.formErr = formMessage(err)
		return
	}
	m.openTodos(sess)
}

func formMessage(err error) string {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message()
	case errors.Is(err, auth.ErrLoginFailed):
		return auth.ErrLoginFailed.Error()
	}
	return err.Error()
}

func (m *Model) updateTodos(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		switch key.Type {
		case tea.KeyEnter:
			if _, _, err := m.view.Add(m.ctx, m.newTodo); err != nil {
				m.formErr = err.Error()
			}
			m.newTodo = ""
			m.adding = false
			m.clampCursor()
		case tea.KeyEsc:
			m.newTodo = ""
			m.adding = false
		case tea.KeyBackspace:
			if r := []rune(m.newTodo); len(r) > 0 {
				m.newTodo = string(r[:len(r)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			m.newTodo += string(key.Runes)
		}
		return m, nil
	}

	list := m.view.Todos()
	var err error
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case "a", "enter":
		m.adding = true
	case " ", "x":
		if m.cursor < len(list) {
			err = m.view.Toggle(m.ctx, list[m.cursor].ID)
		}
	case "d":
		if m.cursor < len(list) {
			err = m.view.Remove(m.ctx, list[m.cursor].ID)
		}
	case "D":
		err = m.view.RemoveCompleted(m.ctx)
	case "L":
		err = m.view.Logout(m.ctx)
		// The markers are still stored unless the view closed.
		if m.view.State() == todo.StateNavigatedAway {
			m.view = nil
			m.showLogin()
		}
	}
	if err != nil {
		m.formErr = err.Error()
	}
	m.clampCursor()
	return m, nil
}

func (m *Model) clampCursor() {
	if m.view == nil {
		return
	}
	if n := len(m.view.Todos()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) View() string {
	var b strings.Builder
	switch m.screen {
	case screenLogin:
		m.writeForm(&b, "Please Sign In", "enter: login | tab: next field | esc: register | ctrl+c: quit")
	case screenRegister:
		m.writeForm(&b, "Register", "enter: register | tab: next field | esc: back to login | ctrl+c: quit")
	case screenTodos:
		m.writeTodos(&b)
	}
	return b.String()
}

func (m *Model) writeForm(b *strings.Builder, title, help string) {
	writeTitle(b, title)
	if m.notice != "" {
		b.WriteString(m.notice + "\n\n")
	}
	for i, f := range m.fields {
		b.WriteString(f.render(i == m.focus) + "\n")
		if msg := m.inline[f.name]; msg != "" {
			b.WriteString("    " + msg + "\n")
		}
	}
	b.WriteString("\n")
	if m.formErr != "" {
		b.WriteString(m.formErr + "\n\n")
	}
	b.WriteString(help + "\n")
}

func (m *Model) writeTodos(b *strings.Builder) {
	writeTitle(b, "To Do List - "+m.view.DisplayName())

	list := m.view.Todos()
	if len(list) == 0 {
		b.WriteString("  No todos yet. Add one above!\n")
	}
	for i, t := range list {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}
		check := " "
		if t.Done() {
			check = "x"
		}
		b.WriteString(fmt.Sprintf("%s [%s] %s\n", cursor, check, t.Text))
	}

	s := m.view.Stats()
	b.WriteString(fmt.Sprintf("\nTotal: %d | Completed: %d | Remaining: %d\n\n", s.Total, s.Completed, s.Remaining))

	if m.adding {
		b.WriteString("New to do: " + m.newTodo + "\n\n")
	}
	if m.formErr != "" {
		b.WriteString(m.formErr + "\n\n")
	}
	b.WriteString("a: add | space: toggle | d: delete | D: delete completed | L: logout | q: quit\n")
}

func writeTitle(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
