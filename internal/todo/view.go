package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/models"
)

// KeyPrefix starts the storage key of every per-user task collection.
const KeyPrefix = "todos_"

// Key returns the storage key of the task collection owned by email.
func Key(email string) string { return KeyPrefix + email }

var (
	// ErrNoSession means the view was mounted without a logged-in user; the
	// caller should send the user to the login screen.
	ErrNoSession = errors.New("no active session")
	// ErrClosed is returned for operations after logout or redirect.
	ErrClosed = errors.New("todo view is closed")
)

// Storage is the key-value capability the view persists into.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// SessionEnder clears the session markers on logout.
type SessionEnder interface {
	End(ctx context.Context, scope string) error
}

// State is the lifecycle position of a View.
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateNavigatedAway
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateNavigatedAway:
		return "navigated-away"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// View is one user's open task list. Every mutation rewrites the whole
// collection to storage.
type View struct {
	kv       Storage
	sessions SessionEnder
	now      func() time.Time
	log      *slog.Logger

	state State
	sess  *auth.Session
	todos List
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithClock sets the time source used for new task ids.
func WithClock(now func() time.Time) ViewOption {
	return func(v *View) { v.now = now }
}

// WithLogger sets the logger for storage recovery messages.
func WithLogger(log *slog.Logger) ViewOption {
	return func(v *View) { v.log = log }
}

func NewView(kv Storage, sessions SessionEnder, opts ...ViewOption) *View {
	v := &View{kv: kv, sessions: sessions, now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount loads the list for sess. Without a session the view moves straight
// to StateNavigatedAway and returns ErrNoSession.
func (v *View) Mount(ctx context.Context, sess *auth.Session) error {
	if v.state != StateUninitialized {
		return fmt.Errorf("mount: view is %s", v.state)
	}
	if sess == nil || sess.Email == "" {
		v.state = StateNavigatedAway
		return ErrNoSession
	}

	todos, err := v.load(ctx, sess.Email)
	if err != nil {
		return err
	}
	v.sess = sess
	v.todos = todos
	v.state = StateLoaded
	return nil
}

func (v *View) load(ctx context.Context, email string) (List, error) {
	key := Key(email)
	raw, ok, err := v.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read todos: %w", err)
	}
	if !ok || raw == "" {
		return List{}, nil
	}
	var todos List
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		v.log.Warn("error parsing todos from storage", "key", key, "error", err)
		return List{}, nil
	}
	if todos == nil {
		todos = List{}
	}
	return todos, nil
}

func (v *View) persist(ctx context.Context) error {
	raw, err := json.Marshal(v.todos)
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}
	if err := v.kv.Set(ctx, Key(v.sess.Email), string(raw)); err != nil {
		return fmt.Errorf("save todos: %w", err)
	}
	v.log.Debug("saved todos", "count", len(v.todos), "user", v.sess.Email)
	return nil
}

func (v *View) apply(ctx context.Context, next List) error {
	if v.state != StateLoaded {
		return ErrClosed
	}
	v.todos = next
	return v.persist(ctx)
}

// Add appends a task. Blank text is ignored and nothing is written.
func (v *View) Add(ctx context.Context, text string) (models.Task, bool, error) {
	if v.state != StateLoaded {
		return models.Task{}, false, ErrClosed
	}
	next, added := v.todos.Add(text, v.now())
	if !added {
		return models.Task{}, false, nil
	}
	if err := v.apply(ctx, next); err != nil {
		return models.Task{}, false, err
	}
	return next[len(next)-1], true, nil
}

// Toggle flips the completed flag of task id.
func (v *View) Toggle(ctx context.Context, id int64) error {
	if v.state != StateLoaded {
		return ErrClosed
	}
	return v.apply(ctx, v.todos.Toggle(id))
}

// Remove deletes task id.
func (v *View) Remove(ctx context.Context, id int64) error {
	if v.state != StateLoaded {
		return ErrClosed
	}
	return v.apply(ctx, v.todos.Remove(id))
}

// RemoveCompleted deletes every completed task.
func (v *View) RemoveCompleted(ctx context.Context) error {
	if v.state != StateLoaded {
		return ErrClosed
	}
	return v.apply(ctx, v.todos.RemoveCompleted())
}

// Logout saves the list one last time, clears the session markers and closes
// the view. A failed final save is logged and does not keep the user logged
// in; it is still returned.
func (v *View) Logout(ctx context.Context) error {
	if v.state != StateLoaded {
		return ErrClosed
	}
	saveErr := v.persist(ctx)
	if saveErr != nil {
		v.log.Error("error saving todos during logout", "user", v.sess.Email, "error", saveErr)
	}
	if err := v.sessions.End(ctx, v.sess.Scope); err != nil {
		return errors.Join(saveErr, err)
	}
	v.state = StateNavigatedAway
	return saveErr
}

// State reports where the view is in its lifecycle.
func (v *View) State() State { return v.state }

// Todos returns a copy of the current list.
func (v *View) Todos() List {
	out := make(List, len(v.todos))
	copy(out, v.todos)
	return out
}

// Stats summarizes the current list.
func (v *View) Stats() models.Stats { return v.todos.Stats() }

// Session returns the session the view was mounted with.
func (v *View) Session() *auth.Session { return v.sess }

// DisplayName is the heading shown above the list.
func (v *View) DisplayName() string {
	if v.sess == nil {
		return ""
	}
	return v.sess.DisplayName()
}
