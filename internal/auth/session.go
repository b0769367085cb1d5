package auth

import (
	"context"
	"fmt"
)

// Storage keys for the user collection and the session markers.
const (
	UsersKey          = "users"
	EmailMarkerKey    = "loggedInUser"
	UsernameMarkerKey = "loggedInUsername"

	DeviceCookie = "device_id"
)

// Storage is the key-value capability auth persists into.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Session identifies the logged-in user. It is handed explicitly to the todo
// view instead of being read from storage there.
type Session struct {
	Email    string
	Username string
	// Scope is the marker namespace the session was started under.
	Scope    string
}

// DisplayName is the username, or the email when no username was recorded.
func (s Session) DisplayName() string {
	if s.Username != "" {
		return s.Username
	}
	return s.Email
}

// DeviceScope namespaces the marker keys of one client. The empty scope uses
// the bare keys, which is what a single-user client wants.
func DeviceScope(deviceID string) string {
	return "device:" + deviceID + ":"
}

// SessionStore reads and writes the two session markers.
type SessionStore struct {
	kv Storage
}

func NewSessionStore(kv Storage) *SessionStore {
	return &SessionStore{kv: kv}
}

// Start writes both markers for the user under sess.Scope.
func (s *SessionStore) Start(ctx context.Context, sess Session) error {
	if err := s.kv.Set(ctx, sess.Scope+EmailMarkerKey, sess.Email); err != nil {
		return fmt.Errorf("write session marker: %w", err)
	}
	if err := s.kv.Set(ctx, sess.Scope+UsernameMarkerKey, sess.Username); err != nil {
		return fmt.Errorf("write session marker: %w", err)
	}
	return nil
}

// Current returns the active session, or nil when the email marker is absent.
func (s *SessionStore) Current(ctx context.Context, scope string) (*Session, error) {
	email, ok, err := s.kv.Get(ctx, scope+EmailMarkerKey)
	if err != nil {
		return nil, fmt.Errorf("read session marker: %w", err)
	}
	if !ok || email == "" {
		return nil, nil
	}
	username, _, err := s.kv.Get(ctx, scope+UsernameMarkerKey)
	if err != nil {
		return nil, fmt.Errorf("read session marker: %w", err)
	}
	return &Session{Email: email, Username: username, Scope: scope}, nil
}

// End removes both markers.
func (s *SessionStore) End(ctx context.Context, scope string) error {
	if err := s.kv.Remove(ctx, scope+EmailMarkerKey); err != nil {
		return fmt.Errorf("clear session marker: %w", err)
	}
	if err := s.kv.Remove(ctx, scope+UsernameMarkerKey); err != nil {
		return fmt.Errorf("clear session marker: %w", err)
	}
	return nil
}
