package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayush/taskgate/internal/models"
)

// Service implements registration and login over the shared user collection.
type Service struct {
	kv       Storage
	sessions *SessionStore
	scheme   PasswordScheme
	log      *slog.Logger

	// mu serializes read-modify-write of the user collection within this
	// process. Writers in other processes still race (last writer wins).
	mu sync.Mutex
}

func NewService(kv Storage, sessions *SessionStore, scheme PasswordScheme, log *slog.Logger) *Service {
	if scheme == nil {
		scheme = PlainPasswords{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{kv: kv, sessions: sessions, scheme: scheme, log: log}
}

// Sessions exposes the marker store the service writes to.
func (s *Service) Sessions() *SessionStore { return s.sessions }

// Register appends a new user after validation and uniqueness checks.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if fields := CheckRegistration(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadUsers(ctx, s.kv, s.log)
	if err != nil {
		return nil, err
	}
	if findByEmail(users, req.Email) != nil {
		return nil, ErrEmailTaken
	}
	if findByUsername(users, req.Username) != nil {
		return nil, ErrUsernameTaken
	}

	stored, err := s.scheme.Encode(req.Password)
	if err != nil {
		return nil, fmt.Errorf("encode password: %w", err)
	}
	user := models.User{Email: req.Email, Username: req.Username, Password: stored}
	users = append(users, user)
	if err := saveUsers(ctx, s.kv, users); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "email", user.Email, "username", user.Username)
	return &user, nil
}

// Login checks the identifier (email or username) and password against the
// user collection and, on success, writes the session markers under scope.
func (s *Service) Login(ctx context.Context, scope string, req models.LoginRequest) (*Session, error) {
	if req.Identifier == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	users, err := loadUsers(ctx, s.kv, s.log)
	if err != nil {
		s.log.Error("login error", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	var match *models.User
	for i := range users {
		u := &users[i]
		if (u.Email == req.Identifier || u.Username == req.Identifier) && s.scheme.Matches(u.Password, req.Password) {
			match = u
			break
		}
	}
	if match == nil {
		return nil, ErrInvalidCredentials
	}

	sess := Session{Email: match.Email, Username: match.Username, Scope: scope}
	if err := s.sessions.Start(ctx, sess); err != nil {
		s.log.Error("login error", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	return &sess, nil
}

// Current returns the session stored under scope, or nil.
func (s *Service) Current(ctx context.Context, scope string) (*Session, error) {
	return s.sessions.Current(ctx, scope)
}
