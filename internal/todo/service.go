package todo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ayush/taskgate/internal/auth"
)

// Service opens views for concurrent callers. Operations on the same email
// are serialized within the process so a load-modify-save never interleaves
// with another; separate processes sharing a backend are last-writer-wins.
type Service struct {
	kv       Storage
	sessions SessionEnder
	now      func() time.Time
	log      *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(kv Storage, sessions SessionEnder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		kv:       kv,
		sessions: sessions,
		now:      time.Now,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SetClock replaces the time source for new task ids.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) lockFor(email string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[email]
	if !ok {
		l = &sync.Mutex{}
		s.locks[email] = l
	}
	return l
}

// Open mounts a fresh view for sess.
func (s *Service) Open(ctx context.Context, sess *auth.Session) (*View, error) {
	v := NewView(s.kv, s.sessions, WithClock(s.now), WithLogger(s.log))
	if err := v.Mount(ctx, sess); err != nil {
		return nil, err
	}
	return v, nil
}

// Do mounts a view for sess and runs fn while holding the user's lock. The
// view is returned even when fn fails so callers can render its state.
func (s *Service) Do(ctx context.Context, sess *auth.Session, fn func(*View) error) (*View, error) {
	if sess == nil || sess.Email == "" {
		return nil, ErrNoSession
	}
	l := s.lockFor(sess.Email)
	l.Lock()
	defer l.Unlock()

	v, err := s.Open(ctx, sess)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return v, nil
	}
	return v, fn(v)
}

// Finish runs the view's logout for sess: final save, then markers cleared.
func (s *Service) Finish(ctx context.Context, sess *auth.Session) error {
	_, err := s.Do(ctx, sess, func(v *View) error {
		return v.Logout(ctx)
	})
	return err
}
