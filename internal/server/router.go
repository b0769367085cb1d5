// Package server assembles the HTTP API from the auth and todo handlers.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/middleware"
	"github.com/ayush/taskgate/internal/store"
	"github.com/ayush/taskgate/internal/todo"
)

// Deps are the collaborators the router needs.
type Deps struct {
	KV             store.KV
	Passwords      auth.PasswordScheme
	AllowedOrigins []string
	Logger         *slog.Logger
	// RequestLog turns on chi's request logger.
	RequestLog bool
}

// New builds the chi router for the whole API.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions := auth.NewSessionStore(d.KV)
	authSvc := auth.NewService(d.KV, sessions, d.Passwords, logger)
	todoSvc := todo.NewService(d.KV, sessions, logger)

	authHandler := auth.NewHandler(authSvc, todoSvc)
	todoHandler := todo.NewHandler(todoSvc)

	r := chi.NewRouter()
	if d.RequestLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/validate/register", authHandler.ValidateRegister)
		r.Post("/validate/login", authHandler.ValidateLogin)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(middleware.RequireAuth(authSvc)).Get("/me", authHandler.Me)
	})

	// Todo routes (protected)
	r.Route("/api/todos", func(r chi.Router) {
		r.Use(middleware.RequireAuth(authSvc))
		todoHandler.RegisterRoutes(r)
	})

	return r
}
