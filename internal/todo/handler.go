package todo

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/models"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler holds todo HTTP handlers. Every route expects middleware.RequireAuth to
// have put the session in the request context.
type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, log: svc.log}
}

// RegisterRoutes adds the todo endpoints to r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/completed", h.DeleteCompleted)
	r.Post("/{id}/toggle", h.Toggle)
	r.Delete("/{id}", h.Delete)
}

// run applies op to the caller's view and writes the resulting list. op
// returns the status code to answer with on success.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, op func(*View) (int, error)) {
	status := http.StatusOK
	v, err := h.svc.Do(r.Context(), auth.SessionFrom(r.Context()), func(v *View) error {
		if op == nil {
			return nil
		}
		code, err := op(v)
		status = code
		return err
	})
	if errors.Is(err, ErrNoSession) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "not authenticated",
			"redirect": auth.LoginRoute,
		})
		return
	}
	if err != nil {
		h.log.Error("todo request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save todos"})
		return
	}
	writeJSON(w, status, response(v))
}

func response(v *View) models.TodoListResponse {
	todos := v.Todos()
	return models.TodoListResponse{
		DisplayName: v.DisplayName(),
		Todos:       []models.Task(todos),
		Stats:       todos.Stats(),
	}
}

// List returns the current user's tasks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, nil)
}

// Create adds a task. Blank text leaves the list as it was.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.run(w, r, func(v *View) (int, error) {
		_, added, err := v.Add(r.Context(), req.Text)
		if added {
			return http.StatusCreated, err
		}
		return http.StatusOK, err
	})
}

// Toggle flips the completed flag of one task.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	h.run(w, r, func(v *View) (int, error) {
		return http.StatusOK, v.Toggle(r.Context(), id)
	})
}

// Delete removes one task.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	h.run(w, r, func(v *View) (int, error) {
		return http.StatusOK, v.Remove(r.Context(), id)
	})
}

// DeleteCompleted removes every completed task.
func (h *Handler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(v *View) (int, error) {
		return http.StatusOK, v.RemoveCompleted(r.Context())
	})
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}
