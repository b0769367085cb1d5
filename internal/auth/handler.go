package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ayush/taskgate/internal/models"
)

// Client-side routes the API points at after each step.
const (
	LoginRoute = "/login"
	TodosRoute = "/todos"
)

// LogoutSaveWarning accompanies a logout whose final save of the list failed.
const LogoutSaveWarning = "logged out, but the latest todos could not be saved"

// deviceCookieMaxAge keeps the device id for a year.
const deviceCookieMaxAge = 365 * 24 * 60 * 60

// Finisher runs the todo view's final save before the markers are cleared.
type Finisher interface {
	Finish(ctx context.Context, sess *Session) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc      *Service
	finisher Finisher
}

func NewHandler(svc *Service, finisher Finisher) *Handler {
	return &Handler{svc: svc, finisher: finisher}
}

type errorBody struct {
	Error    string      `json:"error"`
	Fields   FieldErrors `json:"fields,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message(), Fields: verr.Fields})
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrMissingCredentials):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, ErrLoginFailed):
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: ErrLoginFailed.Error()})
	default:
		h.svc.log.Error("auth request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// Register creates a new user and points the client at the login screen.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	if _, err := h.svc.Register(r.Context(), req); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"redirect": LoginRoute})
}

// ValidateRegister returns the inline field errors for a partly filled form.
func (h *Handler) ValidateRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]FieldErrors{"fields": CheckRegistration(req)})
}

// ValidateLogin returns the inline hints for a partly filled login form.
func (h *Handler) ValidateLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]FieldErrors{"fields": CheckLogin(req)})
}

// Login authenticates a user and writes the session markers for the device.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	// Every login gets a fresh device id; a client-supplied one is never
	// trusted as a marker scope.
	deviceID := uuid.New().String()
	sess, err := h.svc.Login(r.Context(), DeviceScope(deviceID), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if cookie, err := r.Cookie(DeviceCookie); err == nil && cookie.Value != "" {
		if err := h.svc.Sessions().End(r.Context(), DeviceScope(cookie.Value)); err != nil {
			h.svc.log.Warn("clearing previous device session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookie,
		Value:    deviceID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   deviceCookieMaxAge,
	})

	writeJSON(w, http.StatusOK, models.SessionResponse{
		Email:       sess.Email,
		Username:    sess.Username,
		DisplayName: sess.DisplayName(),
		Redirect:    TodosRoute,
	})
}

// Logout saves the device's list a final time and clears its markers.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(DeviceCookie)
	if err == nil && cookie.Value != "" {
		scope := DeviceScope(cookie.Value)
		sess, err := h.svc.Current(r.Context(), scope)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if sess != nil && h.finisher != nil {
			if err := h.finisher.Finish(r.Context(), sess); err != nil {
				// A failed final save still clears the markers; only a session
				// that survived counts as a failed logout.
				still, cerr := h.svc.Current(r.Context(), scope)
				if cerr != nil || still != nil {
					h.writeError(w, err)
					return
				}
				h.svc.log.Error("final save during logout", "user", sess.Email, "error", err)
				writeJSON(w, http.StatusOK, map[string]string{
					"message":  "logged out",
					"redirect": LoginRoute,
					"warning":  LogoutSaveWarning,
				})
				return
			}
		} else if err := h.svc.Sessions().End(r.Context(), scope); err != nil {
			h.writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out", "redirect": LoginRoute})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated", Redirect: LoginRoute})
		return
	}
	writeJSON(w, http.StatusOK, models.SessionResponse{
		Email:       sess.Email,
		Username:    sess.Username,
		DisplayName: sess.DisplayName(),
	})
}
