package identity

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/config"
	"github.com/intern-assistant/platform/internal/shared/errors"
	"github.com/intern-assistant/platform/internal/shared/metrics"
)

// Handler provides HTTP handlers for authentication
type Handler struct {
	repo *Repository
	cfg  config.AuthConfig
}

// NewHandler creates a new identity handler
func NewHandler(repo *Repository, cfg config.AuthConfig) *Handler {
	return &Handler{repo: repo, cfg: cfg}
}

// Routes registers the auth routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	return r
}

// Login exchanges username+password for a bearer token. Bad
// credentials are a 400, not a 401, so clients can distinguish a
// rejected login form from an expired session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	user, err := h.repo.FindByUsername(r.Context(), req.Username)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		metrics.RecordLogin(false)
		writeError(w, errors.BadRequest("invalid username or password"))
		return
	}

	token, err := auth.IssueToken(h.cfg, user.Username, user.Role)
	if err != nil {
		writeError(w, errors.Internal(err))
		return
	}

	metrics.RecordLogin(true)
	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
