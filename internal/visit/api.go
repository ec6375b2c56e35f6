package visit

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/errors"
	"github.com/intern-assistant/platform/internal/shared/metrics"
)

// PatientStore is the slice of the patient module this package needs:
// visit creation fails for unknown patients.
type PatientStore interface {
	Exists(ctx context.Context, patientID string) (bool, error)
}

// Handler provides HTTP handlers for the visit module
type Handler struct {
	repo     *Repository
	agg      *Aggregator
	patients PatientStore
}

// NewHandler creates a new visit handler
func NewHandler(repo *Repository, agg *Aggregator, patients PatientStore) *Handler {
	return &Handler{repo: repo, agg: agg, patients: patients}
}

// Routes registers the visit routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/by_department", h.ByDepartment)

	r.Route("/{visitID}", func(r chi.Router) {
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

// Create records a new visit for an existing patient. The timestamp is
// the fixed-offset local clock at creation time.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if req.Text == "" {
		writeError(w, errors.Validation("text is required", map[string]string{"text": "must not be empty"}))
		return
	}

	exists, err := h.patients.Exists(r.Context(), req.PatientID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !exists {
		writeError(w, errors.NotFound("patient", req.PatientID))
		return
	}

	department := strings.ToUpper(strings.TrimSpace(req.Department))
	if department == "" {
		department = DefaultDepartment
	}

	v := &Visit{
		PatientID:   req.PatientID,
		AuthorID:    caller.ID,
		Text:        req.Text,
		Department:  department,
		OpsDrug:     req.OpsDrug,
		OpsTest:     req.OpsTest,
		OpsConsult:  req.OpsConsult,
		OpsCritical: req.OpsCritical,
		TS:          LocalNow(),
	}
	if err := h.repo.Create(r.Context(), v); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordVisitCreated(department)
	writeJSON(w, http.StatusOK, v)
}

// Update applies a partial patch of text and flags. Only the author
// may edit; every successful edit stamps edited_at.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())

	id, err := parseVisitID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	v, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if v.AuthorID != caller.ID {
		writeError(w, errors.Forbidden("you can only edit your own visits"))
		return
	}

	if patch.Text != nil {
		v.Text = *patch.Text
	}
	if patch.OpsDrug != nil {
		v.OpsDrug = *patch.OpsDrug
	}
	if patch.OpsTest != nil {
		v.OpsTest = *patch.OpsTest
	}
	if patch.OpsConsult != nil {
		v.OpsConsult = *patch.OpsConsult
	}
	if patch.OpsCritical != nil {
		v.OpsCritical = *patch.OpsCritical
	}
	now := LocalNow()
	v.EditedAt = &now

	if err := h.repo.Update(r.Context(), v); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Delete removes a visit. Only the author may delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())

	id, err := parseVisitID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	v, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if v.AuthorID != caller.ID {
		writeError(w, errors.Forbidden("you can only delete your own visits"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ByDepartment streams the department feed: the window's visits newest
// first, grouped per author, capped at the caller's limit.
func (h *Handler) ByDepartment(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())

	win, err := DayWindow(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, err)
		return
	}

	department := r.URL.Query().Get("department")
	if department == "" {
		department = "ALL"
	}

	limit := DefaultFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, errors.Validation("invalid limit", map[string]string{"limit": raw}))
			return
		}
		limit = parsed
	}

	feed, err := h.agg.DepartmentFeed(r.Context(), caller, win, department, r.URL.Query().Get("author"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"by_author": feed})
}

func parseVisitID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "visitID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.BadRequest("invalid visit ID")
	}
	return uint(id), nil
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
