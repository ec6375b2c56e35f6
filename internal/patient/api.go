package patient

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/errors"
	"github.com/intern-assistant/platform/internal/shared/metrics"
	"github.com/intern-assistant/platform/internal/visit"
)

// Handler provides HTTP handlers for the patient module
type Handler struct {
	repo    *Repository
	deriver *Deriver
	agg     *visit.Aggregator
}

// NewHandler creates a new patient handler
func NewHandler(repo *Repository, deriver *Deriver, agg *visit.Aggregator) *Handler {
	return &Handler{repo: repo, deriver: deriver, agg: agg}
}

// Routes registers the patient routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Post("/derive", h.Derive)
	r.Get("/list", h.List)
	r.Get("/{patientID}/visits", h.Visits)

	return r
}

// Derive turns a raw national ID into the pseudonymous patient
// identifier. The raw value is never persisted.
func (h *Handler) Derive(w http.ResponseWriter, r *http.Request) {
	var req DeriveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	patientID, err := h.deriver.Derive(req.TC)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordDerivation()
	writeJSON(w, http.StatusOK, DeriveResponse{PatientID: patientID})
}

// Create is an idempotent create-or-fetch keyed by patient identifier.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if req.PatientID == "" {
		writeError(w, errors.Validation("patient_id is required", map[string]string{"patient_id": "must not be empty"}))
		return
	}

	p, err := h.repo.CreateOrGet(r.Context(), req.PatientID, req.Label, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Out{PatientID: p.PatientID, Label: p.Label})
}

// List returns the patients seen in the selected day and department,
// role-scoped, newest activity first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())

	win, err := visit.DayWindow(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, err)
		return
	}

	department := r.URL.Query().Get("department")
	if department == "" {
		department = "ALL"
	}

	items, err := h.agg.PatientsSeen(r.Context(), caller, win, department)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Visits returns one patient's visits in the selected day, independent
// of department. An unknown patient yields an empty list, matching the
// read-side contract rather than the create path's 404.
func (h *Handler) Visits(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())
	patientID := chi.URLParam(r, "patientID")

	win, err := visit.DayWindow(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.agg.PatientVisits(r.Context(), caller, patientID, win)
	if err != nil {
		writeError(w, err)
		return
	}

	label, err := h.repo.Label(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"patient_id": patientID,
		"label":      label,
		"visits":     entries,
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
