package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/errors"
	"github.com/intern-assistant/platform/internal/shared/metrics"
	"github.com/intern-assistant/platform/internal/visit"
)

// Handler provides HTTP handlers for daily reports
type Handler struct {
	agg    *visit.Aggregator
	engine Engine
}

// NewHandler creates a new report handler. A nil engine disables PDF
// rendering; the routes stay mounted and report the engine as missing.
func NewHandler(agg *visit.Aggregator, engine Engine) *Handler {
	return &Handler{agg: agg, engine: engine}
}

// Routes registers the report routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/daily", h.Daily)
	r.Get("/daily_pdf", h.DailyPDF)
	return r
}

// Daily returns the structured daily aggregate.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())

	win, err := visit.DayWindow(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, err)
		return
	}

	department := queryDepartment(r)
	summary, err := h.agg.DailySummary(r.Context(), caller, win, department, r.URL.Query().Get("author"))
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordReportGenerated("json")
	writeJSON(w, http.StatusOK, summary)
}

// DailyPDF renders the printable day summary. Interns always get their
// own report: the author filter is forced to their display name no
// matter what was supplied.
func (h *Handler) DailyPDF(w http.ResponseWriter, r *http.Request) {
	h.renderPDF(w, r, r.URL.Query().Get("author"))
}

// RollupPDF is the /ai/rollup.pdf alias: the same document without an
// author filter (interns are still forced to their own).
func (h *Handler) RollupPDF(w http.ResponseWriter, r *http.Request) {
	h.renderPDF(w, r, "")
}

func (h *Handler) renderPDF(w http.ResponseWriter, r *http.Request, author string) {
	caller := auth.GetIdentity(r.Context())

	if h.engine == nil {
		writeError(w, errors.Unavailable("DOCUMENT_ENGINE_UNAVAILABLE",
			"PDF engine is disabled: set PDF_ENABLED=true and restart"))
		return
	}

	win, err := visit.DayWindow(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, err)
		return
	}
	department := queryDepartment(r)

	if caller.IsIntern() {
		author = caller.DisplayName
	}

	summary, err := h.agg.DailySummary(r.Context(), caller, win, department, author)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.agg.WindowEntries(r.Context(), caller, win, department, author)
	if err != nil {
		writeError(w, err)
		return
	}

	doc := Build(Title(win.Day(), department, author), summary.Lines, summary.ByAuthorDetail, entries)

	pdf, err := h.engine.Render(doc)
	if err != nil {
		writeError(w, errors.Wrap(err, "document rendering failed"))
		return
	}

	metrics.RecordReportGenerated("pdf")

	filename := fmt.Sprintf("gunsonu_%s_%s", department, win.Day())
	if author != "" {
		filename += "_" + strings.ReplaceAll(author, " ", "_")
	}
	filename += ".pdf"

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func queryDepartment(r *http.Request) string {
	department := r.URL.Query().Get("department")
	if department == "" {
		return "ALL"
	}
	return department
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
