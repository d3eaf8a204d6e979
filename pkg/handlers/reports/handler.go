package reports

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/de-tools/industry-reports/pkg/adapters"
	"github.com/de-tools/industry-reports/pkg/metrics"
	"github.com/de-tools/industry-reports/pkg/models/api"
	"github.com/de-tools/industry-reports/pkg/services/content"
	"github.com/de-tools/industry-reports/pkg/services/registry"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

type Handler struct {
	registry registry.Registry
	reader   content.Reader
	now      func() time.Time
}

func NewHandler(reg registry.Registry, reader content.Reader) *Handler {
	return &Handler{
		registry: reg,
		reader:   reader,
		now:      time.Now,
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.GetAll(r.Context())

	render(w, r, http.StatusOK, "index.html", indexPage{
		page: page{
			Lang:          "en",
			Title:         "Industry Weekly Reports",
			CurrentPeriod: snapshot.CurrentPeriod,
		},
		LastUpdated: snapshot.LastUpdated,
		Groups:      groupByLanguage(snapshot.Reports),
	})
}

func (h *Handler) ViewReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	// Record and period come from one snapshot so a concurrent reload cannot mix them.
	snapshot := h.registry.GetAll(ctx)
	report, ok := snapshot.Find(id)
	if !ok {
		renderError(w, r, http.StatusNotFound)
		return
	}

	body, err := h.reader.Read(ctx, report)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			renderError(w, r, http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("report", id).Msg("failed to load report content")
		renderError(w, r, http.StatusInternalServerError)
		return
	}

	render(w, r, http.StatusOK, "report.html", reportPage{
		page: page{
			Lang:          report.Language,
			Title:         report.Title,
			CurrentPeriod: snapshot.CurrentPeriod,
		},
		Report:  report,
		Content: template.HTML(body),
	})
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.GetAll(r.Context())
	writeJSON(w, r, http.StatusOK, adapters.MapDomainSnapshotToApiSnapshot(snapshot))
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.registry.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, r, http.StatusNotFound, api.Error{Error: "Report not found"})
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapDomainReportToApiReport(report))
}

// Health always answers 200; missing backing files only downgrade the status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot := h.registry.GetAll(ctx)
	missing := h.reader.Check(ctx, snapshot.Reports)
	metrics.MissingReportFiles.Set(float64(len(missing)))

	status := statusHealthy
	if len(missing) > 0 {
		status = statusDegraded
	}

	writeJSON(w, r, http.StatusOK, api.Health{
		Status:       status,
		Timestamp:    h.now(),
		ReportsCount: len(snapshot.Reports),
		MissingFiles: missing,
	})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
