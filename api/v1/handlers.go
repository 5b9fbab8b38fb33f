package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	analyticsapp "ragreport/internal/analytics/application"
	analyticsdomain "ragreport/internal/analytics/domain"
	exportdomain "ragreport/internal/export/domain"
	salesapp "ragreport/internal/sales/application"
	shareddomain "ragreport/internal/shared/domain"
)

// maxIngestBody taille maximale d'un CSV d'échantillons
const maxIngestBody = 32 << 20

// ReportProvider calcule les rapports RAG
type ReportProvider interface {
	StatusReport(ctx context.Context, q analyticsapp.ReportQuery) (*analyticsapp.RAGStatusResponse, error)
	SummaryReport(ctx context.Context, q analyticsapp.ReportQuery) (*analyticsapp.RAGSummaryResponse, error)
}

// Exporter exporte le rapport RAG
type Exporter interface {
	ExportCSV(ctx context.Context, q analyticsapp.ReportQuery) ([]byte, error)
	ExportParquetBytes(ctx context.Context, q analyticsapp.ReportQuery) ([]byte, error)
}

// Ingester enregistre des échantillons reçus en CSV
type Ingester interface {
	IngestCSV(ctx context.Context, r io.Reader) (*salesapp.IngestResult, error)
}

// HealthCheck vérifie une dépendance (DB, Redis...)
type HealthCheck func(ctx context.Context) error

// Handlers contient tous les handlers de l'API RAG
type Handlers struct {
	reports  ReportProvider
	exporter Exporter
	ingester Ingester
	checks   map[string]HealthCheck
	now      func() time.Time
}

// NewHandlers crée une nouvelle instance des handlers
func NewHandlers(reports ReportProvider, exporter Exporter, ingester Ingester) *Handlers {
	return &Handlers{
		reports:  reports,
		exporter: exporter,
		ingester: ingester,
		checks:   make(map[string]HealthCheck),
		now:      time.Now,
	}
}

// AddHealthCheck ajoute une dépendance vérifiée par /api/health
func (h *Handlers) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Register enregistre les routes sur le mux
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/v1/rag/status", h.GetStatus)
	mux.HandleFunc("GET /api/v1/rag/summary", h.GetSummary)
	mux.HandleFunc("GET /api/v1/rag/export/csv", h.ExportCSV)
	mux.HandleFunc("GET /api/v1/rag/export/parquet", h.ExportParquet)
	mux.HandleFunc("POST /api/v1/rag/samples", h.IngestSamples)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Health handler pour GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	label := "ok"
	if status != http.StatusOK {
		label = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status":       label,
		"dependencies": deps,
	})
}

// GetStatus handler pour GET /api/v1/rag/status
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.reports.StatusReport(r.Context(), q)
	if err != nil {
		slog.Error("status report failed", "err", err, "query", r.URL.RawQuery)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSummary handler pour GET /api/v1/rag/summary
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.reports.SummaryReport(r.Context(), q)
	if err != nil {
		slog.Error("summary report failed", "err", err, "query", r.URL.RawQuery)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportCSV handler pour GET /api/v1/rag/export/csv
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, exportdomain.ExportFormatCSV, h.exporter.ExportCSV)
}

// ExportParquet handler pour GET /api/v1/rag/export/parquet
func (h *Handlers) ExportParquet(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, exportdomain.ExportFormatParquet, h.exporter.ExportParquetBytes)
}

func (h *Handlers) export(
	w http.ResponseWriter,
	r *http.Request,
	format exportdomain.ExportFormat,
	produce func(context.Context, analyticsapp.ReportQuery) ([]byte, error),
) {
	q, err := parseReportQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if q.Period.IsZero() {
		q.Period = shareddomain.CurrentPeriod(h.now())
	}

	data, err := produce(r.Context(), q)
	if err != nil {
		slog.Error("export failed", "format", format, "err", err)
		writeError(w, err)
		return
	}

	job, err := exportdomain.NewExportJob(format, q.Period)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+job.FileName())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// IngestSamples handler pour POST /api/v1/rag/samples (corps CSV)
func (h *Handlers) IngestSamples(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxIngestBody)
	defer body.Close()

	result, err := h.ingester.IngestCSV(r.Context(), body)
	if err != nil {
		slog.Error("ingest failed", "err", err)
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Accepted == 0 && len(result.Rejected) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{
		"batchId":  result.BatchID,
		"accepted": result.Accepted,
		"rejected": result.Rejected,
		"periods":  result.PeriodLabels(),
	})
}

// parseReportQuery lit month/year (ou period=YYYY-MM) et les filtres city/brand/status
func parseReportQuery(r *http.Request) (analyticsapp.ReportQuery, error) {
	values := r.URL.Query()
	q := analyticsapp.ReportQuery{
		City:   strings.TrimSpace(values.Get("city")),
		Brand:  strings.TrimSpace(values.Get("brand")),
		Status: analyticsdomain.Status(strings.ToLower(strings.TrimSpace(values.Get("status")))),
	}

	if raw := values.Get("period"); raw != "" {
		p, err := shareddomain.ParsePeriod(raw)
		if err != nil {
			return q, invalidRequest(err.Error())
		}
		q.Period = p
	}

	monthStr, yearStr := values.Get("month"), values.Get("year")
	if monthStr != "" || yearStr != "" {
		if monthStr == "" || yearStr == "" {
			return q, invalidRequest("month and year must be provided together")
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			return q, invalidRequest(fmt.Sprintf("month %q is not a number", monthStr))
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return q, invalidRequest(fmt.Sprintf("year %q is not a number", yearStr))
		}
		p, err := shareddomain.NewPeriod(month, year)
		if err != nil {
			return q, invalidRequest(err.Error())
		}
		q.Period = p
	}

	if err := q.Validate(); err != nil {
		return q, invalidRequest(err.Error())
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}
