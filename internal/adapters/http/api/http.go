// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/kpieval/internal/adapters/chart"
	"github.com/okian/kpieval/internal/adapters/tabular"
	service "github.com/okian/kpieval/internal/app"
	"github.com/okian/kpieval/internal/domain/scoring"
)

const defaultMaxUploadBytes = 10 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	ResolveMode(text string) (scoring.Mode, error)
	Evaluate(ctx context.Context, req service.EvaluateRequest) (service.Report, error)
	EvaluateFile(ctx context.Context, name string, src io.Reader, mode scoring.Mode, position string) (service.Report, error)
	Export(ctx context.Context, w io.Writer, report service.Report, format tabular.Format) error
	Chart(ctx context.Context, w io.Writer, report service.Report) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	evaluateHandler  *EvaluateHandler
	dashboardHandler *dashboardHandler
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
}

// WithMaxUploadBytes caps request bodies on the evaluation endpoints.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		evaluateHandler:  NewEvaluateHandler(deps, cfg.maxUploadBytes),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))
	mux.HandleFunc("/evaluate/export", MetricsMiddleware(s.evaluateHandler.HandleExport, "export"))
	mux.HandleFunc("/evaluate/chart", MetricsMiddleware(s.evaluateHandler.HandleChart, "chart"))
}

type errorResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Report  *service.Report `json:"report,omitempty"`
}

// writeJSON encodes v before committing status, so a value that cannot be
// encoded turns into a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Code: "internal_error", Message: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps an error onto an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrUnsupported):
		return http.StatusUnsupportedMediaType, "unsupported_media_type"
	case errors.Is(err, service.ErrZeroTotalWeight):
		return http.StatusUnprocessableEntity, "zero_total_weight"
	case errors.Is(err, chart.ErrNoChartData):
		return http.StatusUnprocessableEntity, "no_chart_data"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scoring.ErrUnknownMode),
		errors.Is(err, tabular.ErrUnknownFormat),
		errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.Is(err, tabular.ErrNoHeader),
		errors.Is(err, tabular.ErrNoKnownColumns),
		errors.Is(err, tabular.ErrSheetNotFound):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with the status classify picks for it.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
