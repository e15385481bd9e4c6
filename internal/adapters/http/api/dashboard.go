package api

import (
	"bytes"
	"io/fs"
	"net/http"

	"github.com/okian/kpieval/pkg/metrics"
)

// defaultMetricPrefix is the prefix the embedded page is written against.
const defaultMetricPrefix = "kpi_eval_"

type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard. The page polls /metrics and shows
// evaluation counts per category and exclusion reason, using the metric
// names of the running configuration.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, _ *http.Request) {
	page, err := fs.ReadFile(dashboardFS, "dashboard.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if prefix := metrics.Prefix(); prefix != defaultMetricPrefix {
		page = bytes.ReplaceAll(page, []byte(defaultMetricPrefix), []byte(prefix))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
