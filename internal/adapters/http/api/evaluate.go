package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/kpieval/internal/adapters/tabular"
	service "github.com/okian/kpieval/internal/app"
	"github.com/okian/kpieval/internal/domain/types"
	"github.com/okian/kpieval/pkg/metrics"
)

const uploadField = "file"

// EvaluateHandler serves the evaluation, export and chart endpoints. All
// three accept the same input: a JSON body or a multipart file upload.
type EvaluateHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewEvaluateHandler creates an evaluation handler.
func NewEvaluateHandler(deps Dependencies, maxBytes int64) *EvaluateHandler {
	return &EvaluateHandler{deps: deps, maxBytes: maxBytes}
}

// HandleEvaluate handles POST /evaluate and returns the JSON report.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	report, err := h.evaluate(w, r)
	if errors.Is(err, service.ErrZeroTotalWeight) {
		status, code := classify(err)
		writeJSON(w, status, errorResponse{Code: code, Message: Wrap(op, err).Error(), Report: &report})
		return
	}
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleExport handles POST /evaluate/export?format=xlsx|csv.
func (h *EvaluateHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	format, err := tabular.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.evaluate(w, r)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), &buf, report, format); err != nil {
		fail(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": format.FileName()}))
	w.Header().Set("X-Evaluation-Id", report.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleChart handles POST /evaluate/chart and returns a PNG.
func (h *EvaluateHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	report, err := h.evaluate(w, r)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Chart(r.Context(), &buf, report); err != nil {
		fail(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Evaluation-Id", report.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// evaluate decodes the request body in whichever form it arrived and runs
// the evaluation.
func (h *EvaluateHandler) evaluate(w http.ResponseWriter, r *http.Request) (service.Report, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil && r.Header.Get("Content-Type") != "" {
		return service.Report{}, WrapKind("decode", ErrUnsupported, err)
	}

	switch {
	case mediaType == "" || mediaType == "application/json":
		return h.evaluateJSON(r)
	case strings.HasPrefix(mediaType, "multipart/"):
		return h.evaluateUpload(r)
	default:
		return service.Report{}, WrapKind("decode", ErrUnsupported, errors.New(mediaType))
	}
}

func (h *EvaluateHandler) evaluateJSON(r *http.Request) (service.Report, error) {
	var req types.EvaluateRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Report{}, err
		}
		return service.Report{}, WrapKind("decode", ErrBadRequest, err)
	}
	if len(req.Rows) == 0 {
		return service.Report{}, NewKind("decode", ErrBadRequest)
	}

	mode, err := h.deps.ResolveMode(firstNonEmpty(r.URL.Query().Get("mode"), req.Mode))
	if err != nil {
		return service.Report{}, err
	}
	return h.deps.Evaluate(r.Context(), service.EvaluateRequest{
		Records:  req.Records(),
		Mode:     mode,
		Position: firstNonEmpty(r.URL.Query().Get("position"), req.Position),
	})
}

func (h *EvaluateHandler) evaluateUpload(r *http.Request) (service.Report, error) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Report{}, err
		}
		return service.Report{}, WrapKind("upload", ErrBadRequest, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return service.Report{}, WrapKind("upload", ErrBadRequest, err)
	}
	defer func() { _ = file.Close() }()
	metrics.RecordUploadSize(header.Size)

	mode, err := h.deps.ResolveMode(r.FormValue("mode"))
	if err != nil {
		return service.Report{}, err
	}
	return h.deps.EvaluateFile(r.Context(), header.Filename, file, mode, r.FormValue("position"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
