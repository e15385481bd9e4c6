// Package service ties the scoring engine to file input, export and
// charting for the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/kpieval/internal/adapters/chart"
	"github.com/okian/kpieval/internal/adapters/tabular"
	"github.com/okian/kpieval/internal/adapters/worker"
	"github.com/okian/kpieval/internal/domain/model"
	"github.com/okian/kpieval/internal/domain/scoring"
	"github.com/okian/kpieval/pkg/logger"
	"github.com/okian/kpieval/pkg/metrics"
)

// Metric outcome labels.
const (
	outcomeOK         = "ok"
	outcomeZeroWeight = "zero_weight"
	outcomeError      = "error"
)

// EvaluateRequest is one scoring request.
type EvaluateRequest struct {
	Records  []model.Record
	Mode     scoring.Mode
	Position string // optional pre-filter on the position column
}

// Report is the outcome of one evaluation.
type Report struct {
	ID        string              `json:"id"`
	Source    string              `json:"source,omitempty"`
	Position  string              `json:"position,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Result    scoring.BatchResult `json:"result"`
}

// FileReport pairs a file with its report or the error that stopped it.
type FileReport struct {
	Path   string
	Report Report
	Err    error
}

// Service evaluates KPI batches.
type Service struct {
	mu sync.RWMutex

	// Components
	reader *tabular.Reader
	pie    *chart.Pie
	pool   *worker.Pool

	// Configuration
	workerCount int
	defaultMode scoring.Mode
	columns     map[model.Field][]string
	sheetName   string
	inputSheet  string
	chartSize   int
	chartTitle  string

	// State
	started bool
	stats   stats

	logger logger.Logger
}

type stats struct {
	evaluations  int64
	failures     int64
	rowsScored   int64
	rowsExcluded int64
	categories   map[scoring.Category]int64
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		defaultMode: scoring.ModePolarity,
		sheetName:   tabular.DefaultSheetName,
		stats:       stats{categories: make(map[scoring.Category]int64)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	readerOpts := []tabular.Option{tabular.WithColumns(s.columns)}
	if s.inputSheet != "" {
		readerOpts = append(readerOpts, tabular.WithSheet(s.inputSheet))
	}
	s.reader = tabular.NewReader(readerOpts...)

	var pieOpts []chart.Option
	if s.chartSize > 0 {
		pieOpts = append(pieOpts, chart.WithSize(s.chartSize, s.chartSize))
	}
	if s.chartTitle != "" {
		pieOpts = append(pieOpts, chart.WithTitle(s.chartTitle))
	}
	s.pie = chart.NewPie(pieOpts...)
	s.pool = worker.NewPool(s.workerCount, worker.WithLogger(s.logger.Named("pool")))

	s.started = true
	s.logger.Info(ctx, "kpi evaluation service started",
		logger.Int("workers", s.workerCount),
		logger.String("defaultMode", s.defaultMode.String()),
		logger.String("sheet", s.sheetName),
		logger.String("inputSheet", s.inputSheet),
	)
	return nil
}

// Stop marks the service stopped. In-flight calls finish normally.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "kpi evaluation service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// ResolveMode parses a mode name, falling back to the configured default
// when text is blank.
func (s *Service) ResolveMode(text string) (scoring.Mode, error) {
	if text == "" {
		return s.defaultMode, nil
	}
	return scoring.ParseMode(text)
}

// Evaluate scores req. When the scored rows carry no weight the report is
// returned together with ErrZeroTotalWeight.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (Report, error) {
	if err := s.ready(); err != nil {
		return Report{}, err
	}
	start := time.Now()

	records := model.FilterPosition(req.Records, req.Position)
	batch := scoring.ScoreBatch(records, req.Mode)

	report := Report{
		ID:        uuid.NewString(),
		Position:  req.Position,
		CreatedAt: start.UTC(),
		Result:    batch,
	}

	for _, ex := range batch.Excluded {
		metrics.RecordRowExcluded(string(ex.Reason))
		s.logger.Debug(ctx, "row excluded",
			logger.String("evaluationID", report.ID),
			logger.Int("index", ex.Index),
			logger.String("name", ex.Name),
			logger.String("reason", string(ex.Reason)),
			logger.String("field", string(ex.Field)),
		)
	}
	metrics.RecordRowsScored(batch.ScoredCount)

	latency := float64(time.Since(start).Microseconds()) / 1000
	if batch.ZeroTotalWeight {
		metrics.RecordZeroWeightBatch()
		metrics.RecordEvaluation(req.Mode.String(), outcomeZeroWeight, latency)
		s.record(batch, false)
		s.logger.Warn(ctx, "evaluation has zero total weight",
			logger.String("evaluationID", report.ID),
			logger.Int("input", batch.InputCount),
			logger.Int("scored", batch.ScoredCount),
		)
		return report, ErrZeroTotalWeight
	}

	if batch.Overflow {
		s.logger.Warn(ctx, "evaluation totals overflowed; final score reported as 0",
			logger.String("evaluationID", report.ID),
			logger.Int("scored", batch.ScoredCount),
		)
	}

	metrics.RecordEvaluation(req.Mode.String(), outcomeOK, latency)
	metrics.RecordFinalScore(batch.FinalScore, string(batch.Category))
	s.record(batch, true)

	s.logger.Info(ctx, "evaluation completed",
		logger.String("evaluationID", report.ID),
		logger.String("mode", req.Mode.String()),
		logger.Int("input", batch.InputCount),
		logger.Int("scored", batch.ScoredCount),
		logger.Int("excluded", len(batch.Excluded)),
		logger.Float64("finalScore", batch.FinalScore),
		logger.String("category", string(batch.Category)),
	)
	return report, nil
}

// EvaluateFile reads records from src, using the extension of name to
// pick the format, and evaluates them.
func (s *Service) EvaluateFile(ctx context.Context, name string, src io.Reader, mode scoring.Mode, position string) (Report, error) {
	if err := s.ready(); err != nil {
		return Report{}, err
	}
	records, err := s.reader.Read(name, src)
	if err != nil {
		s.fail()
		metrics.RecordEvaluation(mode.String(), outcomeError, 0)
		return Report{}, fmt.Errorf("read %s: %w", filepath.Base(name), err)
	}

	report, err := s.Evaluate(ctx, EvaluateRequest{Records: records, Mode: mode, Position: position})
	report.Source = filepath.Base(name)
	return report, err
}

// EvaluateFiles evaluates every path on the worker pool. Reports come back
// in the order of paths.
func (s *Service) EvaluateFiles(ctx context.Context, paths []string, mode scoring.Mode, position string) ([]FileReport, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoInputFiles
	}

	out := make([]FileReport, len(paths))
	errs := s.pool.Run(ctx, len(paths), func(ctx context.Context, i int) error {
		report, err := s.evaluatePath(ctx, paths[i], mode, position)
		out[i].Report = report
		return err
	})

	for i, path := range paths {
		out[i].Path = path
		out[i].Err = errs[i]
		if errs[i] != nil {
			metrics.RecordFileProcessed(outcomeError)
		} else {
			metrics.RecordFileProcessed(outcomeOK)
		}
	}
	return out, nil
}

func (s *Service) evaluatePath(ctx context.Context, path string, mode scoring.Mode, position string) (Report, error) {
	f, err := os.Open(path) //nolint:gosec // paths come from the operator
	if err != nil {
		s.fail()
		return Report{}, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	return s.EvaluateFile(ctx, path, f, mode, position)
}

// Export writes report in format to w.
func (s *Service) Export(ctx context.Context, w io.Writer, report Report, format tabular.Format) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := tabular.Write(w, report.Result, format, s.sheetName); err != nil {
		s.logger.Error(ctx, "export failed",
			logger.String("evaluationID", report.ID),
			logger.String("format", string(format)),
			logger.Error(err),
		)
		return err
	}
	metrics.RecordExport(string(format))
	return nil
}

// Chart writes a PNG pie chart of the report's weighted scores to w.
func (s *Service) Chart(ctx context.Context, w io.Writer, report Report) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.pie.Render(w, report.Result); err != nil {
		s.logger.Warn(ctx, "chart not rendered",
			logger.String("evaluationID", report.ID),
			logger.Error(err),
		)
		return err
	}
	metrics.RecordChart()
	return nil
}

func (s *Service) record(batch scoring.BatchResult, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.evaluations++
	s.stats.rowsScored += int64(batch.ScoredCount)
	s.stats.rowsExcluded += int64(len(batch.Excluded))
	if ok {
		s.stats.categories[batch.Category]++
	} else {
		s.stats.failures++
	}
}

func (s *Service) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.evaluations++
	s.stats.failures++
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make(map[string]int64, len(scoring.Categories))
	for _, c := range scoring.Categories {
		categories[string(c)] = s.stats.categories[c]
	}
	return map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"defaultMode":  s.defaultMode.String(),
		"evaluations":  s.stats.evaluations,
		"failures":     s.stats.failures,
		"rowsScored":   s.stats.rowsScored,
		"rowsExcluded": s.stats.rowsExcluded,
		"categories":   categories,
	}
}
