// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers defaults, an optional YAML file and KPI_* env vars.
//   - Errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/kpieval/internal/domain/model"
	"github.com/okian/kpieval/internal/domain/scoring"
	"github.com/okian/kpieval/pkg/metrics"
)

// Default header aliases, matching the exported KPI sheets.
const (
	DefaultColumnName        = "NAMA KPI,KPI,NAME"
	DefaultColumnWeight      = "BOBOT,WEIGHT"
	DefaultColumnTarget      = "TARGET TW TERKAIT,TARGET"
	DefaultColumnRealization = "REALISASI TW TERKAIT,REALISASI,REALIZATION,CAPAIAN"
	DefaultColumnPolarity    = "POLARITAS,POLARITY"
	DefaultColumnPosition    = "JABATAN,POSISI,POSITION"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxUploadBytes caps the size of an uploaded KPI file.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// DefaultMode is used when a request does not name a scoring mode.
	DefaultMode string `koanf:"default_mode"`

	// Workers bounds how many files are evaluated concurrently.
	Workers int `koanf:"workers"`

	// SheetName names the worksheet written by XLSX exports.
	SheetName string `koanf:"sheet_name"`

	// InputSheet pins the worksheet read from uploaded workbooks. Empty
	// reads the first sheet.
	InputSheet string `koanf:"input_sheet"`

	// ChartSize is the edge length in pixels of the weighted score pie.
	ChartSize int `koanf:"chart_size"`

	// ChartTitle is drawn above the pie.
	ChartTitle string `koanf:"chart_title"`

	// Metrics* shape the Prometheus names. Labels are "key=value" pairs and
	// buckets are ascending numbers, both comma separated. Empty buckets
	// keep the built-in ones.
	MetricsNamespace      string `koanf:"metrics_namespace"`
	MetricsSubsystem      string `koanf:"metrics_subsystem"`
	MetricsLabels         string `koanf:"metrics_labels"`
	MetricsScoreBuckets   string `koanf:"metrics_score_buckets"`
	MetricsLatencyBuckets string `koanf:"metrics_latency_buckets"`

	// Column* hold comma-separated header aliases per canonical field.
	ColumnName        string `koanf:"column_name"`
	ColumnWeight      string `koanf:"column_weight"`
	ColumnTarget      string `koanf:"column_target"`
	ColumnRealization string `koanf:"column_realization"`
	ColumnPolarity    string `koanf:"column_polarity"`
	ColumnPosition    string `koanf:"column_position"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		MaxUploadBytes:    10 << 20,
		DefaultMode:       "polarity",
		Workers:           runtime.NumCPU(),
		SheetName:         "Evaluasi KPI",
		ChartSize:         720,
		ChartTitle:        "Kontribusi Skor Tertimbang",
		MetricsNamespace:  "kpi",
		MetricsSubsystem:  "eval",
		ColumnName:        DefaultColumnName,
		ColumnWeight:      DefaultColumnWeight,
		ColumnTarget:      DefaultColumnTarget,
		ColumnRealization: DefaultColumnRealization,
		ColumnPolarity:    DefaultColumnPolarity,
		ColumnPosition:    DefaultColumnPosition,
	}
}

// Mode returns the parsed default scoring mode.
func (c *Config) Mode() scoring.Mode {
	m, _ := scoring.ParseMode(c.DefaultMode)
	return m
}

// Columns returns the header aliases for every canonical field.
func (c *Config) Columns() map[model.Field][]string {
	return map[model.Field][]string{
		model.FieldName:        splitAliases(c.ColumnName),
		model.FieldWeight:      splitAliases(c.ColumnWeight),
		model.FieldTarget:      splitAliases(c.ColumnTarget),
		model.FieldRealization: splitAliases(c.ColumnRealization),
		model.FieldPolarity:    splitAliases(c.ColumnPolarity),
		model.FieldPosition:    splitAliases(c.ColumnPosition),
	}
}

// Validate checks invariants the rest of the process relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case strings.TrimSpace(c.SheetName) == "":
		return fmt.Errorf("%w: sheet_name must not be empty", ErrInvalidConfig)
	case c.ChartSize < 1:
		return fmt.Errorf("%w: chart_size must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.MetricsNamespace) == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	if _, err := c.MetricsOptions(); err != nil {
		return err
	}
	if _, err := scoring.ParseMode(c.DefaultMode); err != nil {
		return fmt.Errorf("%w: default_mode: %w", ErrInvalidConfig, err)
	}
	for field, aliases := range c.Columns() {
		if len(aliases) == 0 {
			return fmt.Errorf("%w: column_%s must list at least one header", ErrInvalidConfig, field)
		}
	}
	return nil
}

// MetricsOptions converts the metrics_* keys into metrics options.
func (c *Config) MetricsOptions() ([]metrics.Option, error) {
	labels, err := parseLabels(c.MetricsLabels)
	if err != nil {
		return nil, err
	}
	scoreBuckets, err := parseBuckets("metrics_score_buckets", c.MetricsScoreBuckets)
	if err != nil {
		return nil, err
	}
	latencyBuckets, err := parseBuckets("metrics_latency_buckets", c.MetricsLatencyBuckets)
	if err != nil {
		return nil, err
	}
	return []metrics.Option{
		metrics.WithNamespace(strings.TrimSpace(c.MetricsNamespace)),
		metrics.WithSubsystem(strings.TrimSpace(c.MetricsSubsystem)),
		metrics.WithCustomLabels(labels),
		metrics.WithScoreBuckets(scoreBuckets),
		metrics.WithHistogramBuckets(latencyBuckets),
	}, nil
}

func parseLabels(s string) (map[string]string, error) {
	labels := map[string]string{}
	for _, pair := range splitAliases(s) {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" || strings.HasPrefix(k, "__") {
			return nil, fmt.Errorf("%w: metrics_labels: bad pair %q", ErrInvalidConfig, pair)
		}
		labels[k] = strings.TrimSpace(v)
	}
	return labels, nil
}

func parseBuckets(key, s string) ([]float64, error) {
	var out []float64
	for _, part := range splitAliases(s) {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}
		out = append(out, v)
	}
	if !slices.IsSorted(out) || len(slices.Compact(slices.Clone(out))) != len(out) {
		return nil, fmt.Errorf("%w: %s must be strictly ascending", ErrInvalidConfig, key)
	}
	return out, nil
}

func splitAliases(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
