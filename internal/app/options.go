package service

import (
	"github.com/okian/kpieval/internal/domain/model"
	"github.com/okian/kpieval/internal/domain/scoring"
	"github.com/okian/kpieval/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets how many files EvaluateFiles reads at once.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultMode sets the mode used when a request names none.
func WithDefaultMode(mode scoring.Mode) Option {
	return func(s *Service) {
		s.defaultMode = mode
	}
}

// WithColumns sets the header aliases used to read tabular files.
func WithColumns(cols map[model.Field][]string) Option {
	return func(s *Service) {
		s.columns = cols
	}
}

// WithSheetName sets the worksheet name written by XLSX exports.
func WithSheetName(name string) Option {
	return func(s *Service) {
		s.sheetName = name
	}
}

// WithInputSheet pins the worksheet read from uploaded XLSX files. Without
// it the first sheet of each workbook is read.
func WithInputSheet(name string) Option {
	return func(s *Service) {
		s.inputSheet = name
	}
}

// WithChartSize sets the edge length in pixels of rendered pie charts.
func WithChartSize(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.chartSize = px
		}
	}
}

// WithChartTitle sets the title drawn above pie charts. An empty title
// keeps the default.
func WithChartTitle(title string) Option {
	return func(s *Service) {
		s.chartTitle = title
	}
}
