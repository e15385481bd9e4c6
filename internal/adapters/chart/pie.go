// Package chart renders evaluation results as images.
package chart

import (
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/okian/kpieval/internal/domain/scoring"
)

// ErrNoChartData is returned when no row has a positive weighted score.
var ErrNoChartData = errors.New("no positive weighted scores to chart")

const (
	defaultSize  = 720
	defaultTitle = "Kontribusi Skor Tertimbang"
)

// Pie renders weighted score shares as a PNG pie chart.
type Pie struct {
	width  int
	height int
	title  string
}

// Option configures a Pie.
type Option func(*Pie)

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(p *Pie) {
		if width > 0 {
			p.width = width
		}
		if height > 0 {
			p.height = height
		}
	}
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(p *Pie) {
		p.title = title
	}
}

// NewPie creates a pie renderer.
func NewPie(opts ...Option) *Pie {
	p := &Pie{width: defaultSize, height: defaultSize, title: defaultTitle}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Slice is one wedge of the pie.
type Slice struct {
	Label string
	Value float64
	Share float64 // percent of the total of all slices
}

// Slices returns one slice per row with a positive weighted score. Rows
// scoring zero or less have no meaningful share and are left out.
func Slices(batch scoring.BatchResult) []Slice {
	var total float64
	for _, r := range batch.Rows {
		if r.WeightedScore > 0 {
			total += r.WeightedScore
		}
	}

	out := make([]Slice, 0, len(batch.Rows))
	for _, r := range batch.Rows {
		if r.WeightedScore <= 0 {
			continue
		}
		out = append(out, Slice{
			Label: r.Name,
			Value: r.WeightedScore,
			Share: r.WeightedScore / total * 100,
		})
	}
	return out
}

// Render writes the PNG for batch to w.
func (p *Pie) Render(w io.Writer, batch scoring.BatchResult) error {
	slices := Slices(batch)
	if len(slices) == 0 {
		return ErrNoChartData
	}

	values := make([]gochart.Value, len(slices))
	for i, s := range slices {
		values[i] = gochart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", s.Label, s.Share),
			Value: s.Value,
		}
	}

	pie := gochart.PieChart{
		Title:  p.title,
		Width:  p.width,
		Height: p.height,
		Values: values,
	}
	if err := pie.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}
