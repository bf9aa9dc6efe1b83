package measure

import (
	"github.com/gompdf/reportpager/internal/rows"
	"github.com/gompdf/reportpager/internal/text"
)

// Metrics are the constants the estimator works from. They approximate the
// rendered table: a fixed line height, the text column width in display
// columns and vertical padding per row kind.
type Metrics struct {
	LineHeight    float64 `yaml:"line_height"`
	Columns       int     `yaml:"columns"`
	DataPadding   float64 `yaml:"data_padding"`
	HeaderPadding float64 `yaml:"header_padding"`
	TailPadding   float64 `yaml:"tail_padding"`
	// TailHeights fixes the height of tail rows by key
	TailHeights map[rows.TailKey]float64 `yaml:"tail_heights,omitempty"`
}

// DefaultMetrics matches a 10pt table with a 60 column description cell
func DefaultMetrics() Metrics {
	return Metrics{
		LineHeight:    18,
		Columns:       60,
		DataPadding:   10,
		HeaderPadding: 12,
		TailPadding:   16,
	}
}

// Estimator derives row heights from kind and text length without rendering.
// It is a heuristic used for bulk generation; page counts are plausible but
// can differ from a measured run.
type Estimator struct {
	metrics Metrics
	wrapper *text.Wrapper
}

// NewEstimator creates an estimator for the given metrics
func NewEstimator(m Metrics) *Estimator {
	return &Estimator{metrics: m, wrapper: text.NewWrapper(m.Columns)}
}

// Metrics returns the estimator's metrics
func (e *Estimator) Metrics() Metrics {
	return e.metrics
}

// Height implements HeightProvider
func (e *Estimator) Height(row rows.Row) float64 {
	if row.IsTail() {
		if h, ok := e.metrics.TailHeights[row.TailKey]; ok && h > 0 {
			return h
		}
	}

	lines := row.Lines
	if lines <= 0 {
		lines = e.wrapper.CountLines(row.Text)
	}
	return e.padding(row.Kind) + float64(lines)*e.metrics.LineHeight
}

// padding returns the vertical padding for a row kind
func (e *Estimator) padding(k rows.Kind) float64 {
	switch k {
	case rows.KindGroupHeader:
		return e.metrics.HeaderPadding
	case rows.KindTail:
		return e.metrics.TailPadding
	default:
		return e.metrics.DataPadding
	}
}
