// Package measure provides row heights to the pagination engine, either
// measured from a rendering surface or estimated from row content.
package measure

import (
	"github.com/gompdf/reportpager/internal/rows"
)

// HeightProvider returns the rendered height of a row in layout units
type HeightProvider interface {
	Height(row rows.Row) float64
}

// HeightFunc adapts a function to HeightProvider
type HeightFunc func(row rows.Row) float64

// Height implements HeightProvider
func (f HeightFunc) Height(row rows.Row) float64 {
	return f(row)
}

// Measured serves heights from a measurement set. Rows without a measurement
// are asked of the fallback provider, or get zero height when there is none.
type Measured struct {
	heights  map[rows.Order]float64
	fallback HeightProvider
}

// NewMeasured indexes measurements by order
func NewMeasured(ms []rows.Measurement, fallback HeightProvider) *Measured {
	heights := make(map[rows.Order]float64, len(ms))
	for _, m := range ms {
		heights[m.Order] += m.Height
	}
	return &Measured{heights: heights, fallback: fallback}
}

// Height implements HeightProvider
func (m *Measured) Height(row rows.Row) float64 {
	if h, ok := m.heights[row.Order]; ok {
		return h
	}
	if m.fallback != nil {
		return m.fallback.Height(row)
	}
	return 0
}

// Has reports whether the row was measured
func (m *Measured) Has(row rows.Row) bool {
	_, ok := m.heights[row.Order]
	return ok
}
