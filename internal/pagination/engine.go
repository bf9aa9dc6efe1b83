package pagination

import (
	"log/slog"

	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/measure"
	"github.com/gompdf/reportpager/internal/rows"
	"github.com/gompdf/reportpager/logging"
)

// Engine handles the pagination process
type Engine struct {
	calc    *boundary.Calculator
	profile Profile
	logger  *slog.Logger
}

// NewEngine creates a new pagination engine
func NewEngine(calc *boundary.Calculator, profile Profile) *Engine {
	return &Engine{calc: calc, profile: profile}
}

// SetLogger sets the logger for page-break diagnostics. Without one the
// package logger is used.
func (e *Engine) SetLogger(l *slog.Logger) {
	e.logger = l
}

// Profile returns the engine's profile
func (e *Engine) Profile() Profile {
	return e.profile
}

// Calculator returns the engine's boundary calculator
func (e *Engine) Calculator() *boundary.Calculator {
	return e.calc
}

// Paginate breaks rows into pages in a single forward pass. Rows keep their
// order; the only rewrite is moving a trailing group header onto the next
// page with the row that overflowed. The first row of a page is always
// accepted. No rows gives no pages.
func (e *Engine) Paginate(rs []rows.Row, heights measure.HeightProvider) []*Page {
	logger := e.logger
	if logger == nil {
		logger = logging.Logger()
	}
	p := &paginator{
		calc:    e.calc,
		profile: e.profile,
		heights: heights,
		logger:  logger,
	}
	return p.run(rs)
}
