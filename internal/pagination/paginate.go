package pagination

import (
	"log/slog"

	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/measure"
	"github.com/gompdf/reportpager/internal/rows"
)

// Page represents a single page in the document
type Page struct {
	Index    int
	Rows     []rows.Row
	Heights  []float64
	Boundary boundary.Boundary

	HasAttendance bool
	HasSignature  bool
	// HasFooter marks the single trailing block of single-block documents
	HasFooter bool
}

// Used returns the summed height of the rows placed on the page
func (p *Page) Used() float64 {
	used := 0.0
	for _, h := range p.Heights {
		used += h
	}
	return used
}

// Last returns the last row on the page
func (p *Page) Last() (rows.Row, bool) {
	if len(p.Rows) == 0 {
		return rows.Row{}, false
	}
	return p.Rows[len(p.Rows)-1], true
}

// pageState is the page being filled during the forward pass
type pageState struct {
	index    int
	rows     []rows.Row
	heights  []float64
	height   float64
	boundary boundary.Boundary
}

func (s *pageState) push(r rows.Row, h float64) {
	s.rows = append(s.rows, r)
	s.heights = append(s.heights, h)
	s.height += h
}

func (s *pageState) pop() (rows.Row, float64) {
	last := len(s.rows) - 1
	r, h := s.rows[last], s.heights[last]
	s.rows = s.rows[:last]
	s.heights = s.heights[:last]
	s.height -= h
	return r, h
}

func (s *pageState) close() *Page {
	return &Page{
		Index:    s.index,
		Rows:     s.rows,
		Heights:  s.heights,
		Boundary: s.boundary,
	}
}

// paginator folds rows into pages for one run
type paginator struct {
	calc    *boundary.Calculator
	profile Profile
	heights measure.HeightProvider
	logger  *slog.Logger

	pages   []*Page
	current *pageState
}

func (p *paginator) open(index int) {
	p.current = &pageState{
		index:    index,
		boundary: p.calc.Calculate(index, index == 0),
	}
}

func (p *paginator) emit() {
	p.pages = append(p.pages, p.current.close())
}

// wouldExceed reports whether adding a row of height h overruns the page by
// more than the row's tolerance. Tail rows also need TailBuffer below them.
func (p *paginator) wouldExceed(r rows.Row, h float64) bool {
	s := p.current
	class := p.profile.ClassOf(r)
	limit := s.boundary.AvailableHeight + p.profile.Tolerances.For(class, s.boundary.First)
	need := s.height + h
	if class == ClassTail {
		need += p.profile.Tolerances.TailBuffer
	}
	return need > limit
}

func (p *paginator) place(r rows.Row) {
	h := p.heights.Height(r)
	s := p.current

	if len(s.rows) == 0 {
		s.push(r, h)
		return
	}
	if !p.wouldExceed(r, h) {
		s.push(r, h)
		return
	}

	if last := s.rows[len(s.rows)-1]; p.profile.IsOrphanable(last) && len(s.rows) > 1 {
		header, hh := s.pop()
		p.logger.Debug("relocating group header",
			slog.Int("page", s.index),
			slog.String("header", header.Order.String()),
			slog.String("row", r.Order.String()))
		p.emit()
		p.open(s.index + 1)
		p.current.push(header, hh)
		p.current.push(r, h)
		return
	}

	p.logger.Debug("page break",
		slog.Int("page", s.index),
		slog.Float64("used", s.height),
		slog.Float64("available", s.boundary.AvailableHeight),
		slog.String("row", r.Order.String()))
	p.emit()
	p.open(s.index + 1)
	p.current.push(r, h)
}

func (p *paginator) run(rs []rows.Row) []*Page {
	if len(rs) == 0 {
		return nil
	}
	p.open(0)
	for _, r := range rs {
		p.place(r)
	}
	if len(p.current.rows) > 0 {
		p.emit()
	}
	return p.pages
}
