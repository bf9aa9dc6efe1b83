package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/diagnostics"
	"github.com/gompdf/reportpager/internal/measure"
	"github.com/gompdf/reportpager/internal/pagination"
	"github.com/gompdf/reportpager/internal/render/pdf"
	"github.com/gompdf/reportpager/internal/res"
	"github.com/gompdf/reportpager/internal/rows"
	"github.com/gompdf/reportpager/internal/tail"
	"github.com/gompdf/reportpager/logging"
)

// Result is the outcome of one pagination run
type Result struct {
	RunID string
	Pages []*pagination.Page
	// Measurements is empty for estimated runs
	Measurements []rows.Measurement
	Reports      []diagnostics.PageReport
}

// TotalPages returns the number of pages, trailing-block pages included
func (r *Result) TotalPages() int {
	return len(r.Pages)
}

// Overflows returns the reports of pages that exceed their tolerance
func (r *Result) Overflows() []diagnostics.PageReport {
	var out []diagnostics.PageReport
	for _, rep := range r.Reports {
		if rep.Status == diagnostics.StatusOverflow {
			out = append(out, rep)
		}
	}
	return out
}

// Summary renders the page reports as a text table
func (r *Result) Summary() string {
	return diagnostics.Summary(r.Reports)
}

// Paginator is the main API for splitting report rows into pages
type Paginator struct {
	options Options
	loader  *res.Loader
}

// New creates a paginator with default options
func New(opts ...Option) *Paginator {
	return NewWithOptions(DefaultOptions(), opts...)
}

// NewWithOptions creates a paginator with the specified options
func NewWithOptions(options Options, opts ...Option) *Paginator {
	for _, o := range opts {
		o(&options)
	}
	return &Paginator{
		options: options,
		loader:  res.NewLoader(""),
	}
}

// Options returns a copy of the paginator's options
func (p *Paginator) Options() Options {
	return p.options
}

// WithOption returns a new paginator with the option applied
func (p *Paginator) WithOption(option Option) *Paginator {
	np := NewWithOptions(p.options, option)
	np.loader = p.loader
	return np
}

// ForDocument returns a paginator whose loader resolves relative logo
// references against the document at ref. The receiver is not modified, so
// one paginator can serve many documents concurrently.
func (p *Paginator) ForDocument(ref string) *Paginator {
	return &Paginator{
		options: p.options,
		loader:  p.loader.WithBase(ref),
	}
}

// SetLoader replaces the loader used for documents and logos
func (p *Paginator) SetLoader(l *res.Loader) {
	p.loader = l
}

// Loader returns the paginator's resource loader
func (p *Paginator) Loader() *res.Loader {
	return p.loader
}

// Estimator returns the heuristic height provider for the configured metrics
func (p *Paginator) Estimator() *measure.Estimator {
	return measure.NewEstimator(p.options.Estimator)
}

// Surface returns an offscreen fpdf surface matching the renderer's layout
func (p *Paginator) Surface() *measure.PDFSurface {
	return measure.NewPDFSurface(p.layout())
}

func (p *Paginator) layout() measure.PDFLayout {
	l := p.options.PDFLayout
	l.PxPerMM = p.options.Geometry.PxPerMM
	return l
}

func (p *Paginator) logger() *slog.Logger {
	if p.options.Logger != nil {
		return p.options.Logger
	}
	return logging.Logger()
}

// Paginate splits rows into pages using estimated heights
func (p *Paginator) Paginate(rs []rows.Row) (*Result, error) {
	return p.PaginateWith(rs, p.Estimator())
}

// PaginateWith splits rows into pages using heights from the given provider
func (p *Paginator) PaginateWith(rs []rows.Row, heights measure.HeightProvider) (*Result, error) {
	return p.run(uuid.NewString(), rs, heights, nil)
}

// PaginateMeasured lays rows out on the surface, waits for it to settle and
// paginates with the measured heights. Rows the surface did not report fall
// back to the estimator.
func (p *Paginator) PaginateMeasured(ctx context.Context, surface measure.Surface, rs []rows.Row) (*Result, error) {
	if err := p.options.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	logger := p.logger().With(slog.String("run", runID))

	ms, err := measure.Measure(ctx, surface, rs, measure.Settle(p.options.SettleDelay))
	if err != nil {
		return nil, err
	}
	logger.Debug("measured rows", slog.Int("rows", len(rs)), slog.Int("measured", len(ms)))

	return p.run(runID, rs, measure.NewMeasured(ms, p.Estimator()), ms)
}

// PaginateDocument paginates a document's rows, measuring them offscreen
// when measured is true
func (p *Paginator) PaginateDocument(ctx context.Context, doc *rows.Document, measured bool) (*Result, error) {
	if measured {
		return p.PaginateMeasured(ctx, p.Surface(), doc.Rows)
	}
	return p.Paginate(doc.Rows)
}

func (p *Paginator) run(runID string, rs []rows.Row, heights measure.HeightProvider, ms []rows.Measurement) (*Result, error) {
	if err := p.options.Validate(); err != nil {
		return nil, err
	}
	if err := rows.Validate(rs); err != nil {
		return nil, err
	}
	profile, err := p.options.profile()
	if err != nil {
		return nil, err
	}

	logger := p.logger().With(slog.String("run", runID))
	calc := boundary.NewCalculator(p.options.Geometry)

	engine := pagination.NewEngine(calc, profile)
	engine.SetLogger(logger)
	pages := engine.Paginate(rs, heights)
	pages = tail.Place(pages, profile.Tail, calc)

	reports := diagnostics.Classify(pages, profile)
	diagnostics.Report(logger, reports)
	logger.Info("paginated report",
		slog.String("profile", profile.Name),
		slog.Int("rows", len(rs)),
		slog.Int("pages", len(pages)))

	return &Result{
		RunID:        runID,
		Pages:        pages,
		Measurements: ms,
		Reports:      reports,
	}, nil
}

func (p *Paginator) renderOptions(logo string) pdf.RenderOptions {
	return pdf.RenderOptions{
		Author:      p.options.Author,
		Subject:     p.options.Subject,
		Creator:     "reportpager",
		Producer:    "reportpager",
		PageWidthMM: p.options.PageWidthMM,
		Geometry:    p.options.Geometry,
		Blocks:      p.options.TailBlocks,
		Logo:        logo,
	}
}

func (p *Paginator) renderer() *pdf.Renderer {
	r := pdf.NewRenderer(p.loader, p.layout())
	r.Logger = p.logger()
	return r
}

// RenderToFile writes a paginated document to a PDF file. An empty logo
// uses the document's own logo reference.
func (p *Paginator) RenderToFile(ctx context.Context, result *Result, doc *rows.Document, logo, outputPath string) error {
	if err := p.renderer().Render(ctx, result.Pages, doc, outputPath, p.renderOptions(logo)); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// Render writes a paginated document as a PDF stream
func (p *Paginator) Render(ctx context.Context, result *Result, doc *rows.Document, logo string, w io.Writer) error {
	if err := p.renderer().Write(ctx, result.Pages, doc, w, p.renderOptions(logo)); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// ConvertFile loads a document, paginates it and writes the PDF
func (p *Paginator) ConvertFile(ctx context.Context, inputPath, outputPath string, measured bool) (*Result, error) {
	doc, err := p.loader.LoadDocument(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	dp := p.ForDocument(inputPath)
	result, err := dp.PaginateDocument(ctx, doc, measured)
	if err != nil {
		return nil, err
	}
	if err := dp.RenderToFile(ctx, result, doc, "", outputPath); err != nil {
		return nil, err
	}
	return result, nil
}
