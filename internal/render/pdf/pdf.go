package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/measure"
	"github.com/gompdf/reportpager/internal/pagination"
	"github.com/gompdf/reportpager/internal/res"
	"github.com/gompdf/reportpager/internal/rows"
	"github.com/gompdf/reportpager/logging"
)

// Renderer draws paginated reports to PDF
type Renderer struct {
	Loader *res.Loader
	// Layout must match the layout rows were measured with
	Layout measure.PDFLayout
	Logger *slog.Logger
	// MarginMM is the left and right page margin
	MarginMM float64
	// LabelWidthMM is the width of the order column
	LabelWidthMM float64
	// AccentColor fills the table header band, as #RRGGBB or #RGB
	AccentColor string
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string

	PageWidthMM float64
	Geometry    boundary.Geometry
	Blocks      pagination.TailBlocks
	// Logo overrides the document's logo reference
	Logo string
}

// NewRenderer creates a new PDF renderer
func NewRenderer(loader *res.Loader, layout measure.PDFLayout) *Renderer {
	if loader == nil {
		loader = res.NewLoader("")
	}
	return &Renderer{
		Loader:       loader,
		Layout:       layout,
		MarginMM:     15,
		LabelWidthMM: 18,
		AccentColor:  "#dde4ee",
	}
}

// Render renders pages to a PDF file, creating its directory when needed
func (r *Renderer) Render(ctx context.Context, pages []*pagination.Page, doc *rows.Document, outputPath string, options RenderOptions) error {
	pdf, err := r.build(ctx, pages, doc, options)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return pdf.OutputFileAndClose(outputPath)
}

// Write renders pages as a PDF stream
func (r *Renderer) Write(ctx context.Context, pages []*pagination.Page, doc *rows.Document, w io.Writer, options RenderOptions) error {
	pdf, err := r.build(ctx, pages, doc, options)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// frame is the drawing state for one document
type frame struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	opts   RenderOptions
	scale  float64
	left   float64
	width  float64
	total  int
	doc    *rows.Document
	logo   *logoImage
	accent [3]int
}

// mm converts layout units to millimetres
func (f *frame) mm(v float64) float64 {
	return v / f.scale
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.Logger()
}

func (r *Renderer) build(ctx context.Context, pages []*pagination.Page, doc *rows.Document, options RenderOptions) (*fpdf.Fpdf, error) {
	if doc == nil {
		doc = &rows.Document{}
	}
	g := options.Geometry
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if options.PageWidthMM <= 2*r.MarginMM+r.LabelWidthMM {
		return nil, fmt.Errorf("page width %.1fmm leaves no room for the table", options.PageWidthMM)
	}
	if options.Title == "" {
		options.Title = doc.Title
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: options.PageWidthMM, Ht: g.PageHeightMM},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(r.MarginMM, g.PaddingTopMM, r.MarginMM)
	pdf.SetCellMargin(r.Layout.CellPadding)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)

	f := &frame{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		opts:   options,
		scale:  g.PxPerMM,
		left:   r.MarginMM,
		width:  options.PageWidthMM - 2*r.MarginMM,
		total:  len(pages),
		doc:    doc,
		accent: parseColor(r.AccentColor),
	}

	logoRef := options.Logo
	if logoRef == "" {
		logoRef = doc.Logo
	}
	if logoRef != "" {
		if img, err := r.loadLogo(ctx, logoRef); err != nil {
			r.logger().Warn("skipping logo", slog.String("logo", logoRef), slog.Any("error", err))
		} else {
			pdf.RegisterImageOptionsReader("logo", fpdf.ImageOptions{ImageType: img.kind}, bytes.NewReader(img.data))
			f.logo = img
		}
	}

	r.logger().Debug("rendering report", slog.Int("pages", len(pages)), slog.String("title", options.Title))
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		r.renderPage(f, p)
		if pdf.Err() {
			return nil, fmt.Errorf("failed to render page %d: %w", p.Index+1, pdf.Error())
		}
	}
	return pdf, nil
}

func (r *Renderer) loadLogo(ctx context.Context, ref string) (*logoImage, error) {
	res, err := r.Loader.LoadImage(ctx, ref)
	if err != nil {
		return nil, err
	}
	return prepareLogo(res)
}

// renderPage lays out the fixed bands, the rows and any trailing blocks
func (r *Renderer) renderPage(f *frame, p *pagination.Page) {
	g := f.opts.Geometry
	y := g.PaddingTopMM

	if p.Boundary.First {
		r.renderHeader(f, y, f.mm(g.HeaderBlock))
		y += f.mm(g.HeaderBlock)
		r.renderIdentity(f, y, f.mm(g.IdentityTable))
		y += f.mm(g.IdentityTable)
	}

	r.renderTableHeader(f, y, f.mm(g.TableHeader))
	y += f.mm(g.TableHeader)

	for i, row := range p.Rows {
		h := f.mm(p.Heights[i])
		r.renderRow(f, row, y, h)
		y += h
	}

	blocks := f.opts.Blocks
	if p.HasAttendance {
		h := f.mm(blocks.Attendance)
		r.renderAttendance(f, y, h)
		y += h + f.mm(blocks.Gap)
	}
	if p.HasSignature {
		r.renderSignatures(f, y, f.mm(blocks.Signature))
	}

	footer := f.mm(g.PageFooter)
	r.renderFooter(f, p, g.PageHeightMM-g.PaddingBottomMM-footer, footer)
}

func (r *Renderer) renderHeader(f *frame, y, h float64) {
	pdf := f.pdf
	textLeft := f.left
	if f.logo != nil && f.logo.width > 0 && f.logo.height > 0 {
		lh := max(0, h-4)
		lw := lh * float64(f.logo.width) / float64(f.logo.height)
		pdf.ImageOptions("logo", f.left, y+2, lw, lh, false, fpdf.ImageOptions{ImageType: f.logo.kind}, 0, "")
		textLeft += lw + 4
	}

	pdf.SetFont(r.Layout.FontFamily, "B", r.Layout.FontSize+6)
	pdf.SetXY(textLeft, y)
	pdf.CellFormat(f.left+f.width-textLeft, h*0.6, f.tr(f.opts.Title), "", 2, "C", false, 0, "")
	if school := f.doc.Student.School; school != "" {
		pdf.SetFont(r.Layout.FontFamily, "", r.Layout.FontSize+1)
		pdf.SetX(textLeft)
		pdf.CellFormat(f.left+f.width-textLeft, h*0.3, f.tr(school), "", 0, "C", false, 0, "")
	}
}

func (r *Renderer) renderIdentity(f *frame, y, h float64) {
	s := f.doc.Student
	pairs := [][2]string{
		{"Name", s.Name}, {"Student ID", s.ID},
		{"Class", s.Class}, {"Term", s.Term},
	}
	pdf := f.pdf
	rowH := h / 2
	colW := f.width / 4
	for i, kv := range pairs {
		x := f.left + float64(i%2)*2*colW
		cy := y + float64(i/2)*rowH
		pdf.SetXY(x, cy)
		pdf.SetFont(r.Layout.FontFamily, "B", r.Layout.FontSize)
		pdf.CellFormat(colW, rowH, f.tr(kv[0]), "", 0, "L", false, 0, "")
		pdf.SetFont(r.Layout.FontFamily, "", r.Layout.FontSize)
		pdf.CellFormat(colW, rowH, f.tr(": "+kv[1]), "", 0, "L", false, 0, "")
	}
}

func (r *Renderer) renderTableHeader(f *frame, y, h float64) {
	pdf := f.pdf
	pdf.SetFillColor(f.accent[0], f.accent[1], f.accent[2])
	pdf.SetFont(r.Layout.FontFamily, "B", r.Layout.FontSize)
	pdf.SetXY(f.left, y)
	pdf.CellFormat(r.LabelWidthMM, h, "No.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(f.width-r.LabelWidthMM, h, "Description", "1", 0, "L", true, 0, "")
}

func (r *Renderer) renderRow(f *frame, row rows.Row, y, h float64) {
	pdf := f.pdf
	style := ""
	if row.IsGroupHeader() {
		style = "B"
	}
	pdf.SetFont(r.Layout.FontFamily, style, r.Layout.FontSize)

	pdf.Rect(f.left, y, r.LabelWidthMM, h, "D")
	pdf.Rect(f.left+r.LabelWidthMM, y, f.width-r.LabelWidthMM, h, "D")

	label := row.Order.String()
	if row.IsTail() {
		label = ""
	}
	pdf.SetXY(f.left, y)
	pdf.CellFormat(r.LabelWidthMM, r.Layout.LineHeight+2*r.Layout.CellPadding, label, "", 0, "C", false, 0, "")

	pdf.SetXY(f.left+r.LabelWidthMM, y+r.Layout.CellPadding)
	pdf.MultiCell(r.Layout.TextWidth+2*r.Layout.CellPadding, r.Layout.LineHeight, f.tr(row.Text), "", "L", false)
}

func (r *Renderer) renderAttendance(f *frame, y, h float64) {
	pdf := f.pdf
	a := f.doc.Attendance
	if a == nil {
		a = &rows.Attendance{}
	}
	lineH := min(h/5, r.Layout.LineHeight+2*r.Layout.CellPadding)

	pdf.SetFont(r.Layout.FontFamily, "B", r.Layout.FontSize)
	pdf.SetXY(f.left, y)
	pdf.CellFormat(f.width/2, lineH, "Attendance", "1", 1, "L", true, 0, "")
	pdf.SetFont(r.Layout.FontFamily, "", r.Layout.FontSize)
	for _, kv := range []struct {
		label string
		days  int
	}{{"Sick", a.Sick}, {"Permit", a.Permit}, {"Absent", a.Absent}, {"Present", a.Present}} {
		pdf.SetX(f.left)
		pdf.CellFormat(f.width/4, lineH, kv.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(f.width/4, lineH, strconv.Itoa(kv.days)+" days", "1", 1, "R", false, 0, "")
	}
}

func (r *Renderer) renderSignatures(f *frame, y, h float64) {
	pdf := f.pdf
	signers := f.doc.Signatories
	if len(signers) == 0 {
		signers = []rows.Signatory{{Role: "Homeroom Teacher"}, {Role: "Parent / Guardian"}}
	}
	colW := f.width / float64(len(signers))
	lineH := r.Layout.LineHeight

	for i, s := range signers {
		x := f.left + float64(i)*colW
		pdf.SetFont(r.Layout.FontFamily, "", r.Layout.FontSize)
		if s.Date != "" {
			pdf.SetXY(x, y)
			pdf.CellFormat(colW, lineH, f.tr(s.Date), "", 0, "C", false, 0, "")
		}
		pdf.SetXY(x, y+lineH)
		pdf.CellFormat(colW, lineH, f.tr(s.Role), "", 0, "C", false, 0, "")

		nameY := y + h - 2*lineH
		pdf.Line(x+colW*0.15, nameY, x+colW*0.85, nameY)
		pdf.SetFont(r.Layout.FontFamily, "B", r.Layout.FontSize)
		pdf.SetXY(x, nameY)
		pdf.CellFormat(colW, lineH, f.tr(s.Name), "", 0, "C", false, 0, "")
	}
}

func (r *Renderer) renderFooter(f *frame, p *pagination.Page, y, h float64) {
	pdf := f.pdf
	pdf.SetFont(r.Layout.FontFamily, "I", r.Layout.FontSize-2)
	pdf.SetXY(f.left, y)
	if name := f.doc.Student.Name; name != "" {
		pdf.CellFormat(f.width/2, h, f.tr(name), "", 0, "L", false, 0, "")
	}
	pdf.SetXY(f.left+f.width/2, y)
	pdf.CellFormat(f.width/2, h, fmt.Sprintf("Page %d of %d", p.Index+1, f.total), "", 0, "R", false, 0, "")
}

// parseColor parses #RRGGBB or #RGB, defaulting to white
func parseColor(value string) [3]int {
	if r, g, b, ok := parseHexColor(value); ok {
		return [3]int{r, g, b}
	}
	return [3]int{255, 255, 255}
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
