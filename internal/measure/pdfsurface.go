package measure

import (
	"context"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/reportpager/internal/rows"
)

// PDFLayout describes the table a PDFSurface lays rows into. Lengths are in
// millimetres.
type PDFLayout struct {
	FontFamily  string  `yaml:"font_family"`
	FontSize    float64 `yaml:"font_size"`
	LineHeight  float64 `yaml:"line_height_mm"`
	TextWidth   float64 `yaml:"text_width_mm"`
	CellPadding float64 `yaml:"cell_padding_mm"`
	// PxPerMM converts the laid out millimetres into layout units
	PxPerMM float64 `yaml:"px_per_mm"`
	// TailHeights fixes the height of tail rows by key, in layout units
	TailHeights map[rows.TailKey]float64 `yaml:"tail_heights,omitempty"`
}

// DefaultPDFLayout is a 10pt Helvetica description column on A4 portrait
func DefaultPDFLayout() PDFLayout {
	return PDFLayout{
		FontFamily:  "Helvetica",
		FontSize:    10,
		LineHeight:  4.8,
		TextWidth:   120,
		CellPadding: 1.3,
		PxPerMM:     96 / 25.4,
	}
}

// PDFSurface lays rows out offscreen with fpdf font metrics and reports the
// resulting fragments. Group headers produce one fragment per wrapped line.
// Each call uses its own fpdf document, so a surface can serve concurrent runs.
type PDFSurface struct {
	layout PDFLayout
}

// NewPDFSurface creates an offscreen surface
func NewPDFSurface(l PDFLayout) *PDFSurface {
	return &PDFSurface{layout: l}
}

// Fragments implements Surface
func (s *PDFSurface) Fragments(ctx context.Context, expected []rows.Row) ([]Fragment, error) {
	l := s.layout
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont(l.FontFamily, "", l.FontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	scale := l.PxPerMM
	y := 0.0
	frags := make([]Fragment, 0, len(expected))

	for i, row := range expected {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tag := row.Order.String()

		if row.IsTail() {
			if h, ok := l.TailHeights[row.TailKey]; ok && h > 0 {
				frags = append(frags, Fragment{OrderTag: tag, Top: y, Bottom: y + h})
				y += h
				continue
			}
		}

		style := ""
		if row.IsGroupHeader() {
			style = "B"
		}
		pdf.SetFont(l.FontFamily, style, l.FontSize)
		lines := pdf.SplitText(singleByte(tr(normalizeSpace(row.Text))), l.TextWidth)
		if len(lines) == 0 {
			lines = []string{""}
		}

		pad := 2 * l.CellPadding * scale
		lineH := l.LineHeight * scale

		if row.IsGroupHeader() {
			for j := range lines {
				h := lineH
				if j == 0 {
					h += pad
				}
				frags = append(frags, Fragment{OrderTag: tag, Top: y, Bottom: y + h})
				y += h
			}
			continue
		}

		h := pad + float64(len(lines))*lineH
		frags = append(frags, Fragment{OrderTag: tag, Top: y, Bottom: y + h})
		y += h
	}
	return frags, pdf.Error()
}

// singleByte widens each byte of a code page string to its own rune, the
// form SplitText indexes core font widths with
func singleByte(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = rune(s[i])
	}
	return string(r)
}

// normalizeSpace collapses runs of whitespace except newlines
func normalizeSpace(s string) string {
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(p), " ")
	}
	return strings.Join(parts, "\n")
}
