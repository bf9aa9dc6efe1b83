package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/measure"
	"github.com/gompdf/reportpager/internal/pagination"
	"github.com/gompdf/reportpager/internal/res"
	"github.com/gompdf/reportpager/internal/rows"
)

const crestSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10">
<rect x="0" y="0" width="20" height="10" fill="#336699"/>
</svg>`

func samplePages(calc *boundary.Calculator) []*pagination.Page {
	first := &pagination.Page{
		Index:    0,
		Boundary: calc.First(),
		Rows: []rows.Row{
			{Order: rows.Order{Major: 1}, Kind: rows.KindGroupHeader, Text: "Religious Education"},
			{Order: rows.Order{Major: 1, Minor: 1}, Text: "Ada shows a steady grasp of the core material – café discussions included."},
		},
		Heights: []float64{40, 60},
	}
	second := &pagination.Page{
		Index:         1,
		Boundary:      calc.Continuation(1),
		Rows:          []rows.Row{{Order: rows.Order{Major: 2}, Text: "Mathematics"}},
		Heights:       []float64{40},
		HasAttendance: true,
		HasSignature:  true,
	}
	return []*pagination.Page{first, second}
}

func sampleDoc() *rows.Document {
	return &rows.Document{
		Title:       "Semester Report",
		Student:     rows.Student{Name: "Ada Lovelace", ID: "S-001", Class: "7B", Term: "1", School: "North School"},
		Attendance:  &rows.Attendance{Sick: 1, Permit: 2, Present: 90},
		Signatories: []rows.Signatory{{Role: "Teacher", Name: "G. Boole", Date: "2024-06-01"}},
	}
}

func renderOptions() RenderOptions {
	b := pagination.ReportProfile().Tail
	return RenderOptions{
		PageWidthMM: boundary.A4WidthMM,
		Geometry:    boundary.DefaultGeometry(),
		Blocks:      b,
		Creator:     "reportpager",
	}
}

func TestRenderToFile(t *testing.T) {
	calc := boundary.NewCalculator(boundary.DefaultGeometry())
	r := NewRenderer(nil, measure.DefaultPDFLayout())

	out := filepath.Join(t.TempDir(), "nested", "report.pdf")
	err := r.Render(context.Background(), samplePages(calc), sampleDoc(), out, renderOptions())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestWriteWithSVGLogo(t *testing.T) {
	calc := boundary.NewCalculator(boundary.DefaultGeometry())
	r := NewRenderer(res.NewLoader(""), measure.DefaultPDFLayout())

	opts := renderOptions()
	opts.Logo = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(crestSVG))

	var buf bytes.Buffer
	require.NoError(t, r.Write(context.Background(), samplePages(calc), sampleDoc(), &buf, opts))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "/Subtype /Image")
}

func TestWriteSkipsMissingLogo(t *testing.T) {
	calc := boundary.NewCalculator(boundary.DefaultGeometry())
	r := NewRenderer(nil, measure.DefaultPDFLayout())

	opts := renderOptions()
	opts.Logo = filepath.Join(t.TempDir(), "missing.png")

	var buf bytes.Buffer
	require.NoError(t, r.Write(context.Background(), samplePages(calc), sampleDoc(), &buf, opts))
	assert.NotContains(t, buf.String(), "/Subtype /Image")
}

func TestWriteRejectsNarrowPage(t *testing.T) {
	r := NewRenderer(nil, measure.DefaultPDFLayout())
	opts := renderOptions()
	opts.PageWidthMM = 40

	err := r.Write(context.Background(), nil, nil, &bytes.Buffer{}, opts)
	assert.Error(t, err)
}

func TestWriteCanceled(t *testing.T) {
	calc := boundary.NewCalculator(boundary.DefaultGeometry())
	r := NewRenderer(nil, measure.DefaultPDFLayout())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Write(ctx, samplePages(calc), sampleDoc(), &bytes.Buffer{}, renderOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrepareLogo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	logo, err := prepareLogo(&res.Resource{URL: "crest.png", Data: buf.Bytes(), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "PNG", logo.kind)
	assert.Equal(t, 4, logo.width)
	assert.Equal(t, 2, logo.height)

	logo, err = prepareLogo(&res.Resource{URL: "crest.svg", Data: []byte(crestSVG), MimeType: "image/svg+xml"})
	require.NoError(t, err)
	assert.Equal(t, "PNG", logo.kind)
	assert.Equal(t, svgRasterSize, logo.width)
	assert.Equal(t, svgRasterSize/2, logo.height)

	_, err = prepareLogo(&res.Resource{URL: "crest.bin", Data: []byte("nope")})
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, [3]int{0x1f, 0x4e, 0x79}, parseColor("#1f4e79"))
	assert.Equal(t, [3]int{0xff, 0x00, 0xcc}, parseColor("#f0c"))
	assert.Equal(t, [3]int{255, 255, 255}, parseColor("navy"))
}
