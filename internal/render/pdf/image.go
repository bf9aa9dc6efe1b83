package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gompdf/reportpager/internal/res"
)

// svgRasterSize is the longest side, in pixels, an SVG logo is rasterized to
const svgRasterSize = 512

// logoImage is an image ready for fpdf registration
type logoImage struct {
	data []byte
	// fpdf image type: PNG, JPG or GIF
	kind   string
	width  int
	height int
}

// prepareLogo converts a loaded image into a format fpdf can embed.
// PNG, JPEG and GIF pass through; SVG is rasterized and other formats are
// decoded and re-encoded as PNG.
func prepareLogo(r *res.Resource) (*logoImage, error) {
	if r.IsSVG() {
		img, err := rasterizeSVG(r.Data, svgRasterSize)
		if err != nil {
			return nil, err
		}
		return encodePNG(img)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(r.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", r.URL, err)
	}
	switch format {
	case "png":
		return &logoImage{data: r.Data, kind: "PNG", width: cfg.Width, height: cfg.Height}, nil
	case "jpeg":
		return &logoImage{data: r.Data, kind: "JPG", width: cfg.Width, height: cfg.Height}, nil
	case "gif":
		return &logoImage{data: r.Data, kind: "GIF", width: cfg.Width, height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(r.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image %s: %w", format, r.URL, err)
	}
	return encodePNG(img)
}

// rasterizeSVG renders SVG markup so that its longest side is size pixels
func rasterizeSVG(data []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = float64(size), float64(size)
	}
	scale := float64(size) / max(vw, vh)
	w, h := max(1, int(vw*scale)), max(1, int(vh*scale))

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

func encodePNG(img image.Image) (*logoImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	b := img.Bounds()
	return &logoImage{data: buf.Bytes(), kind: "PNG", width: b.Dx(), height: b.Dy()}, nil
}
