package measure

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gompdf/reportpager/internal/parser/css"
	"github.com/gompdf/reportpager/internal/parser/html"
	"github.com/gompdf/reportpager/internal/rows"
)

// Attributes a rendering layer writes onto each row element of a snapshot
const (
	AttrOrder  = "data-order"
	AttrTop    = "data-top"
	AttrBottom = "data-bottom"
	AttrHeight = "data-height"
)

// SnapshotSurface reads fragment geometry from an HTML snapshot of a rendered
// report. Every element carrying data-order is a fragment; its extent comes
// from data-top plus data-bottom or data-height, falling back to the top and
// height of an inline style.
type SnapshotSurface struct {
	open   func(ctx context.Context) (io.ReadCloser, error)
	parser *html.Parser
}

// NewSnapshotSurface reads the snapshot from open on every Fragments call
func NewSnapshotSurface(open func(ctx context.Context) (io.ReadCloser, error)) *SnapshotSurface {
	return &SnapshotSurface{open: open, parser: html.NewParser()}
}

// NewSnapshotString serves a fixed snapshot
func NewSnapshotString(markup string) *SnapshotSurface {
	return NewSnapshotSurface(func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(markup)), nil
	})
}

// Fragments implements Surface. Elements whose geometry does not parse are
// skipped; the order tag itself is checked later by Collect.
func (s *SnapshotSurface) Fragments(ctx context.Context, _ []rows.Row) ([]Fragment, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer rc.Close()

	doc, err := s.parser.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	var frags []Fragment
	for _, el := range doc.ElementsWithAttr(AttrOrder) {
		tag, _ := el.Attr(AttrOrder)
		var style css.Declarations
		if v, ok := el.Attr("style"); ok {
			style = css.ParseDeclarations(v)
		}

		top, ok := floatAttr(el, AttrTop)
		if !ok {
			if top, ok = style.Length("top"); !ok {
				continue
			}
		}
		bottom, ok := floatAttr(el, AttrBottom)
		if !ok {
			h, hok := floatAttr(el, AttrHeight)
			if !hok {
				if h, hok = style.Length("height"); !hok {
					continue
				}
			}
			bottom = top + h
		}
		frags = append(frags, Fragment{OrderTag: tag, Top: top, Bottom: bottom})
	}
	return frags, nil
}

// floatAttr parses a numeric attribute, accepting an optional px suffix
func floatAttr(el *html.Element, key string) (float64, bool) {
	v, ok := el.Attr(key)
	if !ok {
		return 0, false
	}
	return css.ParseLength(v)
}
