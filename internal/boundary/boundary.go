package boundary

import (
	"errors"
	"fmt"
)

// Standard paper heights in millimetres
const (
	A4HeightMM     = 297.0
	A4WidthMM      = 210.0
	LetterHeightMM = 279.4
	LetterWidthMM  = 215.9
)

// PxPerMM96 converts millimetres to CSS pixels at 96 dpi (96 / 25.4)
const PxPerMM96 = 96 / 25.4

// ErrInvalidGeometry is returned by Validate
var ErrInvalidGeometry = errors.New("invalid page geometry")

// Geometry describes the physical page and the fixed regions reserved on it.
// Page height and padding are in millimetres, the reserved bands are in
// layout units (the unit row heights are measured in).
type Geometry struct {
	PageHeightMM    float64 `yaml:"page_height_mm"`
	PaddingTopMM    float64 `yaml:"padding_top_mm"`
	PaddingBottomMM float64 `yaml:"padding_bottom_mm"`
	// PxPerMM converts millimetres to layout units
	PxPerMM float64 `yaml:"px_per_mm"`

	HeaderBlock   float64 `yaml:"header_block"`
	IdentityTable float64 `yaml:"identity_table"`
	TableHeader   float64 `yaml:"table_header"`
	PageFooter    float64 `yaml:"page_footer"`
}

// DefaultGeometry returns an A4 page with 10mm vertical padding at 96 dpi
func DefaultGeometry() Geometry {
	return Geometry{
		PageHeightMM:    A4HeightMM,
		PaddingTopMM:    10,
		PaddingBottomMM: 10,
		PxPerMM:         PxPerMM96,
		HeaderBlock:     120,
		IdentityTable:   110,
		TableHeader:     40,
		PageFooter:      30,
	}
}

// Validate reports geometry that cannot produce a positive content area
func (g Geometry) Validate() error {
	switch {
	case g.PageHeightMM <= 0:
		return fmt.Errorf("%w: page height %.2fmm", ErrInvalidGeometry, g.PageHeightMM)
	case g.PxPerMM <= 0:
		return fmt.Errorf("%w: conversion factor %.4f", ErrInvalidGeometry, g.PxPerMM)
	case g.PaddingTopMM < 0 || g.PaddingBottomMM < 0:
		return fmt.Errorf("%w: negative padding", ErrInvalidGeometry)
	case g.HeaderBlock < 0 || g.IdentityTable < 0 || g.TableHeader < 0 || g.PageFooter < 0:
		return fmt.Errorf("%w: negative reserved band", ErrInvalidGeometry)
	}
	if g.ContentAreaHeight() <= g.FirstPageReserved() {
		return fmt.Errorf("%w: first page reserves %.1f of %.1f units",
			ErrInvalidGeometry, g.FirstPageReserved(), g.ContentAreaHeight())
	}
	return nil
}

// ContentAreaHeight is the page height minus vertical padding, in layout units
func (g Geometry) ContentAreaHeight() float64 {
	return (g.PageHeightMM - g.PaddingTopMM - g.PaddingBottomMM) * g.PxPerMM
}

// FirstPageReserved is the space taken by the title block, identity table,
// table header band and footer band
func (g Geometry) FirstPageReserved() float64 {
	return g.HeaderBlock + g.IdentityTable + g.TableHeader + g.PageFooter
}

// ContinuationReserved is the space taken by the table header and footer bands
func (g Geometry) ContinuationReserved() float64 {
	return g.TableHeader + g.PageFooter
}

// Boundary is the usable region of one page. StartY, EndY and TriggerY place
// the page on a continuous vertical axis and are only used for diagnostics.
type Boundary struct {
	PageIndex       int
	First           bool
	AvailableHeight float64
	StartY          float64
	EndY            float64
	TriggerY        float64
}

// Calculator derives page boundaries from a geometry
type Calculator struct {
	geometry Geometry
}

// NewCalculator creates a boundary calculator
func NewCalculator(g Geometry) *Calculator {
	return &Calculator{geometry: g}
}

// Geometry returns the geometry the calculator was built with
func (c *Calculator) Geometry() Geometry {
	return c.geometry
}

// Calculate returns the boundary of the page at pageIndex
func (c *Calculator) Calculate(pageIndex int, isFirstPage bool) Boundary {
	g := c.geometry
	area := g.ContentAreaHeight()

	reserved := g.ContinuationReserved()
	if isFirstPage {
		reserved = g.FirstPageReserved()
	}

	pageTop := float64(pageIndex) * area
	startY := pageTop + reserved - g.PageFooter
	available := area - reserved

	return Boundary{
		PageIndex:       pageIndex,
		First:           isFirstPage,
		AvailableHeight: available,
		StartY:          startY,
		EndY:            startY + available,
		TriggerY:        pageTop + area,
	}
}

// First returns the boundary of the first page
func (c *Calculator) First() Boundary {
	return c.Calculate(0, true)
}

// Continuation returns the boundary of a page after the first
func (c *Calculator) Continuation(pageIndex int) Boundary {
	return c.Calculate(pageIndex, false)
}
