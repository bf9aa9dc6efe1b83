// Package tail places the fixed trailing blocks (attendance summary and
// signatures) after the main rows have been paginated.
package tail

import (
	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/pagination"
)

// Place decides where the trailing blocks go. The last page takes them when
// its remaining height allows; otherwise one or two pages are appended. Rows
// are never moved. An empty page list is returned unchanged.
func Place(pages []*pagination.Page, blocks pagination.TailBlocks, calc *boundary.Calculator) []*pagination.Page {
	if len(pages) == 0 {
		return pages
	}
	if blocks.SingleBlock {
		return placeSingle(pages, blocks, calc)
	}

	last := pages[len(pages)-1]
	remaining := last.Boundary.AvailableHeight - last.Used()

	if remaining >= blocks.Attendance {
		last.HasAttendance = true
		remaining -= blocks.Attendance + blocks.Gap
		if remaining >= blocks.Signature {
			last.HasSignature = true
			return pages
		}
		sig := appendPage(&pages, calc)
		sig.HasSignature = true
		return pages
	}

	att := appendPage(&pages, calc)
	att.HasAttendance = true
	remaining = att.Boundary.AvailableHeight - blocks.Attendance - blocks.Gap
	if remaining >= blocks.Signature {
		att.HasSignature = true
		return pages
	}
	sig := appendPage(&pages, calc)
	sig.HasSignature = true
	return pages
}

// placeSingle handles documents whose only trailing block is the signature footer
func placeSingle(pages []*pagination.Page, blocks pagination.TailBlocks, calc *boundary.Calculator) []*pagination.Page {
	last := pages[len(pages)-1]
	if last.Boundary.AvailableHeight-last.Used() >= blocks.Signature {
		last.HasFooter = true
		last.HasSignature = true
		return pages
	}
	p := appendPage(&pages, calc)
	p.HasFooter = true
	p.HasSignature = true
	return pages
}

// appendPage adds an empty continuation page and returns it
func appendPage(pages *[]*pagination.Page, calc *boundary.Calculator) *pagination.Page {
	index := len(*pages)
	p := &pagination.Page{
		Index:    index,
		Boundary: calc.Calculate(index, index == 0),
	}
	*pages = append(*pages, p)
	return p
}

// RequiredHeight returns the height a page needs to carry the flagged blocks
func RequiredHeight(p *pagination.Page, blocks pagination.TailBlocks) float64 {
	h := 0.0
	if p.HasAttendance {
		h += blocks.Attendance
	}
	if p.HasSignature {
		if p.HasAttendance {
			h += blocks.Gap
		}
		h += blocks.Signature
	}
	return h
}
