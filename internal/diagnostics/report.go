// Package diagnostics classifies paginated pages for developer-facing
// warnings. Nothing here changes a pagination result.
package diagnostics

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/gompdf/reportpager/internal/pagination"
	"github.com/gompdf/reportpager/internal/tail"
)

// Status is how a page's content relates to its capacity
type Status int

const (
	// StatusFits means the content is within the available height
	StatusFits Status = iota
	// StatusTight means the content is over capacity but within tolerance
	StatusTight
	// StatusOverflow means the content is over capacity beyond tolerance
	StatusOverflow
)

// String returns a human-readable representation of the status
func (s Status) String() string {
	switch s {
	case StatusFits:
		return "fits"
	case StatusTight:
		return "tight"
	case StatusOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// PageReport is the classification of one page
type PageReport struct {
	Index     int
	Rows      int
	Used      float64
	Available float64
	Tolerance float64
	Excess    float64
	Status    Status

	HasAttendance bool
	HasSignature  bool
}

// Classify reports on every page. Used height includes the trailing blocks
// flagged on the page; tolerance is the loosest among the page's row classes.
func Classify(pages []*pagination.Page, profile pagination.Profile) []PageReport {
	reports := make([]PageReport, 0, len(pages))
	for _, p := range pages {
		used := p.Used() + tail.RequiredHeight(p, profile.Tail)
		available := p.Boundary.AvailableHeight

		tol := 0.0
		if len(p.Rows) == 0 {
			tol = profile.Tolerances.For(pagination.ClassTail, p.Boundary.First)
		}
		for _, r := range p.Rows {
			tol = max(tol, profile.Tolerances.For(profile.ClassOf(r), p.Boundary.First))
		}

		status := StatusFits
		switch {
		case used > available+tol:
			status = StatusOverflow
		case used > available:
			status = StatusTight
		}

		reports = append(reports, PageReport{
			Index:         p.Index,
			Rows:          len(p.Rows),
			Used:          used,
			Available:     available,
			Tolerance:     tol,
			Excess:        max(0, used-available),
			Status:        status,
			HasAttendance: p.HasAttendance,
			HasSignature:  p.HasSignature,
		})
	}
	return reports
}

// Report logs tight pages at info level and overflowing pages as warnings
func Report(logger *slog.Logger, reports []PageReport) {
	for _, r := range reports {
		attrs := []any{
			slog.Int("page", r.Index),
			slog.Int("rows", r.Rows),
			slog.String("used", round(r.Used)),
			slog.String("available", round(r.Available)),
		}
		switch r.Status {
		case StatusOverflow:
			logger.Warn("page overflows tolerance", append(attrs,
				slog.String("excess", round(r.Excess)),
				slog.String("tolerance", round(r.Tolerance)))...)
		case StatusTight:
			logger.Info("page is tight", append(attrs, slog.String("excess", round(r.Excess)))...)
		default:
			logger.Debug("page fits", attrs...)
		}
	}
}

// Summary renders the reports as an aligned text table
func Summary(reports []PageReport) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAGE\tROWS\tUSED\tAVAILABLE\tSTATUS\tBLOCKS")
	for _, r := range reports {
		var blocks []string
		if r.HasAttendance {
			blocks = append(blocks, "attendance")
		}
		if r.HasSignature {
			blocks = append(blocks, "signature")
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			r.Index+1, r.Rows, round(r.Used), round(r.Available), r.Status, strings.Join(blocks, ","))
	}
	w.Flush()
	return b.String()
}

// round formats a height for humans; the engine never rounds
func round(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
