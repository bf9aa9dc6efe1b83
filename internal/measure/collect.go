package measure

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gompdf/reportpager/internal/rows"
)

// DefaultSettleDelay is how long Measure waits for a paint cycle by default
const DefaultSettleDelay = 50 * time.Millisecond

// Fragment is one rendered piece of a row as reported by a surface. A row
// may be rendered as several fragments sharing the same order tag.
type Fragment struct {
	OrderTag string
	Top      float64
	Bottom   float64
}

// Surface is a rendering layer that has laid out rows and can report where
// each rendered fragment landed.
type Surface interface {
	Fragments(ctx context.Context, expected []rows.Row) ([]Fragment, error)
}

// Settler yields until the rendering layer has settled
type Settler func(ctx context.Context) error

// Settle returns a Settler that waits for d
func Settle(d time.Duration) Settler {
	return func(ctx context.Context) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// NoSettle is for surfaces whose geometry is final as soon as they return
func NoSettle(context.Context) error { return nil }

// Measure waits for the surface to settle, reads its fragments and collects
// them into measurements for the expected rows.
func Measure(ctx context.Context, s Surface, expected []rows.Row, settle Settler) ([]rows.Measurement, error) {
	if settle != nil {
		if err := settle(ctx); err != nil {
			return nil, fmt.Errorf("failed waiting for render: %w", err)
		}
	}
	frags, err := s.Fragments(ctx, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered fragments: %w", err)
	}
	return Collect(frags, expected), nil
}

// Collect turns fragments into one measurement per row. Fragments sharing an
// order tag are summed into a single measurement; fragments whose tag does not
// parse or matches no expected row are skipped. The result is sorted by order.
func Collect(frags []Fragment, expected []rows.Row) []rows.Measurement {
	byOrder := make(map[rows.Order]rows.Row, len(expected))
	for _, r := range expected {
		byOrder[r.Order] = r
	}

	index := make(map[rows.Order]int, len(frags))
	var out []rows.Measurement
	for _, f := range frags {
		order, err := rows.ParseOrder(f.OrderTag)
		if err != nil {
			continue
		}
		row, ok := byOrder[order]
		if !ok {
			continue
		}
		h := f.Bottom - f.Top
		if h < 0 {
			h = 0
		}

		if i, seen := index[order]; seen {
			m := &out[i]
			m.Height += h
			m.Top = min(m.Top, f.Top)
			m.Bottom = max(m.Bottom, f.Bottom)
			continue
		}
		index[order] = len(out)
		out = append(out, rows.Measurement{
			Row:    row,
			Height: h,
			Top:    f.Top,
			Bottom: f.Bottom,
			Order:  order,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order.Less(out[j].Order)
	})
	return out
}
