package tail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/pagination"
	"github.com/gompdf/reportpager/internal/rows"
)

// calc500 gives every page 500 units of available height
func calc500() *boundary.Calculator {
	return boundary.NewCalculator(boundary.Geometry{
		PageHeightMM: 600,
		PxPerMM:      1,
		TableHeader:  50,
		PageFooter:   50,
	})
}

func pageWithUsed(calc *boundary.Calculator, index int, used float64) *pagination.Page {
	return &pagination.Page{
		Index:    index,
		Rows:     []rows.Row{{Order: rows.Order{Major: index + 1}}},
		Heights:  []float64{used},
		Boundary: calc.Calculate(index, index == 0),
	}
}

func blocks(att, sig, gap float64) pagination.TailBlocks {
	return pagination.TailBlocks{Attendance: att, Signature: sig, Gap: gap}
}

func countFlags(pages []*pagination.Page) (att, sig int) {
	for _, p := range pages {
		if p.HasAttendance {
			att++
		}
		if p.HasSignature {
			sig++
		}
	}
	return att, sig
}

func TestPlaceBothFitOnLastPage(t *testing.T) {
	c := calc500()
	pages := []*pagination.Page{pageWithUsed(c, 0, 200)}

	out := Place(pages, blocks(150, 120, 10), c)
	require.Len(t, out, 1)
	assert.True(t, out[0].HasAttendance)
	assert.True(t, out[0].HasSignature)
}

func TestPlaceSignatureNeedsOwnPage(t *testing.T) {
	c := calc500()
	pages := []*pagination.Page{pageWithUsed(c, 0, 300)}

	// 200 remaining: attendance fits, 200-150-10 = 40 < 120
	out := Place(pages, blocks(150, 120, 10), c)
	require.Len(t, out, 2)
	assert.True(t, out[0].HasAttendance)
	assert.False(t, out[0].HasSignature)
	assert.True(t, out[1].HasSignature)
	assert.False(t, out[1].HasAttendance)
	assert.Equal(t, 1, out[1].Index)
	assert.Empty(t, out[1].Rows)
	assert.False(t, out[1].Boundary.First)
}

func TestPlaceAttendanceOnNewPageWithSignature(t *testing.T) {
	c := calc500()
	pages := []*pagination.Page{pageWithUsed(c, 0, 400)}

	// 100 remaining < 150: attendance moves, signature follows it
	out := Place(pages, blocks(150, 120, 10), c)
	require.Len(t, out, 2)
	assert.False(t, out[0].HasAttendance)
	assert.False(t, out[0].HasSignature)
	assert.True(t, out[1].HasAttendance)
	assert.True(t, out[1].HasSignature)
}

func TestPlaceAttendanceAndSignatureOnSeparateNewPages(t *testing.T) {
	c := calc500()
	pages := []*pagination.Page{pageWithUsed(c, 0, 400)}

	// new page: 500-400-10 = 90 < 120
	out := Place(pages, blocks(400, 120, 10), c)
	require.Len(t, out, 3)
	assert.True(t, out[1].HasAttendance)
	assert.False(t, out[1].HasSignature)
	assert.True(t, out[2].HasSignature)
	assert.Equal(t, 2, out[2].Index)
}

func TestPlaceExactFit(t *testing.T) {
	c := calc500()
	pages := []*pagination.Page{pageWithUsed(c, 0, 220)}

	// 280 remaining = 150 + 10 + 120
	out := Place(pages, blocks(150, 120, 10), c)
	require.Len(t, out, 1)
	assert.True(t, out[0].HasSignature)
}

func TestPlaceFlagsAreExclusive(t *testing.T) {
	c := calc500()
	for used := 0.0; used <= 500; used += 25 {
		pages := []*pagination.Page{pageWithUsed(c, 0, 100), pageWithUsed(c, 1, used)}
		out := Place(pages, blocks(150, 120, 12), c)
		att, sig := countFlags(out)
		assert.Equal(t, 1, att, "used=%v", used)
		assert.Equal(t, 1, sig, "used=%v", used)
		for i, p := range out {
			assert.Equal(t, i, p.Index)
		}
	}
}

func TestPlaceSingleBlock(t *testing.T) {
	c := calc500()
	single := pagination.TailBlocks{Signature: 120, SingleBlock: true}

	out := Place([]*pagination.Page{pageWithUsed(c, 0, 300)}, single, c)
	require.Len(t, out, 1)
	assert.True(t, out[0].HasFooter)
	assert.True(t, out[0].HasSignature)
	assert.False(t, out[0].HasAttendance)

	out = Place([]*pagination.Page{pageWithUsed(c, 0, 400)}, single, c)
	require.Len(t, out, 2)
	assert.False(t, out[0].HasFooter)
	assert.True(t, out[1].HasFooter)
}

func TestPlaceEmpty(t *testing.T) {
	assert.Empty(t, Place(nil, blocks(150, 120, 10), calc500()))
}

func TestRequiredHeight(t *testing.T) {
	b := blocks(150, 120, 10)
	assert.Equal(t, 280.0, RequiredHeight(&pagination.Page{HasAttendance: true, HasSignature: true}, b))
	assert.Equal(t, 150.0, RequiredHeight(&pagination.Page{HasAttendance: true}, b))
	assert.Equal(t, 120.0, RequiredHeight(&pagination.Page{HasSignature: true}, b))
	assert.Equal(t, 0.0, RequiredHeight(&pagination.Page{}, b))
}
