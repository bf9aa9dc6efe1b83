package reportpager

import (
	"go/format"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacadeIsFormatted(t *testing.T) {
	src, err := os.ReadFile("reportpager.go")
	require.NoError(t, err)
	formatted, err := format.Source(src)
	require.NoError(t, err)
	assert.Equal(t, string(formatted), string(src))
}

func TestFacadeConstructors(t *testing.T) {
	opts := DefaultOptions()
	opts.Author = "North Hill School"

	p := NewWithOptions(opts, WithProfile(ProfileCompetency))
	assert.Equal(t, "North Hill School", p.Options().Author)
	assert.Equal(t, ProfileCompetency, p.Options().Profile)

	rs := []Row{
		{Order: Order{Major: 1}, Kind: KindGroupHeader, Text: "Mathematics"},
		{Order: Order{Major: 1, Minor: 1}, Text: "Works accurately with fractions."},
	}
	result, err := New(WithPageSizeLetter()).Paginate(rs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPages())
}
