package pagination

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gompdf/reportpager/internal/rows"
)

// Class groups rows that share an overflow tolerance
type Class int

const (
	// ClassTabular is a fixed-shape table row
	ClassTabular Class = iota
	// ClassNarrative is a row dominated by free text of variable length
	ClassNarrative
	// ClassHeader is a group header
	ClassHeader
	// ClassTail is a trailing block
	ClassTail
)

// String returns a human-readable name of the class
func (c Class) String() string {
	switch c {
	case ClassTabular:
		return "tabular"
	case ClassNarrative:
		return "narrative"
	case ClassHeader:
		return "header"
	case ClassTail:
		return "tail"
	default:
		return "unknown"
	}
}

// ErrInvalidTolerance is returned for negative tolerances or buffers
var ErrInvalidTolerance = errors.New("invalid tolerance")

// ErrUnknownProfile is returned by ProfileByName
var ErrUnknownProfile = errors.New("unknown profile")

// Tolerance is how far a page may run past its available height before a
// row is pushed to the next page
type Tolerance struct {
	FirstPage    float64 `yaml:"first_page"`
	Continuation float64 `yaml:"continuation"`
}

// For returns the tolerance for the first page or a continuation page
func (t Tolerance) For(first bool) float64 {
	if first {
		return t.FirstPage
	}
	return t.Continuation
}

// Tolerances holds one tolerance per row class. TailBuffer is the trailing
// space a tail row must leave below itself.
type Tolerances struct {
	Tabular    Tolerance `yaml:"tabular"`
	Narrative  Tolerance `yaml:"narrative"`
	Header     Tolerance `yaml:"header"`
	Tail       Tolerance `yaml:"tail"`
	TailBuffer float64   `yaml:"tail_buffer"`
}

// DefaultTolerances are tuned against 10pt A4 output. The first page is
// looser because its reserved region varies the most.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Tabular:    Tolerance{FirstPage: 15, Continuation: 5},
		Narrative:  Tolerance{FirstPage: 40, Continuation: 20},
		Header:     Tolerance{FirstPage: 10, Continuation: 5},
		Tail:       Tolerance{FirstPage: 0, Continuation: 0},
		TailBuffer: 20,
	}
}

// For returns the tolerance of a class on the first or a continuation page
func (t Tolerances) For(c Class, first bool) float64 {
	switch c {
	case ClassNarrative:
		return t.Narrative.For(first)
	case ClassHeader:
		return t.Header.For(first)
	case ClassTail:
		return t.Tail.For(first)
	default:
		return t.Tabular.For(first)
	}
}

// Validate rejects negative values
func (t Tolerances) Validate() error {
	named := map[string]Tolerance{
		"tabular":   t.Tabular,
		"narrative": t.Narrative,
		"header":    t.Header,
		"tail":      t.Tail,
	}
	for name, tol := range named {
		if tol.FirstPage < 0 || tol.Continuation < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidTolerance, name)
		}
	}
	if t.TailBuffer < 0 {
		return fmt.Errorf("%w: tail buffer is negative", ErrInvalidTolerance)
	}
	return nil
}

// TailBlocks are the fixed trailing blocks placed after the last row
type TailBlocks struct {
	Attendance float64 `yaml:"attendance"`
	Signature  float64 `yaml:"signature"`
	// Gap separates the attendance block from the signature block
	Gap float64 `yaml:"gap"`
	// SingleBlock documents only carry a signature/footer block
	SingleBlock bool `yaml:"single_block"`
}

// Profile parameterizes the engine for one document family
type Profile struct {
	Name       string
	Tolerances Tolerances
	// NarrativeThreshold is the text length in runes above which a data row
	// counts as narrative
	NarrativeThreshold int
	// Classify overrides the default classification
	Classify func(rows.Row) Class
	// Orphanable reports rows that must not end a page; nil means group headers
	Orphanable func(rows.Row) bool
	Tail       TailBlocks
}

// Built-in profile names
const (
	ProfileReport     = "report"
	ProfileCompetency = "competency"
)

// ReportProfile is the subject report: subject rows grouped under headers,
// followed by attendance and signatures
func ReportProfile() Profile {
	return Profile{
		Name:               ProfileReport,
		Tolerances:         DefaultTolerances(),
		NarrativeThreshold: 120,
		Tail: TailBlocks{
			Attendance: 150,
			Signature:  120,
			Gap:        12,
		},
	}
}

// CompetencyProfile is the competency description block: long narrative
// rows and a single signature block
func CompetencyProfile() Profile {
	tol := DefaultTolerances()
	tol.Tabular = Tolerance{FirstPage: 20, Continuation: 10}
	return Profile{
		Name:               ProfileCompetency,
		Tolerances:         tol,
		NarrativeThreshold: 60,
		Tail: TailBlocks{
			Signature:   120,
			SingleBlock: true,
		},
	}
}

// ProfileByName returns a built-in profile
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", ProfileReport:
		return ReportProfile(), nil
	case ProfileCompetency:
		return CompetencyProfile(), nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// ClassOf returns the tolerance class of a row
func (p Profile) ClassOf(r rows.Row) Class {
	if p.Classify != nil {
		return p.Classify(r)
	}
	switch r.Kind {
	case rows.KindGroupHeader:
		return ClassHeader
	case rows.KindTail:
		return ClassTail
	}
	if p.NarrativeThreshold > 0 && utf8.RuneCountInString(r.Text) > p.NarrativeThreshold {
		return ClassNarrative
	}
	return ClassTabular
}

// IsOrphanable reports whether the row must travel with the row after it
func (p Profile) IsOrphanable(r rows.Row) bool {
	if p.Orphanable != nil {
		return p.Orphanable(r)
	}
	return r.IsGroupHeader()
}
