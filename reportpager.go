package reportpager

import (
	"github.com/gompdf/reportpager/internal/measure"
	"github.com/gompdf/reportpager/internal/pagination"
	"github.com/gompdf/reportpager/internal/rows"
	"github.com/gompdf/reportpager/pkg/api"
)

type Paginator = api.Paginator
type Options = api.Options
type Option = api.Option
type Result = api.Result

type Row = rows.Row
type Order = rows.Order
type Kind = rows.Kind
type Document = rows.Document
type Student = rows.Student
type Attendance = rows.Attendance
type Signatory = rows.Signatory

type Tolerance = pagination.Tolerance
type Tolerances = pagination.Tolerances
type TailBlocks = pagination.TailBlocks
type Page = pagination.Page

type Metrics = measure.Metrics
type Surface = measure.Surface
type Fragment = measure.Fragment
type HeightProvider = measure.HeightProvider
type HeightFunc = measure.HeightFunc

func New(opts ...Option) *Paginator { return api.New(opts...) }
func DefaultOptions() Options       { return api.DefaultOptions() }

func NewWithOptions(options Options, opts ...Option) *Paginator {
	return api.NewWithOptions(options, opts...)
}

var (
	LoadOptionsFile = api.LoadOptionsFile
	ParseOptions    = api.ParseOptions
	ParseDocument   = rows.ParseDocument
	ParseOrder      = rows.ParseOrder

	DefaultTolerances = pagination.DefaultTolerances
	DefaultMetrics    = measure.DefaultMetrics
	// NewSnapshotString reads fragments from an HTML snapshot carrying
	// data-order, data-top and data-bottom attributes
	NewSnapshotString = measure.NewSnapshotString

	WithPageSize       = api.WithPageSize
	WithPageSizeA4     = api.WithPageSizeA4
	WithPageSizeLetter = api.WithPageSizeLetter
	WithPadding        = api.WithPadding
	WithReservedBands  = api.WithReservedBands
	WithProfile        = api.WithProfile
	WithTolerances     = api.WithTolerances
	WithTailBlocks     = api.WithTailBlocks
	WithEstimator      = api.WithEstimator
	WithSettleDelay    = api.WithSettleDelay
	WithDebug          = api.WithDebug
	WithLogger         = api.WithLogger
	WithAuthor         = api.WithAuthor
)

const (
	KindData        = rows.KindData
	KindGroupHeader = rows.KindGroupHeader
	KindTail        = rows.KindTail

	ProfileReport     = api.ProfileReport
	ProfileCompetency = api.ProfileCompetency

	PageSizeA4WidthMM      = api.PageSizeA4WidthMM
	PageSizeA4HeightMM     = api.PageSizeA4HeightMM
	PageSizeLetterWidthMM  = api.PageSizeLetterWidthMM
	PageSizeLetterHeightMM = api.PageSizeLetterHeightMM
)
