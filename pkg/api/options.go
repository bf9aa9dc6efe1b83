package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gompdf/reportpager/internal/boundary"
	"github.com/gompdf/reportpager/internal/measure"
	"github.com/gompdf/reportpager/internal/pagination"
)

// Errors returned by Options.Validate
var (
	ErrInvalidGeometry  = boundary.ErrInvalidGeometry
	ErrInvalidTolerance = pagination.ErrInvalidTolerance
	ErrUnknownProfile   = pagination.ErrUnknownProfile
	ErrInvalidEstimator = errors.New("invalid estimator metrics")
	ErrInvalidTail      = errors.New("invalid tail blocks")
)

// Options represents configuration options for the paginator
type Options struct {
	// Page width is only used when exporting; height drives pagination
	PageWidthMM float64 `yaml:"page_width_mm"`
	// Page geometry and reserved bands
	Geometry boundary.Geometry `yaml:"geometry"`

	// Profile selects the document family: "report" or "competency"
	Profile            string                `yaml:"profile"`
	Tolerances         pagination.Tolerances `yaml:"tolerances"`
	TailBlocks         pagination.TailBlocks `yaml:"tail_blocks"`
	NarrativeThreshold int                   `yaml:"narrative_threshold"`

	// Height sources
	Estimator   measure.Metrics   `yaml:"estimator"`
	PDFLayout   measure.PDFLayout `yaml:"pdf_layout"`
	SettleDelay time.Duration     `yaml:"settle_delay"`

	Debug bool `yaml:"debug"`
	// Logger overrides the package logger for this paginator
	Logger *slog.Logger `yaml:"-"`

	// Document metadata
	Author  string `yaml:"author"`
	Subject string `yaml:"subject"`
}

// Option is a function that modifies Options
type Option func(*Options)

// Standard page sizes in millimetres
const (
	PageSizeA4WidthMM      = boundary.A4WidthMM
	PageSizeA4HeightMM     = boundary.A4HeightMM
	PageSizeLetterWidthMM  = boundary.LetterWidthMM
	PageSizeLetterHeightMM = boundary.LetterHeightMM
)

// Profile names
const (
	ProfileReport     = pagination.ProfileReport
	ProfileCompetency = pagination.ProfileCompetency
)

// DefaultOptions returns the default options: A4 portrait with the report profile
func DefaultOptions() Options {
	return optionsFor(pagination.ReportProfile())
}

// optionsFor returns defaults with the tolerances and blocks of a profile
func optionsFor(p pagination.Profile) Options {
	return Options{
		PageWidthMM:        PageSizeA4WidthMM,
		Geometry:           boundary.DefaultGeometry(),
		Profile:            p.Name,
		Tolerances:         p.Tolerances,
		TailBlocks:         p.Tail,
		NarrativeThreshold: p.NarrativeThreshold,
		Estimator:          measure.DefaultMetrics(),
		PDFLayout:          measure.DefaultPDFLayout(),
		SettleDelay:        measure.DefaultSettleDelay,
	}
}

// Validate reports options the engine cannot work with
func (o Options) Validate() error {
	if err := o.Geometry.Validate(); err != nil {
		return err
	}
	if _, err := pagination.ProfileByName(o.Profile); err != nil {
		return err
	}
	if err := o.Tolerances.Validate(); err != nil {
		return err
	}
	if o.TailBlocks.Attendance < 0 || o.TailBlocks.Signature < 0 || o.TailBlocks.Gap < 0 {
		return fmt.Errorf("%w: negative block height", ErrInvalidTail)
	}
	if o.Estimator.LineHeight <= 0 || o.Estimator.Columns <= 0 {
		return fmt.Errorf("%w: line height %.2f, columns %d",
			ErrInvalidEstimator, o.Estimator.LineHeight, o.Estimator.Columns)
	}
	return nil
}

// profile builds the engine profile from the options
func (o Options) profile() (pagination.Profile, error) {
	p, err := pagination.ProfileByName(o.Profile)
	if err != nil {
		return p, err
	}
	p.Tolerances = o.Tolerances
	p.Tail = o.TailBlocks
	p.NarrativeThreshold = o.NarrativeThreshold
	return p, nil
}

// WithPageSize sets the page size in millimetres
func WithPageSize(widthMM, heightMM float64) Option {
	return func(o *Options) {
		o.PageWidthMM = widthMM
		o.Geometry.PageHeightMM = heightMM
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4WidthMM, PageSizeA4HeightMM)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidthMM, PageSizeLetterHeightMM)
}

// WithPadding sets the top and bottom page padding in millimetres
func WithPadding(topMM, bottomMM float64) Option {
	return func(o *Options) {
		o.Geometry.PaddingTopMM = topMM
		o.Geometry.PaddingBottomMM = bottomMM
	}
}

// WithReservedBands sets the heights of the fixed page regions
func WithReservedBands(header, identity, tableHeader, footer float64) Option {
	return func(o *Options) {
		o.Geometry.HeaderBlock = header
		o.Geometry.IdentityTable = identity
		o.Geometry.TableHeader = tableHeader
		o.Geometry.PageFooter = footer
	}
}

// WithProfile selects a built-in profile and resets tolerances and trailing
// blocks to that profile's values
func WithProfile(name string) Option {
	return func(o *Options) {
		o.Profile = name
		if p, err := pagination.ProfileByName(name); err == nil {
			o.Tolerances = p.Tolerances
			o.TailBlocks = p.Tail
			o.NarrativeThreshold = p.NarrativeThreshold
		}
	}
}

// WithTolerances sets the overflow tolerances
func WithTolerances(t pagination.Tolerances) Option {
	return func(o *Options) {
		o.Tolerances = t
	}
}

// WithTailBlocks sets the trailing block heights
func WithTailBlocks(b pagination.TailBlocks) Option {
	return func(o *Options) {
		o.TailBlocks = b
	}
}

// WithEstimator sets the estimator metrics
func WithEstimator(m measure.Metrics) Option {
	return func(o *Options) {
		o.Estimator = m
	}
}

// WithSettleDelay sets how long measuring waits for the renderer
func WithSettleDelay(d time.Duration) Option {
	return func(o *Options) {
		o.SettleDelay = d
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// ParseOptions decodes YAML options over the defaults of the profile the
// document names. Keys that are absent keep their default value.
func ParseOptions(data []byte) (Options, error) {
	var head struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Options{}, fmt.Errorf("failed to parse options: %w", err)
	}
	p, err := pagination.ProfileByName(head.Profile)
	if err != nil {
		return Options{}, err
	}

	opts := optionsFor(p)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("failed to parse options: %w", err)
	}
	return opts, opts.Validate()
}

// LoadOptionsFile reads options from a YAML file
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read options file: %w", err)
	}
	return ParseOptions(data)
}
