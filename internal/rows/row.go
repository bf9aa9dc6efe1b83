package rows

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies what a printable row represents
type Kind int

const (
	// KindData is a plain table row
	KindData Kind = iota
	// KindGroupHeader introduces the rows that follow it
	KindGroupHeader
	// KindTail is a non-tabular trailing block such as commentary
	KindTail
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindGroupHeader:
		return "group-header"
	case KindTail:
		return "tail"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	s := k.String()
	if s == "unknown" {
		return nil, fmt.Errorf("unknown row kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "data":
		*k = KindData
	case "group-header", "header", "group":
		*k = KindGroupHeader
	case "tail":
		*k = KindTail
	default:
		return fmt.Errorf("unknown row kind %q", string(b))
	}
	return nil
}

// TailKey names the trailing block a tail row stands for
type TailKey string

const (
	TailAttendance TailKey = "attendance"
	TailSignature  TailKey = "signature"
	TailNarrative  TailKey = "narrative"
	TailFooter     TailKey = "footer"
)

// ErrInvalidOrder is returned when an order tag cannot be parsed
var ErrInvalidOrder = errors.New("invalid order")

// Order is the stable sort key of a row. Minor carries the sub-order of
// grouped variants and is zero otherwise.
type Order struct {
	Major int
	Minor int
}

// ParseOrder parses tags of the form "12" or "12.3"
func ParseOrder(s string) (Order, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Order{}, fmt.Errorf("%w: empty tag", ErrInvalidOrder)
	}
	major, minor, hasMinor := strings.Cut(s, ".")
	ma, err := parseDigits(major)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
	if !hasMinor {
		return Order{Major: ma}, nil
	}
	mi, err := parseDigits(minor)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
	return Order{Major: ma, Minor: mi}, nil
}

// parseDigits accepts only unsigned decimal digits
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// Less reports whether o sorts before other
func (o Order) Less(other Order) bool {
	if o.Major != other.Major {
		return o.Major < other.Major
	}
	return o.Minor < other.Minor
}

// String returns the tag form of the order
func (o Order) String() string {
	if o.Minor == 0 {
		return strconv.Itoa(o.Major)
	}
	return strconv.Itoa(o.Major) + "." + strconv.Itoa(o.Minor)
}

// MarshalText implements encoding.TextMarshaler
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Order) UnmarshalText(b []byte) error {
	parsed, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Row is one printable unit of a report
type Row struct {
	Order   Order   `yaml:"order" json:"order"`
	Kind    Kind    `yaml:"kind" json:"kind"`
	TailKey TailKey `yaml:"tail,omitempty" json:"tail,omitempty"`
	// Text is the content used to estimate the row's height
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
	// Lines overrides the wrapped line count when positive
	Lines int `yaml:"lines,omitempty" json:"lines,omitempty"`
}

// IsGroupHeader reports whether the row introduces a group
func (r Row) IsGroupHeader() bool {
	return r.Kind == KindGroupHeader
}

// IsTail reports whether the row is a trailing block
func (r Row) IsTail() bool {
	return r.Kind == KindTail
}

// Measurement is the rendered geometry of one row
type Measurement struct {
	Row    Row
	Height float64
	Top    float64
	Bottom float64
	Order  Order
}

// ErrOutOfOrder is returned by Validate when orders are not strictly increasing
var ErrOutOfOrder = errors.New("rows out of order")

// Validate checks that row orders are strictly increasing
func Validate(rs []Row) error {
	for i := 1; i < len(rs); i++ {
		if !rs[i-1].Order.Less(rs[i].Order) {
			return fmt.Errorf("%w: %s does not follow %s at position %d",
				ErrOutOfOrder, rs[i].Order, rs[i-1].Order, i)
		}
	}
	return nil
}
