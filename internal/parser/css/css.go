// Package css parses inline style declarations such as those written by a
// rendering layer onto absolutely positioned snapshot elements.
package css

import (
	"strconv"
	"strings"
)

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Declarations is a parsed style attribute in source order
type Declarations []Declaration

// ParseDeclarations parses a declaration block like "top: 4px; height: 18px".
// Malformed declarations are skipped.
func ParseDeclarations(block string) Declarations {
	block = removeComments(block)
	parts := strings.Split(block, ";")
	out := make(Declarations, 0, len(parts))

	for _, part := range parts {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}

		important := false
		if v, found := strings.CutSuffix(value, "!important"); found {
			important = true
			value = strings.TrimSpace(v)
		}
		out = append(out, Declaration{Property: prop, Value: value, Important: important})
	}
	return out
}

// Get returns the winning value of a property: the last !important
// declaration, otherwise the last declaration
func (d Declarations) Get(prop string) (string, bool) {
	prop = strings.ToLower(prop)
	var (
		value     string
		found     bool
		important bool
	)
	for _, decl := range d {
		if decl.Property != prop {
			continue
		}
		if important && !decl.Important {
			continue
		}
		value, found, important = decl.Value, true, decl.Important
	}
	return value, found
}

// Length returns a property as a pixel length. Unitless numbers are pixels;
// other units are not resolved.
func (d Declarations) Length(prop string) (float64, bool) {
	v, ok := d.Get(prop)
	if !ok {
		return 0, false
	}
	return ParseLength(v)
}

// ParseLength parses a px or unitless length
func ParseLength(v string) (float64, bool) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// removeComments removes CSS comments; an unterminated comment swallows the rest
func removeComments(content string) string {
	var result strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			result.WriteString(content)
			break
		}
		result.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			break
		}
		content = content[start+2+end+2:]
	}
	return result.String()
}
