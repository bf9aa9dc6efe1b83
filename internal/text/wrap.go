package text

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Wrapper splits text into lines by display width. Wide runes (CJK, most
// emoji) take two columns, combining marks take none.
type Wrapper struct {
	// Columns is the number of display columns on one line
	Columns int
	cond    *runewidth.Condition
}

// NewWrapper creates a wrapper for lines of the given width in columns
func NewWrapper(columns int) *Wrapper {
	if columns < 1 {
		columns = 1
	}
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return &Wrapper{Columns: columns, cond: cond}
}

// Width returns the display width of s after NFC normalization
func (w *Wrapper) Width(s string) int {
	return w.cond.StringWidth(norm.NFC.String(s))
}

// Lines wraps s at word boundaries. Explicit newlines always break, and a
// word wider than a full line is cut at the column limit.
func (w *Wrapper) Lines(s string) []string {
	s = norm.NFC.String(s)
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := splitIntoWords(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var current strings.Builder
		currentWidth := 0
		// zero-width words still occupy the line
		hasContent := false
		for _, word := range words {
			ww := w.cond.StringWidth(word)
			if hasContent && currentWidth+1+ww <= w.Columns {
				current.WriteByte(' ')
				current.WriteString(word)
				currentWidth += 1 + ww
				continue
			}
			if hasContent {
				lines = append(lines, current.String())
				current.Reset()
				currentWidth = 0
			}
			for ww > w.Columns {
				head := w.cond.Truncate(word, w.Columns, "")
				if head == "" {
					// a single rune wider than the line
					r := []rune(word)
					head = string(r[0])
				}
				lines = append(lines, head)
				word = word[len(head):]
				ww = w.cond.StringWidth(word)
			}
			current.WriteString(word)
			currentWidth = ww
			hasContent = word != ""
		}
		if hasContent {
			lines = append(lines, current.String())
		}
	}
	return lines
}

// CountLines returns the number of wrapped lines, at least one
func (w *Wrapper) CountLines(s string) int {
	n := len(w.Lines(s))
	if n < 1 {
		return 1
	}
	return n
}

// splitIntoWords splits text into words
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}
