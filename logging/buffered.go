package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// BufferedHandler is a slog.Handler that keeps records in memory as JSON
// lines. Tests use it to assert on page-break and overflow messages.
//
//	h := logging.NewBufferedHandler(nil)
//	logging.SetLogger(slog.New(h))
//	// ... paginate ...
//	if h.Contains("overflow") { ... }
type BufferedHandler struct {
	level  slog.Leveler
	shared *sharedBuffer
	attrs  []string
	groups []string
}

type sharedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

type record struct {
	Level    string   `json:"level"`
	Message  string   `json:"message"`
	DateTime string   `json:"datetime"`
	Attrs    []string `json:"attrs,omitempty"`
}

// NewBufferedHandler creates an empty handler. A nil opts captures every level.
func NewBufferedHandler(opts *slog.HandlerOptions) *BufferedHandler {
	h := &BufferedHandler{shared: &sharedBuffer{}}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler
func (h *BufferedHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

// Handle implements slog.Handler
func (h *BufferedHandler) Handle(_ context.Context, r slog.Record) error {
	rec := record{
		Level:    r.Level.String(),
		Message:  r.Message,
		DateTime: r.Time.Format(time.DateTime),
	}
	rec.Attrs = append(rec.Attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs = append(rec.Attrs, h.qualify(a))
		return true
	})

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	h.shared.buf.Write(data)
	h.shared.buf.WriteByte('\n')
	return nil
}

func (h *BufferedHandler) qualify(a slog.Attr) string {
	if len(h.groups) == 0 {
		return a.String()
	}
	return strings.Join(h.groups, ".") + "." + a.String()
}

// WithAttrs implements slog.Handler
func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]string, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, h.qualify(a))
	}
	return &BufferedHandler{level: h.level, shared: h.shared, attrs: merged, groups: h.groups}
}

// WithGroup implements slog.Handler
func (h *BufferedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &BufferedHandler{level: h.level, shared: h.shared, attrs: h.attrs, groups: groups}
}

// String returns everything captured so far
func (h *BufferedHandler) String() string {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	return h.shared.buf.String()
}

// Contains reports whether the captured output contains s
func (h *BufferedHandler) Contains(s string) bool {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	return bytes.Contains(h.shared.buf.Bytes(), []byte(s))
}

// Lines returns the number of captured records
func (h *BufferedHandler) Lines() int {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	return bytes.Count(h.shared.buf.Bytes(), []byte{'\n'})
}

// Reset drops all captured output
func (h *BufferedHandler) Reset() {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	h.shared.buf.Reset()
}
