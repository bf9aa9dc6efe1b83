// Package logging holds the *slog.Logger used by reportpager
package logging

import (
	"log/slog"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SetLogger installs the logger used for pagination diagnostics.
// Passing nil restores the discard logger.
//
// Enable debug output on stderr with:
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discard()
	}
	current.Store(l)
}

// Logger returns the installed logger, or a logger that drops everything.
// Safe for concurrent use.
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	l := discard()
	current.CompareAndSwap(nil, l)
	return current.Load()
}
