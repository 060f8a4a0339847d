package core

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level logger, stored as an atomic pointer so it can be
// swapped while registries are running. A nil value means no custom logger
// has been set and Logger falls back to a cached default.
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches slog.Default() with the component attribute so it is
// not re-created on every Logger call. If slog.SetDefault is called after the
// first Logger call the cache goes stale; SetLogger(nil) clears it.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the current package-level logger. It is safe to call from
// multiple goroutines.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	// If another goroutine already cached a logger, use theirs.
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	// A concurrent SetLogger may have cleared the cache between the CAS and
	// this load; fall back to our own so we never return nil.
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "ddblocal")
}

// SetLogger replaces the package-level logger. If l is nil, the logger resets
// to slog.Default() with the component attribute, re-derived on the next
// Logger call.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
