package ddblocal

import (
	"log/slog"

	"github.com/giantswarm/ddblocal/internal/core"
)

// SetLogger replaces the package-level logger used by ddblocal.
// The provided logger should already have any desired attributes; ddblocal
// adds only per-process attributes such as "port".
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other ddblocal operations.
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
