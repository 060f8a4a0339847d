package ddblocal

import "github.com/giantswarm/ddblocal/internal/core"

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrLaunch is returned when java cannot be spawned.
	ErrLaunch = core.ErrLaunch

	// ErrNotReady is returned when a readiness timeout is configured and the
	// emulator does not accept connections in time. The process is killed.
	ErrNotReady = core.ErrNotReady

	// ErrInvalidPort is returned for ports outside 1..65535.
	ErrInvalidPort = core.ErrInvalidPort

	// ErrRegistryClosed is returned by Launch and Relaunch after Shutdown.
	ErrRegistryClosed = core.ErrRegistryClosed

	// ErrDirectoryCreate is returned when the install directory cannot be
	// created, e.g. permission denied or the path is a regular file.
	ErrDirectoryCreate = core.ErrDirectoryCreate

	// ErrNetwork is returned when a download request fails at the transport
	// level or the install timeout expires mid-download.
	ErrNetwork = core.ErrNetwork

	// ErrUnexpectedStatus matches every *StatusError.
	ErrUnexpectedStatus = core.ErrUnexpectedStatus

	// ErrMissingLocation is returned when the source URL redirects without a
	// Location header.
	ErrMissingLocation = core.ErrMissingLocation

	// ErrExtraction is returned when the archive cannot be unpacked or does
	// not contain the emulator jar.
	ErrExtraction = core.ErrExtraction

	// ErrChecksumMismatch is returned when the archive does not match the
	// digest given to WithArchiveSHA256.
	ErrChecksumMismatch = core.ErrChecksumMismatch
)

// StatusError reports an unexpected HTTP status while downloading. Use
// errors.As to read the status code and, for the archive request, the
// redirect location.
type StatusError = core.StatusError
