package install

import (
	"fmt"

	"github.com/giantswarm/ddblocal/internal/sentinel"
)

// ErrDirectoryCreate is returned when the install directory cannot be created,
// e.g. permission denied or the path exists as a regular file.
const ErrDirectoryCreate = sentinel.Error("cannot create install directory")

// ErrNetwork is returned when either HTTP request fails at the transport level.
const ErrNetwork = sentinel.Error("network error")

// ErrUnexpectedStatus is matched by every *StatusError.
const ErrUnexpectedStatus = sentinel.Error("unexpected HTTP status")

// ErrMissingLocation is returned when the source URL answers 302 without a
// usable Location header.
const ErrMissingLocation = sentinel.Error("redirect response has no location")

// ErrExtraction is returned when the archive cannot be decompressed or
// unpacked, or does not contain the asset.
const ErrExtraction = sentinel.Error("archive extraction failed")

// ErrChecksumMismatch is returned when a configured archive SHA-256 does not
// match the downloaded bytes.
const ErrChecksumMismatch = sentinel.Error("archive checksum mismatch")

// StatusError reports an unexpected HTTP status from one of the two requests.
// Location is empty for the first request and holds the redirect target for
// the second.
type StatusError struct {
	StatusCode int
	Location   string
}

func (e *StatusError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("getting archive location: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("getting archive location %s: unexpected status %d", e.Location, e.StatusCode)
}

// Is makes errors.Is(err, ErrUnexpectedStatus) true for any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
