package core

import (
	"github.com/giantswarm/ddblocal/internal/install"
	"github.com/giantswarm/ddblocal/internal/sentinel"
)

// ErrLaunch is returned when the emulator process cannot be spawned.
const ErrLaunch = sentinel.Error("unable to launch process")

// ErrNotReady is returned when a launched emulator does not accept
// connections within the configured readiness timeout.
const ErrNotReady = sentinel.Error("emulator did not become ready")

// ErrInvalidPort is returned for ports outside 1..65535.
const ErrInvalidPort = sentinel.Error("invalid port")

// ErrRegistryClosed is returned by Launch and Relaunch after Shutdown.
const ErrRegistryClosed = sentinel.Error("registry is shut down")

// Install errors are re-exported so the public API imports only from core,
// preserving the layering: public API → core → install.
const (
	ErrDirectoryCreate  = install.ErrDirectoryCreate
	ErrNetwork          = install.ErrNetwork
	ErrUnexpectedStatus = install.ErrUnexpectedStatus
	ErrMissingLocation  = install.ErrMissingLocation
	ErrExtraction       = install.ErrExtraction
	ErrChecksumMismatch = install.ErrChecksumMismatch
)

// StatusError is re-exported from install for errors.As in callers.
type StatusError = install.StatusError
