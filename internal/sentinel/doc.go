// Package sentinel provides a constant-friendly error type for the sentinel
// errors declared across ddblocal.
//
// Error values built with errors.New must live in package variables, which
// callers could reassign. Error is a plain string type, so sentinels such as
// install.ErrNetwork or core.ErrLaunch are declared as const and still compare
// correctly with errors.Is through wrapped chains.
package sentinel
