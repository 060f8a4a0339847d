// Package fileutil provides the filesystem helpers used by the install
// pipeline: recursive directory creation, a regular-file existence probe for
// the install marker, and WriteFile, which streams a reader into a file via
// temp-file-then-rename so a half-written asset is never visible under its
// final name.
package fileutil
