// Package install implements the acquisition pipeline: it makes sure the
// emulator asset exists in the install directory, downloading and unpacking
// the vendor archive on first use.
//
// The source URL answers with a 302 whose Location points at a gzip-compressed
// tar archive. The archive is streamed into a staging directory and promoted
// into place with the asset moved last, so the asset file doubles as the
// "installed" marker. A file lock serializes first-time installs across
// goroutines and processes.
package install
