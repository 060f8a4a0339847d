// Package netutil hands out free loopback ports for emulators launched
// without an explicit port. A PortAllocator remembers the ports it handed out
// until they are released, so two concurrent callers never receive the same
// port even though the kernel may offer it twice.
package netutil
