package netutil

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// maxPortRetries is the maximum number of attempts to find a port not already
// handed out.
const maxPortRetries = 20

// PortAllocator tracks ports handed out by Allocate to prevent the TOCTOU
// race where two concurrent callers receive the same port from the kernel
// (the first caller closed its probe listener before the emulator bound it).
type PortAllocator struct {
	mu    sync.Mutex
	ports map[int]struct{}
	log   *slog.Logger
}

// NewPortAllocator creates a PortAllocator ready for use.
// If logger is nil, slog.Default() is used.
func NewPortAllocator(logger *slog.Logger) *PortAllocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortAllocator{
		ports: make(map[int]struct{}),
		log:   logger,
	}
}

// reserve records port as handed out. Returns false if it already was.
func (a *PortAllocator) Reserve(port int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.ports[port]; ok {
		return false
	}
	a.ports[port] = struct{}{}
	return true
}

// Release makes port available to Allocate again. Releasing a port that was
// never allocated is a no-op.
func (a *PortAllocator) Release(port int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.ports, port)
}

// Allocate asks the kernel for a free loopback port that has not been handed
// out yet and reserves it. The caller must Release it when done.
func (a *PortAllocator) Allocate() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("resolve tcp address: %w", err)
	}

	for range maxPortRetries {
		l, err := net.ListenTCP("tcp", addr)
		if err != nil {
			return 0, fmt.Errorf("listen on tcp address: %w", err)
		}
		tcpAddr, ok := l.Addr().(*net.TCPAddr)
		if !ok {
			_ = l.Close()
			return 0, fmt.Errorf("unexpected address type: %T", l.Addr())
		}
		port := tcpAddr.Port
		reserved := a.Reserve(port)
		// Close after reserving so no other caller can see the port as free
		// in between.
		if closeErr := l.Close(); closeErr != nil {
			a.log.Warn("close listener after port allocation", "port", port, "error", closeErr)
		}
		if reserved {
			return port, nil
		}
		a.log.Debug("port already allocated, retrying", "port", port)
	}
	return 0, fmt.Errorf("allocate unique port: exhausted %d attempts", maxPortRetries)
}
