package process

import (
	"context"
	"fmt"
	"net"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/ddblocal/internal/sentinel"
)

// ErrProcessExited is returned by WaitListening when the child exits before
// its port accepts connections.
const ErrProcessExited = sentinel.Error("process exited before accepting connections")

// ErrInvalidWait is returned by WaitListening for a non-positive interval or
// timeout.
const ErrInvalidWait = sentinel.Error("poll interval and timeout must be positive")

// WaitListening polls addr with TCP dials every interval until a connection
// succeeds, timeout elapses, ctx ends, or the process exits. Each dial is
// bounded by interval. A dial failure means the JVM is still starting and
// never aborts the wait on its own.
func (p *Process) WaitListening(ctx context.Context, addr string, interval, timeout time.Duration) error {
	if interval <= 0 || timeout <= 0 {
		return fmt.Errorf("wait for %s on %s: %w", p.name, addr, ErrInvalidWait)
	}

	dialer := &net.Dialer{Timeout: interval}
	attempts := 0
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(pollCtx context.Context) (bool, error) {
		select {
		case <-p.exited:
			return false, ErrProcessExited
		default:
		}

		attempts++
		conn, err := dialer.DialContext(pollCtx, "tcp", addr)
		if err != nil {
			return false, nil
		}
		_ = conn.Close()
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("wait for %s on %s after %d dials: %w", p.name, addr, attempts, err)
	}
	p.log.Debug("process accepting connections", "name", p.name, "addr", addr, "dials", attempts)
	return nil
}
