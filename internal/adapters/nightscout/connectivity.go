package nightscout

import (
	"context"
	"net"
	"time"
)

// Checker reports whether the network path to the remote site is usable.
// The gated fetcher consults it before each fetch and fails fast with
// ErrNetworkUnavailable when it answers false.
type Checker interface {
	Online(ctx context.Context) bool
}

// TCPChecker probes reachability by dialing a fixed address. A successful
// handshake is treated as "online"; every failure, including timeout, as
// "offline".
type TCPChecker struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

// NewTCPChecker creates a checker probing the given host:port address.
func NewTCPChecker(addr string, timeout time.Duration) *TCPChecker {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &TCPChecker{addr: addr, timeout: timeout}
}

// Online dials the probe address once.
func (c *TCPChecker) Online(ctx context.Context) bool {
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(dialCtx, "tcp", c.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// AlwaysOnline is a Checker that never blocks a fetch, for tests and for
// deployments without a probe address.
type AlwaysOnline struct{}

// Online always reports true.
func (AlwaysOnline) Online(ctx context.Context) bool { return true }
