package checker

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ProbePort reports whether a TCP connect to host:port succeeds within timeout.
func ProbePort(ctx context.Context, host string, port int, timeout time.Duration) bool {
	return dialPort(ctx, host, port, timeout) == nil
}

func dialPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return conn.Close()
}

// TCPProbeCheck connects to the port directly instead of reading the socket
// table, so it also works without netstat or root.
type TCPProbeCheck struct {
	opts Options
}

func NewTCPProbeCheck(opts Options) *TCPProbeCheck {
	return &TCPProbeCheck{opts: opts.withDefaults()}
}

func (c *TCPProbeCheck) Name() string {
	return NameTCPProbe
}

func (c *TCPProbeCheck) Check(ctx context.Context) CheckResult {
	addr := net.JoinHostPort(c.opts.ProbeHost, strconv.Itoa(c.opts.Port))
	result := newResult(NameTCPProbe, fmt.Sprintf("Probing TCP connect to %s...", addr))

	if err := dialPort(ctx, c.opts.ProbeHost, c.opts.Port, c.opts.ProbeTimeout); err != nil {
		result.Summary = fmt.Sprintf("TCP connect to %s failed", addr)
		result.Error = err.Error()
		return result
	}

	result.Status = StatusPass
	result.Summary = fmt.Sprintf("TCP connect to %s succeeded", addr)
	return result
}
