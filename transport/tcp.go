package transport

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const dialTimeout = 3 * time.Second

// ConnPort adapts a net.Conn to Port, applying the read timeout as a deadline
// before every Read.
type ConnPort struct {
	net.Conn
	timeout time.Duration
}

// NewConnPort wraps conn so that each Read gives up after timeout.
func NewConnPort(conn net.Conn, timeout time.Duration) *ConnPort {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &ConnPort{Conn: conn, timeout: timeout}
}

func (p *ConnPort) Read(b []byte) (int, error) {
	if err := p.Conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
		return 0, err
	}

	return p.Conn.Read(b)
}

// openTCP dials a serial bridge. The baud rate is configured on the bridge
// itself and is ignored here.
func openTCP(portID string, _ int, timeout time.Duration) (Port, error) {
	addr := strings.TrimPrefix(portID, "tcp://")

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial serial bridge %s: %w", addr, err)
	}

	return NewConnPort(conn, timeout), nil
}
