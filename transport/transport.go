// Package transport moves command frames between a Maestro controller and the
// host over a byte stream.
//
// A Transport owns at most one open port at a time. The default
// implementation, Stream, delegates the physical connection to a named driver
// chosen at runtime:
//
//   - "serial": go.bug.st/serial (default)
//   - "tarm": github.com/tarm/serial
//   - "tcp": a serial-to-TCP bridge such as ser2net, addressed as "host:port"
//     or "tcp://host:port"
//
// Additional drivers can be installed with Register.
package transport

import (
	"errors"
	"io"
	"time"
)

// DefaultTimeout bounds every read issued while waiting for a response.
const DefaultTimeout = 100 * time.Millisecond

// Sentinel errors returned by transports.
var (
	ErrPortClosed    = errors.New("transport: port is not open")
	ErrEmptyPortID   = errors.New("transport: port identifier is empty")
	ErrInvalidBaud   = errors.New("transport: baud rate must be positive")
	ErrUnknownDriver = errors.New("transport: unknown driver")
	ErrShortWrite    = errors.New("transport: short write")
	ErrShortRead     = errors.New("transport: short read")
	ErrTimeout       = errors.New("transport: read timeout")
)

// Transport is the byte-level collaborator consumed by the controller protocol.
//
// Implementations are not required to be goroutine-safe; the controller
// serialises access.
type Transport interface {
	// Open acquires the port. An already open port is released first.
	Open(portID string, baudRate int) error
	// Close releases the port. Closing a closed transport returns nil.
	Close() error
	// Write sends the whole frame or fails.
	Write(frame []byte) error
	// WriteRead sends the frame and reads exactly responseLen bytes.
	WriteRead(frame []byte, responseLen int) ([]byte, error)
	// IsOpen reports whether a port is currently held.
	IsOpen() bool
}

// Port is an open byte stream handed out by a driver.
type Port interface {
	io.ReadWriteCloser
}

// inputResetter is implemented by ports that can discard unread input.
type inputResetter interface {
	ResetInputBuffer() error
}

// OpenFunc opens portID at baudRate. Reads on the returned Port must give up
// after roughly timeout, either by returning (0, nil), io.EOF or a timeout error.
type OpenFunc func(portID string, baudRate int, timeout time.Duration) (Port, error)
