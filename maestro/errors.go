package maestro

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by every operation issued while the controller
// is closed.
var ErrNotConnected = errors.New("maestro: connection is not open")

// ErrConfigNil indicates that a nil Config was passed to NewController.
var ErrConfigNil = errors.New("maestro: config is nil")

// Kind classifies errors returned by this package.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnection
	KindNotConnected
	KindTransport
	KindRange
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindNotConnected:
		return "not connected"
	case KindTransport:
		return "transport"
	case KindRange:
		return "range"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of err, looking through wrapped errors.
// It returns KindUnknown for nil and for foreign errors.
func KindOf(err error) Kind {
	var (
		rangeErr     *RangeError
		protocolErr  *ProtocolError
		connErr      *ConnectionError
		transportErr *TransportError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotConnected):
		return KindNotConnected
	case errors.As(err, &rangeErr):
		return KindRange
	case errors.As(err, &protocolErr):
		return KindProtocol
	case errors.As(err, &connErr):
		return KindConnection
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}

// ConnectionError reports that the transport could not be opened or closed.
type ConnectionError struct {
	Op       string // "open" or "close"
	PortID   string
	BaudRate int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("maestro: %s %s at %d baud: %v", e.Op, e.PortID, e.BaudRate, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TransportError reports a byte-level failure while executing an operation.
type TransportError struct {
	Op      string // operation name, e.g. "setPosition"
	Channel int    // -1 for board-wide operations
	Err     error
}

func (e *TransportError) Error() string {
	if e.Channel < 0 {
		return fmt.Sprintf("maestro: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("maestro: %s channel %d: %v", e.Op, e.Channel, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RangeError reports a value outside a calibrated or protocol-defined range.
// It never reaches the wire.
type RangeError struct {
	Op       string
	Channel  int // -1 when no channel is involved
	Quantity string
	Value    float64
	Min      float64
	Max      float64
}

func (e *RangeError) Error() string {
	if e.Channel < 0 {
		return fmt.Sprintf("%s: %s %v out of range [%v, %v]", e.Op, e.Quantity, e.Value, e.Min, e.Max)
	}

	return fmt.Sprintf("%s channel %d: %s %v out of range [%v, %v]",
		e.Op, e.Channel, e.Quantity, e.Value, e.Min, e.Max)
}

// ProtocolError reports a request for a frame the protocol cannot express.
type ProtocolError struct {
	Op   string
	Size int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("maestro: %s: invalid frame size %d, must be 1, 2 or 4", e.Op, e.Size)
}
