package transport

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/arloliu/go-maestro/logger"
)

// Stream is a Transport backed by a driver's byte stream.
//
// Stream is NOT goroutine-safe.
type Stream struct {
	driver  string
	open    OpenFunc
	timeout time.Duration
	logger  logger.Logger

	port   Port
	portID string
}

var _ Transport = (*Stream)(nil)

// Option configures a Stream.
type Option func(*Stream)

// WithTimeout sets the per-read timeout. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Stream) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for frame tracing.
func WithLogger(l logger.Logger) Option {
	return func(s *Stream) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOpenFunc bypasses the driver registry.
func WithOpenFunc(open OpenFunc) Option {
	return func(s *Stream) {
		if open != nil {
			s.open = open
		}
	}
}

// NewStream creates a closed Stream using the named driver. An empty name
// selects DriverSerial.
func NewStream(driver string, opts ...Option) (*Stream, error) {
	if driver == "" {
		driver = DriverSerial
	}

	s := &Stream{
		driver:  driver,
		timeout: DefaultTimeout,
		logger:  logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.open == nil {
		open, err := Lookup(driver)
		if err != nil {
			return nil, err
		}
		s.open = open
	}

	return s, nil
}

// Driver returns the driver name.
func (s *Stream) Driver() string { return s.driver }

// Timeout returns the per-read timeout.
func (s *Stream) Timeout() time.Duration { return s.timeout }

// PortID returns the identifier of the open port, or "" when closed.
func (s *Stream) PortID() string { return s.portID }

func (s *Stream) IsOpen() bool { return s.port != nil }

func (s *Stream) Open(portID string, baudRate int) error {
	if portID == "" {
		return ErrEmptyPortID
	}
	if baudRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBaud, baudRate)
	}

	if err := s.Close(); err != nil {
		s.logger.Warn("transport: failed to release previous port", "port", s.portID, "error", err)
	}

	port, err := s.open(portID, baudRate, s.timeout)
	if err != nil {
		return err
	}

	s.port = port
	s.portID = portID
	s.logger.Debug("transport: port opened", "driver", s.driver, "port", portID, "baudRate", baudRate)

	return nil
}

func (s *Stream) Close() error {
	if s.port == nil {
		return nil
	}

	port, portID := s.port, s.portID
	s.port = nil
	s.portID = ""

	if err := port.Close(); err != nil {
		return fmt.Errorf("transport: close %s: %w", portID, err)
	}
	s.logger.Debug("transport: port closed", "port", portID)

	return nil
}

func (s *Stream) Write(frame []byte) error {
	if s.port == nil {
		return ErrPortClosed
	}

	return s.writeAll(frame)
}

func (s *Stream) WriteRead(frame []byte, responseLen int) ([]byte, error) {
	if s.port == nil {
		return nil, ErrPortClosed
	}

	if r, ok := s.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			s.logger.Debug("transport: failed to reset input buffer", "error", err)
		}
	}

	if err := s.writeAll(frame); err != nil {
		return nil, err
	}

	resp := make([]byte, responseLen)
	if err := s.readFull(resp); err != nil {
		return nil, err
	}
	s.logger.Debug("transport: response received", "bytes", hex.EncodeToString(resp))

	return resp, nil
}

// writeAll writes every byte of data.
func (s *Stream) writeAll(data []byte) error {
	s.logger.Debug("transport: frame sent", "bytes", hex.EncodeToString(data))

	for written := 0; written < len(data); {
		n, err := s.port.Write(data[written:])
		written += n

		if err != nil {
			return fmt.Errorf("transport: write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, written, len(data))
		}
	}

	return nil
}

// readFull reads exactly len(buf) bytes. A read returning no data without an
// error is treated as a timeout, which is how go.bug.st/serial reports one.
func (s *Stream) readFull(buf []byte) error {
	for read := 0; read < len(buf); {
		n, err := s.port.Read(buf[read:])
		read += n

		switch {
		case read == len(buf):
			return nil
		case err == nil && n == 0, isTimeout(err):
			return fmt.Errorf("%w (%w after %s): received %d of %d bytes",
				ErrShortRead, ErrTimeout, s.timeout, read, len(buf))
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: received %d of %d bytes", ErrShortRead, read, len(buf))
		case err != nil:
			return fmt.Errorf("transport: read: %w", err)
		}
	}

	return nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
