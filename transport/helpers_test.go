package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/arloliu/go-maestro/logger"
)

// fakePort is a Port with injectable read/write behaviour.
type fakePort struct {
	readFn  func(p []byte) (int, error)
	writeFn func(p []byte) (int, error)
	closed  int
	resets  int
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readFn == nil {
		return 0, io.EOF
	}
	return p.readFn(b)
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeFn == nil {
		return len(b), nil
	}
	return p.writeFn(b)
}

func (p *fakePort) Close() error {
	p.closed++
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.resets++
	return nil
}

// newPipeStream returns an open Stream whose port is the local end of a
// net.Pipe, and the remote end for the test to play the device.
func newPipeStream(t *testing.T, timeout time.Duration) (*Stream, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	s, err := NewStream("pipe",
		WithTimeout(timeout),
		WithLogger(logger.Discard()),
		WithOpenFunc(func(string, int, time.Duration) (Port, error) {
			return NewConnPort(local, timeout), nil
		}),
	)
	if err != nil {
		t.Fatalf("newPipeStream: %v", err)
	}
	if err := s.Open("pipe0", 9600); err != nil {
		t.Fatalf("newPipeStream: open: %v", err)
	}

	return s, remote
}

// readExactly reads exactly n bytes from r, failing the test on error.
func readExactly(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Errorf("readExactly: %v", err)
	}

	return buf
}
