package transport

import (
	"fmt"
	"sync"
)

// OpenCall records one call to Mock.Open.
type OpenCall struct {
	PortID   string
	BaudRate int
}

// Mock is a scripted Transport for tests. Responses queued with
// QueueResponse are handed out in order by WriteRead.
type Mock struct {
	mu sync.Mutex

	// OpenErr, CloseErr, WriteErr and ReadErr are returned by the matching
	// call when set.
	OpenErr  error
	CloseErr error
	WriteErr error
	ReadErr  error

	open       bool
	opens      []OpenCall
	closeCount int
	written    [][]byte
	responses  [][]byte
}

var _ Transport = (*Mock)(nil)

// NewMock returns a closed Mock.
func NewMock() *Mock {
	return &Mock{}
}

// QueueResponse appends a response for a later WriteRead.
func (m *Mock) QueueResponse(resp ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = append(m.responses, append([]byte(nil), resp...))
}

// Frames returns copies of every frame written so far.
func (m *Mock) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := make([][]byte, len(m.written))
	for i, f := range m.written {
		frames[i] = append([]byte(nil), f...)
	}

	return frames
}

// LastFrame returns the most recently written frame, or nil.
func (m *Mock) LastFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.written) == 0 {
		return nil
	}

	return append([]byte(nil), m.written[len(m.written)-1]...)
}

// Opens returns the recorded Open calls.
func (m *Mock) Opens() []OpenCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]OpenCall(nil), m.opens...)
}

// CloseCount returns the number of Close calls.
func (m *Mock) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closeCount
}

// PendingResponses returns the number of queued responses not yet consumed.
func (m *Mock) PendingResponses() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.responses)
}

func (m *Mock) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.open
}

func (m *Mock) Open(portID string, baudRate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opens = append(m.opens, OpenCall{PortID: portID, BaudRate: baudRate})
	m.open = false
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.open = true

	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeCount++
	m.open = false

	return m.CloseErr
}

func (m *Mock) Write(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writeLocked(frame)
}

func (m *Mock) WriteRead(frame []byte, responseLen int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writeLocked(frame); err != nil {
		return nil, err
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("%w (%w): received 0 of %d bytes", ErrShortRead, ErrTimeout, responseLen)
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if len(resp) < responseLen {
		return nil, fmt.Errorf("%w: received %d of %d bytes", ErrShortRead, len(resp), responseLen)
	}

	return resp[:responseLen], nil
}

func (m *Mock) writeLocked(frame []byte) error {
	if !m.open {
		return ErrPortClosed
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.written = append(m.written, append([]byte(nil), frame...))

	return nil
}
