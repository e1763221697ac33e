package maestro

import (
	"sync/atomic"
)

// ControllerMetrics contains atomic counters for a Controller.
// They can back a prometheus CounterFunc or GaugeFunc.
type ControllerMetrics struct {
	// FrameSendCount is the number of frames handed to the transport successfully.
	FrameSendCount atomic.Uint64
	// ResponseRecvCount is the number of complete responses received.
	ResponseRecvCount atomic.Uint64
	// TransportErrCount is the number of operations that failed in the transport.
	TransportErrCount atomic.Uint64
	// OpenCount is the number of successful Open calls.
	OpenCount atomic.Uint64
}

func (m *ControllerMetrics) incFrameSendCount() {
	m.FrameSendCount.Add(1)
}

func (m *ControllerMetrics) incResponseRecvCount() {
	m.ResponseRecvCount.Add(1)
}

func (m *ControllerMetrics) incTransportErrCount() {
	m.TransportErrCount.Add(1)
}

func (m *ControllerMetrics) incOpenCount() {
	m.OpenCount.Add(1)
}
