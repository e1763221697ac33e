package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// openBugST opens a serial device with 8N1 framing, the only mode the Maestro
// USB and TTL interfaces speak.
func openBugST(portID string, baudRate int, timeout time.Duration) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(portID, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portID, err)
	}

	if err := p.SetReadTimeout(timeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portID, err)
	}

	return p, nil
}
