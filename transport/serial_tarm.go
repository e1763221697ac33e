package transport

import (
	"fmt"
	"time"

	tarm "github.com/tarm/serial"
)

type tarmPort struct {
	*tarm.Port
}

func (p tarmPort) ResetInputBuffer() error {
	return p.Flush()
}

func openTarm(portID string, baudRate int, timeout time.Duration) (Port, error) {
	p, err := tarm.OpenPort(&tarm.Config{
		Name:        portID,
		Baud:        baudRate,
		ReadTimeout: timeout,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portID, err)
	}

	return tarmPort{p}, nil
}
