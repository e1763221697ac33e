package maestro

import (
	"errors"
	"strings"
)

// ErrorFlags is the controller's error register as returned by GetErrors.
type ErrorFlags uint16

const (
	ErrSerialSignal ErrorFlags = 1 << iota
	ErrSerialOverrun
	ErrSerialRxBufferFull
	ErrSerialCRC
	ErrSerialProtocol
	ErrSerialTimeout
	ErrScriptStack
	ErrScriptCallStack
	ErrScriptProgramCounter
)

var errorFlagNames = []string{
	"serial signal error",
	"serial overrun error",
	"serial RX buffer full",
	"serial CRC error",
	"serial protocol error",
	"serial timeout error",
	"script stack error",
	"script call stack error",
	"script program counter error",
}

// Has reports whether every bit in flag is set.
func (f ErrorFlags) Has(flag ErrorFlags) bool {
	return f&flag == flag
}

// Names returns the names of the set bits, lowest bit first.
func (f ErrorFlags) Names() []string {
	var names []string
	for i, name := range errorFlagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}

	return names
}

func (f ErrorFlags) String() string {
	if f == 0 {
		return "none"
	}

	return strings.Join(f.Names(), ", ")
}

// Err returns nil when no bit is set.
func (f ErrorFlags) Err() error {
	if f == 0 {
		return nil
	}

	return errors.New("maestro: controller reported " + f.String())
}
