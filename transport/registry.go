package transport

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Built-in driver names.
const (
	DriverSerial = "serial"
	DriverTarm   = "tarm"
	DriverTCP    = "tcp"
)

var drivers = xsync.NewMapOf[string, OpenFunc]()

func init() {
	Register(DriverSerial, openBugST)
	Register(DriverTarm, openTarm)
	Register(DriverTCP, openTCP)
}

// Register installs or replaces the driver called name.
func Register(name string, open OpenFunc) {
	if name == "" || open == nil {
		panic("transport: Register requires a name and an OpenFunc")
	}
	drivers.Store(name, open)
}

// Lookup returns the driver called name.
func Lookup(name string) (OpenFunc, error) {
	if name == "" {
		name = DriverSerial
	}
	open, ok := drivers.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, name)
	}

	return open, nil
}

// Drivers returns the registered driver names in sorted order.
func Drivers() []string {
	names := make([]string, 0, drivers.Size())
	drivers.Range(func(name string, _ OpenFunc) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)

	return names
}
