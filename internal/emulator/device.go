// Package emulator implements a software Maestro that answers the compact
// protocol over any byte stream.
//
// The device advances its simulated servos by one 10 ms tick every time it
// answers a getPosition or getMovingState query, so a host polling for the end
// of a move observes the same progression it would on hardware, without
// real-time waits.
package emulator

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/maestro"
	"github.com/arloliu/go-maestro/transport"
)

// DriverName is the transport driver name used for the emulator.
const DriverName = "sim"

// Defaults for NewDevice.
const (
	DefaultChannels = 24
	DefaultHome     = 6000
)

type channelState struct {
	position     uint16
	target       uint16
	speed        uint16
	acceleration uint16
}

// Device is a simulated Maestro board. It is safe for concurrent use.
type Device struct {
	mu       sync.Mutex
	home     uint16
	channels []channelState
	errors   maestro.ErrorFlags
	frames   int

	logger logger.Logger
}

// Option is a functional option for NewDevice.
type Option interface {
	apply(*Device)
}

type optFunc func(*Device)

func (f optFunc) apply(d *Device) { f(d) }

// WithChannels sets the number of servo channels. Values outside
// [1, maestro.MaxChannel+1] are ignored.
func WithChannels(n int) Option {
	return optFunc(func(d *Device) {
		if n >= 1 && n <= maestro.MaxChannel+1 {
			d.channels = make([]channelState, n)
		}
	})
}

// WithHome sets the home position every channel starts at and returns to on goHome.
func WithHome(units uint16) Option {
	return optFunc(func(d *Device) {
		d.home = units
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(d *Device) {
		if l != nil {
			d.logger = l
		}
	})
}

// NewDevice returns a device with every channel at its home position.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		home:     DefaultHome,
		channels: make([]channelState, DefaultChannels),
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt.apply(d)
	}

	for i := range d.channels {
		d.channels[i].position = d.home
		d.channels[i].target = d.home
	}

	return d
}

// Channels returns the number of channels.
func (d *Device) Channels() int {
	return len(d.channels)
}

// Position returns the simulated position of channel.
func (d *Device) Position(channel int) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.channels[channel].position
}

// Target returns the target of channel.
func (d *Device) Target(channel int) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.channels[channel].target
}

// Speed returns the speed limit of channel.
func (d *Device) Speed(channel int) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.channels[channel].speed
}

// Acceleration returns the acceleration limit of channel.
func (d *Device) Acceleration(channel int) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.channels[channel].acceleration
}

// Frames returns the number of complete frames processed.
func (d *Device) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.frames
}

// RaiseErrors sets bits in the error register, as the firmware would on a fault.
func (d *Device) RaiseErrors(flags maestro.ErrorFlags) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.errors |= flags
}

// Serve answers frames read from rw until the stream ends. A closed stream is
// not an error.
func (d *Device) Serve(rw io.ReadWriter) error {
	r := bufio.NewReader(rw)

	for {
		resp, err := d.next(r)
		if err != nil {
			return streamErr(err)
		}
		if len(resp) == 0 {
			continue
		}
		if _, err := rw.Write(resp); err != nil {
			return streamErr(err)
		}
	}
}

// Opener returns a transport.OpenFunc connecting to d over an in-memory pipe.
// Every open starts a new Serve loop that ends when the port is closed.
func (d *Device) Opener() transport.OpenFunc {
	return func(portID string, baudRate int, timeout time.Duration) (transport.Port, error) {
		host, device := net.Pipe()
		go func() {
			if err := d.Serve(device); err != nil {
				d.logger.Warn("emulator: serve failed", "port", portID, "error", err)
			}
			device.Close()
		}()
		d.logger.Debug("emulator: port opened", "port", portID, "baudRate", baudRate)

		return transport.NewConnPort(host, timeout), nil
	}
}

// next reads one frame and returns the response to send, if any. Malformed
// input sets the serial protocol error bit and is dropped.
func (d *Device) next(r io.ByteReader) ([]byte, error) {
	op, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	cmd := maestro.Command(op)
	size := cmd.FrameSize()
	if size == 0 {
		d.protocolError("unknown command", op)
		return nil, nil
	}

	data := make([]byte, size-1)
	for i := range data {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b&0x80 != 0 {
			d.protocolError("data byte with bit 7 set", b)
			return nil, nil
		}
		data[i] = b
	}

	return d.Handle(cmd, data), nil
}

// Handle applies one decoded frame and returns the response bytes. data holds
// the bytes following the opcode.
func (d *Device) Handle(cmd maestro.Command, data []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(data) != cmd.FrameSize()-1 {
		d.errors |= maestro.ErrSerialProtocol
		return nil
	}
	d.frames++

	switch cmd {
	case maestro.CmdGetMovingState:
		d.tick()
		if d.moving() {
			return []byte{1}
		}
		return []byte{0}

	case maestro.CmdGetErrors:
		flags := d.errors
		d.errors = 0
		return []byte{byte(flags), byte(flags >> 8)}

	case maestro.CmdGoHome:
		for i := range d.channels {
			d.channels[i].target = d.home
		}
		return nil
	}

	ch, ok := d.channel(data[0])
	if !ok {
		if cmd.ResponseSize() > 0 {
			return make([]byte, cmd.ResponseSize())
		}
		return nil
	}

	switch cmd {
	case maestro.CmdGetPosition:
		d.tick()
		return []byte{byte(ch.position), byte(ch.position >> 8)}

	case maestro.CmdSetTarget:
		ch.target = value(data)
		if ch.target == 0 || ch.speed == 0 {
			ch.position = ch.target
		}

	case maestro.CmdSetSpeed:
		ch.speed = value(data)

	case maestro.CmdSetAcceleration:
		ch.acceleration = value(data)
	}

	return nil
}

// channel returns the state for a channel byte, flagging unknown channels.
// d.mu must be held.
func (d *Device) channel(b byte) (*channelState, bool) {
	if int(b) >= len(d.channels) {
		d.errors |= maestro.ErrSerialProtocol
		d.logger.Debug("emulator: channel out of range", "channel", b, "channels", len(d.channels))

		return nil, false
	}

	return &d.channels[b], true
}

// tick moves every channel one 10 ms step toward its target. d.mu must be held.
func (d *Device) tick() {
	for i := range d.channels {
		ch := &d.channels[i]
		if ch.position == ch.target {
			continue
		}
		if ch.speed == 0 {
			ch.position = ch.target
			continue
		}

		if ch.position < ch.target {
			ch.position += min(ch.speed, ch.target-ch.position)
		} else {
			ch.position -= min(ch.speed, ch.position-ch.target)
		}
	}
}

// moving reports whether any channel is short of its target. d.mu must be held.
func (d *Device) moving() bool {
	for i := range d.channels {
		if d.channels[i].position != d.channels[i].target {
			return true
		}
	}

	return false
}

func (d *Device) protocolError(reason string, b byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.errors |= maestro.ErrSerialProtocol
	d.logger.Debug("emulator: "+reason, "byte", b)
}

func value(data []byte) uint16 {
	return uint16(data[1]) | uint16(data[2])<<7
}

func streamErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return nil
	}

	return err
}
