package maestro

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-maestro/internal/pool"
	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/transport"
)

// boardWide is the channel recorded for operations that address the whole board.
const boardWide = -1

// Controller speaks the compact protocol to one Maestro board.
type Controller struct {
	mu sync.Mutex

	portID   string
	baudRate int
	open     bool

	transport transport.Transport
	logger    logger.Logger

	// targets holds the last target acknowledged per channel since Open.
	targets *xsync.MapOf[uint8, uint16]

	metrics ControllerMetrics
}

// NewController creates a closed Controller. Call Open before issuing commands.
func NewController(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	t := cfg.transport
	if t == nil {
		stream, err := transport.NewStream(cfg.driver,
			transport.WithTimeout(cfg.timeout),
			transport.WithLogger(cfg.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("maestro: %w", err)
		}
		t = stream
	}

	return &Controller{
		portID:    cfg.portID,
		baudRate:  cfg.baudRate,
		transport: t,
		logger:    cfg.logger,
		targets:   xsync.NewMapOf[uint8, uint16](),
	}, nil
}

// PortID returns the port identifier used by the next Open.
func (c *Controller) PortID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.portID
}

// BaudRate returns the baud rate used by the next Open.
func (c *Controller) BaudRate() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.baudRate
}

// IsOpen reports whether the connection is open.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open
}

// Metrics returns the controller's counters.
func (c *Controller) Metrics() *ControllerMetrics {
	return &c.metrics
}

// Open releases any existing handle and opens the transport with the stored
// port and baud rate.
func (c *Controller) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = false
	if err := c.transport.Close(); err != nil {
		c.logger.Warn("maestro: failed to release previous handle", "port", c.portID, "error", err)
	}
	c.targets.Clear()

	if err := c.transport.Open(c.portID, c.baudRate); err != nil {
		c.logger.Warn("maestro: failed to open connection", "port", c.portID, "baudRate", c.baudRate, "error", err)
		return &ConnectionError{Op: "open", PortID: c.portID, BaudRate: c.baudRate, Err: err}
	}

	c.open = true
	c.metrics.incOpenCount()
	c.logger.Info("maestro: connection opened", "port", c.portID, "baudRate", c.baudRate)

	return nil
}

// Close closes the transport. Closing a closed controller returns nil.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeLocked()
}

func (c *Controller) closeLocked() error {
	wasOpen := c.open
	c.open = false

	err := c.transport.Close()
	if !wasOpen {
		if err != nil {
			c.logger.Debug("maestro: close on closed connection failed", "port", c.portID, "error", err)
		}
		return nil
	}

	if err != nil {
		c.logger.Warn("maestro: failed to close connection", "port", c.portID, "error", err)
		return &ConnectionError{Op: "close", PortID: c.portID, BaudRate: c.baudRate, Err: err}
	}
	c.logger.Info("maestro: connection closed", "port", c.portID)

	return nil
}

// Reinitialize closes the connection and stores a new port and baud rate for
// the next Open. It does not reopen. A baudRate of 0 selects DefaultBaudRate.
func (c *Controller) Reinitialize(portID string, baudRate int) error {
	if err := validatePort(portID, baudRate); err != nil {
		return err
	}
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.closeLocked()
	c.portID = portID
	c.baudRate = baudRate
	c.logger.Debug("maestro: connection reinitialized", "port", portID, "baudRate", baudRate)

	return err
}

// SetPosition moves channel to target, in quarter-microseconds, and returns
// the acknowledged target. The controller sends no reply.
func (c *Controller) SetPosition(channel uint8, target uint16) (uint16, error) {
	if err := c.sendValue(CmdSetTarget, channel, target, "target"); err != nil {
		return 0, err
	}
	c.targets.Store(channel, target)

	return target, nil
}

// SetSpeed limits how fast channel moves, in 0.25 µs per 10 ms. 0 means
// unlimited.
func (c *Controller) SetSpeed(channel uint8, speed uint16) error {
	return c.sendValue(CmdSetSpeed, channel, speed, "speed")
}

// SetAcceleration limits how fast the speed of channel changes, in
// 0.25 µs per 10 ms per 80 ms. 0 means unlimited.
func (c *Controller) SetAcceleration(channel uint8, accel uint16) error {
	return c.sendValue(CmdSetAcceleration, channel, accel, "acceleration")
}

// GetPosition returns the position the controller is currently driving
// channel to, exactly as reported by the device.
func (c *Controller) GetPosition(channel uint8) (uint16, error) {
	if err := checkChannel(CmdGetPosition, channel); err != nil {
		return 0, err
	}

	resp, err := c.query(CmdGetPosition, int(channel), channel)
	if err != nil {
		return 0, err
	}

	return DecodeWord(resp), nil
}

// GetMovingState reports whether any servo on the board is still moving.
func (c *Controller) GetMovingState() (bool, error) {
	resp, err := c.query(CmdGetMovingState, boardWide, 0)
	if err != nil {
		return false, err
	}

	return resp[0] != 0, nil
}

// GetErrors reads and clears the controller's error register.
func (c *Controller) GetErrors() (ErrorFlags, error) {
	resp, err := c.query(CmdGetErrors, boardWide, 0)
	if err != nil {
		return 0, err
	}

	return ErrorFlags(DecodeWord(resp)), nil
}

// GoHome sends every channel to its configured home position.
func (c *Controller) GoHome() error {
	frame, err := CmdGoHome.Encode(0, 0)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(CmdGoHome, boardWide, frame); err != nil {
		return err
	}
	c.targets.Clear()

	return nil
}

// WaitIdle polls GetMovingState until no servo is moving. interval is the
// pause between polls; 0 polls back to back. Closing the controller from
// another goroutine ends the wait with ErrNotConnected.
func (c *Controller) WaitIdle(ctx context.Context, interval time.Duration) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		moving, err := c.GetMovingState()
		if err != nil {
			return err
		}
		if !moving {
			return nil
		}
		if interval <= 0 {
			continue
		}

		timer := pool.GetTimer(interval)
		select {
		case <-ctx.Done():
			pool.PutTimer(timer)
			return ctx.Err()
		case <-timer.C:
			pool.PutTimer(timer)
		}
	}
}

// LastTarget returns the last target acknowledged for channel since the
// connection was opened.
func (c *Controller) LastTarget(channel uint8) (uint16, bool) {
	return c.targets.Load(channel)
}

func (c *Controller) sendValue(cmd Command, channel uint8, value uint16, quantity string) error {
	if err := checkChannel(cmd, channel); err != nil {
		return err
	}
	if value > MaxValue {
		return &RangeError{
			Op:       "maestro: " + cmd.String(),
			Channel:  int(channel),
			Quantity: quantity,
			Value:    float64(value),
			Min:      0,
			Max:      MaxValue,
		}
	}

	frame, err := cmd.Encode(channel, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.send(cmd, int(channel), frame)
}

// send writes a frame that has no response. c.mu must be held.
func (c *Controller) send(cmd Command, channel int, frame Frame) error {
	if !c.open {
		return fmt.Errorf("maestro: %s: %w", cmd, ErrNotConnected)
	}

	c.logger.Debug("maestro: send frame", "op", cmd.String(), "frame", fmt.Sprintf("% X", []byte(frame)))
	if err := c.transport.Write(frame); err != nil {
		return c.transportFailed(cmd, channel, err)
	}
	c.metrics.incFrameSendCount()

	return nil
}

// query writes the frame for cmd and reads its fixed-size response.
func (c *Controller) query(cmd Command, channel int, channelByte uint8) ([]byte, error) {
	frame, err := cmd.Encode(channelByte, 0)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, fmt.Errorf("maestro: %s: %w", cmd, ErrNotConnected)
	}

	want := cmd.ResponseSize()
	c.logger.Debug("maestro: send frame", "op", cmd.String(), "frame", fmt.Sprintf("% X", []byte(frame)))
	resp, err := c.transport.WriteRead(frame, want)
	if err != nil {
		return nil, c.transportFailed(cmd, channel, err)
	}
	c.metrics.incFrameSendCount()

	if len(resp) != want {
		return nil, c.transportFailed(cmd, channel,
			fmt.Errorf("%w: received %d of %d bytes", transport.ErrShortRead, len(resp), want))
	}
	c.metrics.incResponseRecvCount()
	c.logger.Debug("maestro: received response", "op", cmd.String(), "response", fmt.Sprintf("% X", resp))

	return resp, nil
}

func (c *Controller) transportFailed(cmd Command, channel int, err error) error {
	c.metrics.incTransportErrCount()
	c.logger.Warn("maestro: operation failed", "op", cmd.String(), "channel", channel, "error", err)

	return &TransportError{Op: cmd.String(), Channel: channel, Err: err}
}

func checkChannel(cmd Command, channel uint8) error {
	if channel > MaxChannel {
		return &RangeError{
			Op:       "maestro: " + cmd.String(),
			Channel:  boardWide,
			Quantity: "channel",
			Value:    float64(channel),
			Min:      0,
			Max:      MaxChannel,
		}
	}

	return nil
}
