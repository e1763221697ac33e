package servo

import (
	"fmt"
	"math"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/maestro"
)

// Conversion factors and limits.
const (
	// DegreesToPosition is the number of microseconds per degree.
	DegreesToPosition = 10
	// MicrosecondsToPosition is the number of position units per microsecond.
	MicrosecondsToPosition = 4
	// UnitsPerDegree is the number of position units per degree.
	UnitsPerDegree = DegreesToPosition * MicrosecondsToPosition

	MinDegrees = -90
	MaxDegrees = 90

	MinRadians = -math.Pi / 2
	MaxRadians = math.Pi / 2

	MinSpeed = 1
	MaxSpeed = 255

	MinAcceleration = 1
	MaxAcceleration = 255
)

// radianSteps is the number of 0.01 rad steps between 0 and MaxRadians.
var radianSteps = math.Round(100 * MaxRadians)

// Controller is the subset of *maestro.Controller a Servo needs.
type Controller interface {
	SetPosition(channel uint8, target uint16) (uint16, error)
	SetSpeed(channel uint8, speed uint16) error
	SetAcceleration(channel uint8, accel uint16) error
	GetPosition(channel uint8) (uint16, error)
}

var _ Controller = (*maestro.Controller)(nil)

// Range is a servo's reachable positions in quarter-microseconds.
type Range struct {
	Min uint16
	Mid uint16
	Max uint16
}

// Contains reports whether units lies within r.
func (r Range) Contains(units uint16) bool {
	return units >= r.Min && units <= r.Max
}

// Calibration holds the values to enter in the Maestro Control Center for a
// servo, in microseconds.
type Calibration struct {
	MinMicroseconds uint16
	MidMicroseconds uint16
	MaxMicroseconds uint16
}

func (c Calibration) String() string {
	return fmt.Sprintf("min %d µs, mid %d µs, max %d µs", c.MinMicroseconds, c.MidMicroseconds, c.MaxMicroseconds)
}

// Servo is a calibrated channel on a controller. It is immutable after New.
type Servo struct {
	ctrl    Controller
	channel uint8
	neutral uint16
	delta   uint16
	logger  logger.Logger
}

// Option is a functional option for New.
type Option interface {
	apply(*Servo)
}

type optFunc func(*Servo)

func (f optFunc) apply(s *Servo) { f(s) }

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(s *Servo) {
		if l != nil {
			s.logger = l
		}
	})
}

// New returns a servo on channel of ctrl, centred at neutral and able to move
// delta units to either side.
//
// neutral must be positive, delta must satisfy 0 < delta < neutral and
// neutral+delta must fit the 14-bit protocol value, otherwise New returns
// ErrInvalidCalibration.
func New(ctrl Controller, channel uint8, neutral, delta uint16, opts ...Option) (*Servo, error) {
	if ctrl == nil {
		return nil, ErrNilController
	}
	if channel > maestro.MaxChannel {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidChannel, channel, maestro.MaxChannel)
	}
	if err := validateCalibration(neutral, delta); err != nil {
		return nil, err
	}

	s := &Servo{
		ctrl:    ctrl,
		channel: channel,
		neutral: neutral,
		delta:   delta,
		logger:  logger.GetLogger(),
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	s.logger = s.logger.With("channel", channel)

	return s, nil
}

func validateCalibration(neutral, delta uint16) error {
	switch {
	case neutral == 0:
		return fmt.Errorf("%w: neutral must be positive", ErrInvalidCalibration)
	case delta == 0 || delta >= neutral:
		return fmt.Errorf("%w: delta %d must be in (0, %d)", ErrInvalidCalibration, delta, neutral)
	case int(neutral)+int(delta) > maestro.MaxValue:
		return fmt.Errorf("%w: neutral %d + delta %d exceeds %d", ErrInvalidCalibration, neutral, delta, maestro.MaxValue)
	}

	return nil
}

// Channel returns the controller channel the servo is wired to.
func (s *Servo) Channel() uint8 { return s.channel }

// Neutral returns the neutral position in quarter-microseconds.
func (s *Servo) Neutral() uint16 { return s.neutral }

// Delta returns the travel to either side of neutral in quarter-microseconds.
func (s *Servo) Delta() uint16 { return s.delta }

// MinPosition returns neutral - delta.
func (s *Servo) MinPosition() uint16 { return s.neutral - s.delta }

// MidPosition returns neutral.
func (s *Servo) MidPosition() uint16 { return s.neutral }

// MaxPosition returns neutral + delta.
func (s *Servo) MaxPosition() uint16 { return s.neutral + s.delta }

// Range returns the reachable positions.
func (s *Servo) Range() Range {
	return Range{Min: s.MinPosition(), Mid: s.MidPosition(), Max: s.MaxPosition()}
}

// DescribeCalibration returns the limits to configure on the controller.
func (s *Servo) DescribeCalibration() Calibration {
	return Calibration{
		MinMicroseconds: s.MinPosition() / MicrosecondsToPosition,
		MidMicroseconds: s.MidPosition() / MicrosecondsToPosition,
		MaxMicroseconds: s.MaxPosition() / MicrosecondsToPosition,
	}
}

// SetPositionAbsolute moves the servo to units, which must lie in Range.
func (s *Servo) SetPositionAbsolute(units uint16) (uint16, error) {
	const op = "setPositionAbsolute"

	if !s.Range().Contains(units) {
		return 0, s.rangeError(op, "position", float64(units), float64(s.MinPosition()), float64(s.MaxPosition()))
	}

	return s.setPosition(op, units)
}

// SetPositionDegrees moves the servo deg degrees away from neutral.
func (s *Servo) SetPositionDegrees(deg int) (uint16, error) {
	const op = "setPositionDegrees"

	if deg < MinDegrees || deg > MaxDegrees {
		return 0, s.rangeError(op, "degrees", float64(deg), MinDegrees, MaxDegrees)
	}

	target, err := s.target(op, int(s.neutral)+deg*UnitsPerDegree)
	if err != nil {
		return 0, err
	}

	return s.setPosition(op, target)
}

// SetPositionRadians moves the servo rad radians away from neutral. The range
// check works on hundredths of a radian; the target is rounded to the nearest unit.
func (s *Servo) SetPositionRadians(rad float64) (uint16, error) {
	const op = "setPositionRadians"

	steps := math.Round(100 * rad)
	if math.IsNaN(rad) || steps > radianSteps || steps < -radianSteps {
		return 0, s.rangeError(op, "radians", rad, MinRadians, MaxRadians)
	}

	deg := rad * 180 / math.Pi
	target, err := s.target(op, int(math.Round(float64(s.neutral)+deg*UnitsPerDegree)))
	if err != nil {
		return 0, err
	}

	return s.setPosition(op, target)
}

// PositionAbsolute returns the position reported by the controller.
func (s *Servo) PositionAbsolute() (uint16, error) {
	pos, err := s.ctrl.GetPosition(s.channel)
	if err != nil {
		return 0, &ChannelError{Channel: s.channel, Op: "positionAbsolute", Err: err}
	}

	return pos, nil
}

// PositionDegrees returns the reported position in whole degrees from
// neutral, truncated toward zero.
func (s *Servo) PositionDegrees() (int, error) {
	pos, err := s.ctrl.GetPosition(s.channel)
	if err != nil {
		return 0, &ChannelError{Channel: s.channel, Op: "positionDegrees", Err: err}
	}

	return s.ToDegrees(pos), nil
}

// PositionRadians returns the reported position in radians from neutral.
func (s *Servo) PositionRadians() (float64, error) {
	pos, err := s.ctrl.GetPosition(s.channel)
	if err != nil {
		return 0, &ChannelError{Channel: s.channel, Op: "positionRadians", Err: err}
	}

	return s.ToRadians(pos), nil
}

// SetSpeed limits the servo speed, in 0.25 µs per 10 ms.
func (s *Servo) SetSpeed(speed uint16) error {
	const op = "setSpeed"

	if speed < MinSpeed || speed > MaxSpeed {
		return s.rangeError(op, "speed", float64(speed), MinSpeed, MaxSpeed)
	}
	if err := s.ctrl.SetSpeed(s.channel, speed); err != nil {
		return &ChannelError{Channel: s.channel, Op: op, Err: err}
	}
	s.logger.Debug("servo: speed set", "speed", speed)

	return nil
}

// SetAcceleration limits the servo acceleration, in 0.25 µs per 10 ms per 80 ms.
func (s *Servo) SetAcceleration(accel uint16) error {
	const op = "setAcceleration"

	if accel < MinAcceleration || accel > MaxAcceleration {
		return s.rangeError(op, "acceleration", float64(accel), MinAcceleration, MaxAcceleration)
	}
	if err := s.ctrl.SetAcceleration(s.channel, accel); err != nil {
		return &ChannelError{Channel: s.channel, Op: op, Err: err}
	}
	s.logger.Debug("servo: acceleration set", "acceleration", accel)

	return nil
}

// ToUnits converts deg to a target position without moving the servo.
func (s *Servo) ToUnits(deg int) (uint16, error) {
	const op = "toUnits"

	if deg < MinDegrees || deg > MaxDegrees {
		return 0, s.rangeError(op, "degrees", float64(deg), MinDegrees, MaxDegrees)
	}

	return s.target(op, int(s.neutral)+deg*UnitsPerDegree)
}

// ToDegrees converts a position to whole degrees from neutral, truncated
// toward zero.
func (s *Servo) ToDegrees(units uint16) int {
	return (int(units) - int(s.neutral)) / UnitsPerDegree
}

// ToRadians converts a position to radians from neutral.
func (s *Servo) ToRadians(units uint16) float64 {
	return float64(int(units)-int(s.neutral)) * math.Pi / UnitsPerDegree / 180
}

func (s *Servo) setPosition(op string, target uint16) (uint16, error) {
	ack, err := s.ctrl.SetPosition(s.channel, target)
	if err != nil {
		return 0, &ChannelError{Channel: s.channel, Op: op, Err: err}
	}
	s.logger.Debug("servo: position set", "op", op, "target", ack)

	return ack, nil
}

// target checks that a computed position fits the protocol value range.
func (s *Servo) target(op string, units int) (uint16, error) {
	if units < 0 || units > maestro.MaxValue {
		return 0, s.rangeError(op, "target", float64(units), 0, maestro.MaxValue)
	}

	return uint16(units), nil
}

func (s *Servo) rangeError(op, quantity string, value, low, high float64) error {
	return &maestro.RangeError{
		Op:       "servo: " + op,
		Channel:  int(s.channel),
		Quantity: quantity,
		Value:    value,
		Min:      low,
		Max:      high,
	}
}
