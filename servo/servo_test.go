package servo

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/maestro"
)

func TestNew_Invalid(t *testing.T) {
	ctrl := &mockController{}

	tests := []struct {
		description string
		ctrl        Controller
		channel     uint8
		neutral     uint16
		delta       uint16
		expectedErr error
	}{
		{"nil controller", nil, 0, 6000, 3000, ErrNilController},
		{"channel 255", ctrl, 255, 6000, 3000, ErrInvalidChannel},
		{"zero neutral", ctrl, 0, 0, 0, ErrInvalidCalibration},
		{"zero delta", ctrl, 0, 6000, 0, ErrInvalidCalibration},
		{"delta equals neutral", ctrl, 0, 6000, 6000, ErrInvalidCalibration},
		{"delta above neutral", ctrl, 0, 6000, 7000, ErrInvalidCalibration},
		{"max above 14 bits", ctrl, 0, 12000, 4384, ErrInvalidCalibration},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			s, err := New(tt.ctrl, tt.channel, tt.neutral, tt.delta)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Nil(t, s)
		})
	}

	s, err := New(ctrl, 254, 12000, 4383)
	require.NoError(t, err)
	require.Equal(t, uint16(maestro.MaxValue), s.MaxPosition())
}

func TestServo_Range(t *testing.T) {
	require := require.New(t)

	for _, cal := range [][2]uint16{{6000, 3000}, {5860, 3600}, {2, 1}, {8000, 1}} {
		s, err := New(&mockController{}, 1, cal[0], cal[1])
		require.NoError(err)

		r := s.Range()
		require.Equal(r.Mid, r.Min+s.Delta())
		require.Equal(r.Max, r.Mid+s.Delta())
		require.LessOrEqual(r.Min, r.Mid)
		require.LessOrEqual(r.Mid, r.Max)
		require.Equal(s.MinPosition(), r.Min)
		require.Equal(s.MidPosition(), r.Mid)
		require.Equal(s.MaxPosition(), r.Max)
		require.Equal(cal[0], s.Neutral())
	}
}

func TestServo_DescribeCalibration(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServo(t)
	cal := s.DescribeCalibration()
	require.Equal(Calibration{MinMicroseconds: 750, MidMicroseconds: 1500, MaxMicroseconds: 2250}, cal)
	require.Equal("min 750 µs, mid 1500 µs, max 2250 µs", cal.String())

	s, err := New(&mockController{}, 0, 5861, 3601)
	require.NoError(err)
	require.Equal(Calibration{MinMicroseconds: 565, MidMicroseconds: 1465, MaxMicroseconds: 2365}, s.DescribeCalibration())
}

func TestServo_SetPositionAbsolute(t *testing.T) {
	require := require.New(t)

	s, ctrl := newTestServo(t)
	echoPosition(ctrl, 0)

	for _, units := range []uint16{3000, 6000, 9000} {
		got, err := s.SetPositionAbsolute(units)
		require.NoError(err)
		require.Equal(units, got)
	}

	for _, units := range []uint16{0, 2999, 9001, 16383} {
		_, err := s.SetPositionAbsolute(units)
		require.Equal(maestro.KindRange, maestro.KindOf(err))
	}

	ctrl.AssertNumberOfCalls(t, "SetPosition", 3)
}

func TestServo_SetPositionDegrees(t *testing.T) {
	require := require.New(t)

	s, ctrl := newTestServo(t)
	echoPosition(ctrl, 0)

	got, err := s.SetPositionDegrees(-45)
	require.NoError(err)
	require.Equal(uint16(4200), got)
	ctrl.AssertCalled(t, "SetPosition", uint8(0), uint16(4200))

	got, err = s.SetPositionDegrees(90)
	require.NoError(err)
	require.Equal(uint16(9600), got)

	got, err = s.SetPositionDegrees(-90)
	require.NoError(err)
	require.Equal(uint16(2400), got)

	for _, deg := range []int{91, -91, 180, math.MinInt} {
		_, err = s.SetPositionDegrees(deg)

		var rangeErr *maestro.RangeError
		require.ErrorAs(err, &rangeErr)
		require.Equal("degrees", rangeErr.Quantity)
		require.Equal("servo: setPositionDegrees", rangeErr.Op)
	}

	ctrl.AssertNumberOfCalls(t, "SetPosition", 3)
}

func TestServo_DegreesRoundTrip(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServo(t)
	for deg := MinDegrees; deg <= MaxDegrees; deg++ {
		units, err := s.ToUnits(deg)
		require.NoError(err)
		require.Equal(uint16(6000+deg*UnitsPerDegree), units)
		require.Equal(deg, s.ToDegrees(units), "degrees %d", deg)
	}

	_, err := s.ToUnits(91)
	require.Equal(maestro.KindRange, maestro.KindOf(err))
}

func TestServo_TargetOutsideWireRange(t *testing.T) {
	require := require.New(t)

	ctrl := &mockController{}

	high, err := New(ctrl, 0, 14000, 2000)
	require.NoError(err)
	_, err = high.SetPositionDegrees(90)

	var rangeErr *maestro.RangeError
	require.ErrorAs(err, &rangeErr)
	require.Equal("target", rangeErr.Quantity)
	require.EqualValues(17600, rangeErr.Value)

	low, err := New(ctrl, 0, 2000, 1000)
	require.NoError(err)
	_, err = low.SetPositionDegrees(-90)
	require.Equal(maestro.KindRange, maestro.KindOf(err))

	_, err = low.SetPositionRadians(-math.Pi / 2)
	require.Equal(maestro.KindRange, maestro.KindOf(err))

	ctrl.AssertNotCalled(t, "SetPosition", mock.Anything, mock.Anything)
}

func TestServo_SetPositionRadians(t *testing.T) {
	require := require.New(t)

	s, ctrl := newTestServo(t)
	echoPosition(ctrl, 0)

	tests := []struct {
		rad      float64
		expected uint16
	}{
		{0, 6000},
		{math.Pi / 2, 9600},
		{-math.Pi / 2, 2400},
		{math.Pi / 4, 7800},
		{1.574, 9607},
	}
	for _, tt := range tests {
		got, err := s.SetPositionRadians(tt.rad)
		require.NoError(err, "radians %v", tt.rad)
		require.Equal(tt.expected, got, "radians %v", tt.rad)
	}

	for _, rad := range []float64{1.58, -1.58, math.Pi, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := s.SetPositionRadians(rad)
		require.Equal(maestro.KindRange, maestro.KindOf(err), "radians %v", rad)
	}
}

func TestServo_Position(t *testing.T) {
	require := require.New(t)

	s, ctrl := newTestServo(t)
	ctrl.On("GetPosition", uint8(0)).Return(uint16(4200), nil).Once()
	ctrl.On("GetPosition", uint8(0)).Return(uint16(6039), nil).Once()
	ctrl.On("GetPosition", uint8(0)).Return(uint16(5960), nil).Once()
	ctrl.On("GetPosition", uint8(0)).Return(uint16(9600), nil).Once()
	ctrl.On("GetPosition", uint8(0)).Return(uint16(7000), nil).Once()

	deg, err := s.PositionDegrees()
	require.NoError(err)
	require.Equal(-45, deg)

	deg, err = s.PositionDegrees()
	require.NoError(err)
	require.Equal(0, deg)

	deg, err = s.PositionDegrees()
	require.NoError(err)
	require.Equal(-1, deg)

	rad, err := s.PositionRadians()
	require.NoError(err)
	require.InDelta(math.Pi/2, rad, 1e-9)

	pos, err := s.PositionAbsolute()
	require.NoError(err)
	require.Equal(uint16(7000), pos)

	ctrl.AssertExpectations(t)
}

func TestServo_ControllerErrors(t *testing.T) {
	require := require.New(t)

	s, ctrl := newTestServo(t)
	notConnected := fmt.Errorf("maestro: getPosition: %w", maestro.ErrNotConnected)
	transportErr := &maestro.TransportError{Op: "setSpeed", Channel: 0, Err: errors.New("timeout")}

	ctrl.On("GetPosition", uint8(0)).Return(uint16(0), notConnected)
	ctrl.On("SetSpeed", uint8(0), uint16(10)).Return(transportErr)
	ctrl.On("SetAcceleration", uint8(0), uint16(10)).Return(transportErr)
	ctrl.On("SetPosition", uint8(0), uint16(6000)).Return(uint16(0), transportErr)

	_, err := s.PositionAbsolute()
	require.ErrorIs(err, maestro.ErrNotConnected)
	require.Equal(maestro.KindNotConnected, maestro.KindOf(err))

	var chErr *ChannelError
	require.ErrorAs(err, &chErr)
	require.Equal("positionAbsolute", chErr.Op)
	require.Equal(uint8(0), chErr.Channel)

	_, err = s.PositionDegrees()
	require.ErrorIs(err, maestro.ErrNotConnected)

	_, err = s.PositionRadians()
	require.ErrorIs(err, maestro.ErrNotConnected)

	err = s.SetSpeed(10)
	require.Equal(maestro.KindTransport, maestro.KindOf(err))
	require.Equal("servo: setSpeed channel 0: maestro: setSpeed channel 0: timeout", err.Error())

	require.Equal(maestro.KindTransport, maestro.KindOf(s.SetAcceleration(10)))

	_, err = s.SetPositionDegrees(0)
	require.Equal(maestro.KindTransport, maestro.KindOf(err))
}

func TestServo_SpeedAndAcceleration(t *testing.T) {
	require := require.New(t)

	s, ctrl := newTestServo(t)
	ctrl.On("SetSpeed", uint8(0), mock.AnythingOfType("uint16")).Return(nil)
	ctrl.On("SetAcceleration", uint8(0), mock.AnythingOfType("uint16")).Return(nil)

	require.NoError(s.SetSpeed(MinSpeed))
	require.NoError(s.SetSpeed(MaxSpeed))
	require.NoError(s.SetAcceleration(MinAcceleration))
	require.NoError(s.SetAcceleration(MaxAcceleration))

	for _, v := range []uint16{0, 256, 1000} {
		require.Equal(maestro.KindRange, maestro.KindOf(s.SetSpeed(v)))
		require.Equal(maestro.KindRange, maestro.KindOf(s.SetAcceleration(v)))
	}

	ctrl.AssertNumberOfCalls(t, "SetSpeed", 2)
	ctrl.AssertNumberOfCalls(t, "SetAcceleration", 2)
}

func TestServo_Logger(t *testing.T) {
	ctrl := &mockController{}
	echoPosition(ctrl, 2)

	l := logger.NewMockLogger()
	l.On("With", "channel", uint8(2)).Return(l)
	l.On("Debug", "servo: position set", mock.Anything).Return()

	s, err := New(ctrl, 2, 6000, 3000, WithLogger(l))
	require.NoError(t, err)

	_, err = s.SetPositionDegrees(10)
	require.NoError(t, err)

	l.AssertExpectations(t)
}

// center moves any positioner to the middle of its range.
func center(p Positioner) (uint16, error) {
	return p.SetPositionAbsolute(p.Range().Mid)
}

func TestPositioner(t *testing.T) {
	require := require.New(t)

	s, ctrl := newTestServo(t)
	echoPosition(ctrl, 0)
	ctrl.On("GetPosition", uint8(0)).Return(uint16(6000), nil)

	var p Positioner = s
	got, err := center(p)
	require.NoError(err)
	require.Equal(uint16(6000), got)

	pos, err := p.PositionAbsolute()
	require.NoError(err)
	require.Equal(0, p.ToDegrees(pos))

	units, err := p.ToUnits(30)
	require.NoError(err)
	require.Equal(uint16(7200), units)
	require.Equal(uint8(0), p.Channel())
	require.InDelta(math.Pi/6, s.ToRadians(units), 1e-9)
}
