package servo

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-maestro/logger"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) SetPosition(channel uint8, target uint16) (uint16, error) {
	args := m.Called(channel, target)
	if fn, ok := args.Get(0).(func(uint8, uint16) (uint16, error)); ok {
		return fn(channel, target)
	}
	return args.Get(0).(uint16), args.Error(1)
}

func (m *mockController) SetSpeed(channel uint8, speed uint16) error {
	return m.Called(channel, speed).Error(0)
}

func (m *mockController) SetAcceleration(channel uint8, accel uint16) error {
	return m.Called(channel, accel).Error(0)
}

func (m *mockController) GetPosition(channel uint8) (uint16, error) {
	args := m.Called(channel)
	return args.Get(0).(uint16), args.Error(1)
}

// newTestServo returns a servo on channel 0 centred at 6000 with delta 3000.
func newTestServo(t *testing.T) (*Servo, *mockController) {
	t.Helper()

	ctrl := &mockController{}
	s, err := New(ctrl, 0, 6000, 3000, WithLogger(logger.Discard()))
	require.NoError(t, err)

	return s, ctrl
}

// echoPosition makes ctrl acknowledge every target on channel.
func echoPosition(ctrl *mockController, channel uint8) {
	ctrl.On("SetPosition", channel, mock.AnythingOfType("uint16")).
		Return(func(_ uint8, target uint16) (uint16, error) { return target, nil }, nil)
}
