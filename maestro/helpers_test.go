package maestro

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/transport"
)

const testPort = "/dev/ttyACM0"

// newMockController returns a closed controller wired to a fresh Mock.
func newMockController(t *testing.T) (*Controller, *transport.Mock) {
	t.Helper()

	mock := transport.NewMock()
	cfg, err := NewConfig(testPort, 0, WithTransport(mock), WithLogger(logger.Discard()))
	require.NoError(t, err)

	ctrl, err := NewController(cfg)
	require.NoError(t, err)

	return ctrl, mock
}

// newOpenController returns an open controller wired to a fresh Mock.
func newOpenController(t *testing.T) (*Controller, *transport.Mock) {
	t.Helper()

	ctrl, mock := newMockController(t)
	require.NoError(t, ctrl.Open())

	return ctrl, mock
}
