package maestro

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		description string
		err         error
		expected    Kind
	}{
		{"nil", nil, KindUnknown},
		{"foreign", io.EOF, KindUnknown},
		{"not connected", fmt.Errorf("maestro: setPosition: %w", ErrNotConnected), KindNotConnected},
		{"connection", &ConnectionError{Op: "open", Err: io.EOF}, KindConnection},
		{"transport", &TransportError{Op: "getPosition", Channel: 1, Err: io.EOF}, KindTransport},
		{"range", &RangeError{Op: "maestro: setSpeed", Quantity: "speed"}, KindRange},
		{"protocol", &ProtocolError{Op: "setPosition", Size: 3}, KindProtocol},
		{"wrapped range", fmt.Errorf("servo: %w", &RangeError{}), KindRange},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	require := require.New(t)

	require.Equal("connection", KindConnection.String())
	require.Equal("not connected", KindNotConnected.String())
	require.Equal("transport", KindTransport.String())
	require.Equal("range", KindRange.String())
	require.Equal("protocol", KindProtocol.String())
	require.Equal("unknown", KindUnknown.String())
	require.Equal("unknown", Kind(42).String())
}

func TestErrorMessages(t *testing.T) {
	require := require.New(t)

	cause := errors.New("boom")

	connErr := &ConnectionError{Op: "open", PortID: "COM4", BaudRate: 9600, Err: cause}
	require.Equal("maestro: open COM4 at 9600 baud: boom", connErr.Error())
	require.ErrorIs(connErr, cause)

	transportErr := &TransportError{Op: "getPosition", Channel: 2, Err: cause}
	require.Equal("maestro: getPosition channel 2: boom", transportErr.Error())
	require.ErrorIs(transportErr, cause)

	transportErr = &TransportError{Op: "getMovingState", Channel: -1, Err: cause}
	require.Equal("maestro: getMovingState: boom", transportErr.Error())

	rangeErr := &RangeError{Op: "maestro: setPosition", Channel: 3, Quantity: "target", Value: 20000, Min: 0, Max: 16383}
	require.Equal("maestro: setPosition channel 3: target 20000 out of range [0, 16383]", rangeErr.Error())

	rangeErr = &RangeError{Op: "maestro: getPosition", Channel: -1, Quantity: "channel", Value: 255, Min: 0, Max: 254}
	require.Equal("maestro: getPosition: channel 255 out of range [0, 254]", rangeErr.Error())

	protoErr := &ProtocolError{Op: "setPosition", Size: 3}
	require.Equal("maestro: setPosition: invalid frame size 3, must be 1, 2 or 4", protoErr.Error())
}
