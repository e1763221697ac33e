package maestro

import "fmt"

// Command is a compact protocol opcode.
type Command byte

const (
	CmdSetTarget       Command = 0x84
	CmdSetSpeed        Command = 0x87
	CmdSetAcceleration Command = 0x89
	CmdGetPosition     Command = 0x90
	CmdGetMovingState  Command = 0x93
	CmdGetErrors       Command = 0xA1
	CmdGoHome          Command = 0xA2
)

// Protocol limits.
const (
	// MaxChannel is the highest channel number that can be addressed.
	MaxChannel = 254
	// MaxValue is the largest value a 14-bit frame field can carry.
	MaxValue = 0x3FFF
)

type commandInfo struct {
	name     string
	frame    int
	response int
}

var commandTable = map[Command]commandInfo{
	CmdSetTarget:       {"setPosition", 4, 0},
	CmdSetSpeed:        {"setSpeed", 4, 0},
	CmdSetAcceleration: {"setAcceleration", 4, 0},
	CmdGetPosition:     {"getPosition", 2, 2},
	CmdGetMovingState:  {"getMovingState", 1, 1},
	CmdGetErrors:       {"getErrors", 1, 2},
	CmdGoHome:          {"goHome", 1, 0},
}

// String returns the operation name used in errors and logs.
func (c Command) String() string {
	if info, ok := commandTable[c]; ok {
		return info.name
	}

	return fmt.Sprintf("command(0x%02X)", byte(c))
}

// FrameSize returns the number of bytes sent for c, or 0 if c is unknown.
func (c Command) FrameSize() int { return commandTable[c].frame }

// ResponseSize returns the number of bytes the controller answers with.
func (c Command) ResponseSize() int { return commandTable[c].response }

// Encode builds the frame for c. channel and value are ignored when the frame
// does not carry them.
func (c Command) Encode(channel uint8, value uint16) (Frame, error) {
	info, ok := commandTable[c]
	if !ok {
		return nil, &ProtocolError{Op: c.String(), Size: 0}
	}

	return EncodeFrame(info.frame, c, channel, value)
}

// Frame is one encoded command.
type Frame []byte

// EncodeFrame lays out a frame of size bytes: the opcode, then the channel
// for sizes 2 and 4, then the 14-bit value for size 4. Any other size is a
// ProtocolError.
func EncodeFrame(size int, cmd Command, channel uint8, value uint16) (Frame, error) {
	switch size {
	case 1:
		return Frame{byte(cmd)}, nil
	case 2:
		return Frame{byte(cmd), channel}, nil
	case 4:
		return Frame{byte(cmd), channel, low7(value), high7(value)}, nil
	default:
		return nil, &ProtocolError{Op: cmd.String(), Size: size}
	}
}

// DecodeWord decodes a two byte response, low byte first.
func DecodeWord(resp []byte) uint16 {
	return uint16(resp[0]) + 256*uint16(resp[1])
}

func low7(v uint16) byte {
	return byte(v & 0x7F)
}

func high7(v uint16) byte {
	return byte((v >> 7) & 0x7F)
}
