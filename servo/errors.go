package servo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCalibration is returned by New when neutral and delta do not
	// describe a range inside the protocol limits.
	ErrInvalidCalibration = errors.New("servo: invalid calibration")
	// ErrNilController is returned by New when no controller is given.
	ErrNilController = errors.New("servo: controller is nil")
	// ErrInvalidChannel is returned by New for a channel the protocol cannot address.
	ErrInvalidChannel = errors.New("servo: invalid channel")
	// ErrDuplicateName is returned by Rig.Add for a name already in use.
	ErrDuplicateName = errors.New("servo: duplicate servo name")
	// ErrDuplicateChannel is returned by Rig.Add for a channel already in use.
	ErrDuplicateChannel = errors.New("servo: duplicate servo channel")
	// ErrEmptyName is returned by Rig.Add for an empty name.
	ErrEmptyName = errors.New("servo: servo name is empty")
)

// ChannelError reports a controller failure for a servo operation.
type ChannelError struct {
	Channel uint8
	Op      string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("servo: %s channel %d: %v", e.Op, e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
