package servo

// Positioner is a servo that can be driven in position units and converts
// between degrees and units.
type Positioner interface {
	Channel() uint8
	Range() Range
	PositionAbsolute() (uint16, error)
	SetPositionAbsolute(units uint16) (uint16, error)
	ToUnits(deg int) (uint16, error)
	ToDegrees(units uint16) int
}

var _ Positioner = (*Servo)(nil)
