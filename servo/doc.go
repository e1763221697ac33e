// Package servo converts between engineering units and Maestro position units
// for a single calibrated servo channel.
//
// A Servo is described by the channel it is wired to, its neutral position and
// the distance delta it can travel to either side of neutral, all in
// quarter-microseconds. It never owns the controller it talks to.
//
// Unit conversions:
//
//	1 µs      = 4 position units
//	1 degree  = 10 µs = 40 position units
//	target    = neutral + degrees*40
//
// Degrees are limited to [-90, 90] and radians to [-π/2, π/2], compared at a
// resolution of 0.01 rad. Speed and acceleration are limited to [1, 255].
// Violations are reported as *maestro.RangeError before anything is sent.
// Failures reported by the controller are wrapped in *ChannelError, so
// maestro.KindOf still classifies them.
package servo
