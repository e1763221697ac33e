// Package maestro implements the Pololu Maestro compact serial protocol.
//
// A Controller owns one transport and translates servo operations into
// fixed-size command frames:
//
//	| Operation        | Frame                     | Response |
//	|------------------|---------------------------|----------|
//	| SetPosition      | 0x84, channel, low, high  | none     |
//	| SetSpeed         | 0x87, channel, low, high  | none     |
//	| SetAcceleration  | 0x89, channel, low, high  | none     |
//	| GetPosition      | 0x90, channel             | 2 bytes  |
//	| GetMovingState   | 0x93                      | 1 byte   |
//	| GetErrors        | 0xA1                      | 2 bytes  |
//	| GoHome           | 0xA2                      | none     |
//
// Values are 14 bits wide and sent as two 7-bit bytes, low byte first.
// Positions are in quarter-microseconds: 6000 is a 1500 µs pulse.
//
// # Connection state
//
// Every operation except Open, Close and Reinitialize fails with
// ErrNotConnected while the controller is closed. Open always releases the
// previous handle before acquiring a new one and Close may be called any
// number of times.
//
// # Errors
//
// Failures are reported as one of ConnectionError, ErrNotConnected,
// TransportError, RangeError or ProtocolError. KindOf classifies any error
// returned by this package or wrapped by a caller. Nothing is retried.
//
// # Concurrency
//
// The Maestro protocol is strictly request/response on a half-duplex link.
// Controller serialises its own operations, so a Close issued from another
// goroutine takes effect after the frame in flight and fails every later call.
package maestro
