package servobus

import "errors"

// Errors returned by the framer and transport. Callers should type-switch or
// use errors.Is; none of these are retried internally (spec §7: retry is a
// caller concern, since a partial frame may already have been transmitted).
var (
	// ErrBadSync means a frame's leading two bytes were not 0x55 0x55.
	ErrBadSync = errors.New("servobus: bad sync bytes")

	// ErrBadLength means a response's length field did not match what was
	// expected for the command being read.
	ErrBadLength = errors.New("servobus: bad length field")

	// ErrBadChecksum means the computed checksum did not match the
	// checksum byte read off the wire.
	ErrBadChecksum = errors.New("servobus: bad checksum")

	// ErrShortRead means the byte sink returned fewer bytes than requested,
	// i.e. a timeout or EOF mid-frame.
	ErrShortRead = errors.New("servobus: short read")

	// ErrBroadcastRead means the caller tried to read a response from the
	// broadcast id, which never replies.
	ErrBroadcastRead = errors.New("servobus: cannot read a response from the broadcast id")

	// ErrOutOfRange means a caller-supplied SI value maps outside the
	// servo's raw range.
	ErrOutOfRange = errors.New("servobus: value out of range")
)
