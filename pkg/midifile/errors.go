package midifile

import (
	"errors"
	"fmt"
)

// Decode failures. They are always wrapped in a *DecodeError carrying the
// byte offset where the problem was found.
var (
	ErrHeader         = errors.New("malformed header chunk")
	ErrTruncated      = errors.New("unexpected end of data")
	ErrVarint         = errors.New("variable-length integer longer than 4 bytes")
	ErrLengthMismatch = errors.New("track data does not match its length prefix")
	ErrUnknownStatus  = errors.New("unrecognized status byte")
	ErrDataByte       = errors.New("data byte out of range [0,127]")
	ErrTrackCount     = errors.New("track count mismatch")
)

// Encode failures, wrapped in a *EncodeError.
var (
	ErrNoteRange   = errors.New("note field out of range")
	ErrVarintRange = errors.New("value exceeds variable-length integer range")
	ErrStatus      = errors.New("invalid status for message")
)

// DecodeError reports where in the input a decode failed.
type DecodeError struct {
	Offset int64
	Err    error
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("midifile: offset %d (0x%x): %v", e.Offset, e.Offset, e.Err)
	}
	return fmt.Sprintf("midifile: offset %d (0x%x): %v: %s", e.Offset, e.Offset, e.Err, e.Detail)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports which event could not be serialized.
// Track and Event are -1 when the failure is not tied to an event.
type EncodeError struct {
	Track int
	Event int
	Err   error
}

func (e *EncodeError) Error() string {
	if e.Track < 0 {
		return fmt.Sprintf("midifile: encode: %v", e.Err)
	}
	if e.Event < 0 {
		return fmt.Sprintf("midifile: encode track %d: %v", e.Track, e.Err)
	}
	return fmt.Sprintf("midifile: encode track %d event %d: %v", e.Track, e.Event, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
