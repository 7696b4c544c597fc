package midifile

import "fmt"

// Channel voice status nibbles. The low nibble of the status byte carries the
// channel.
const (
	StatusNoteOff         byte = 0x80
	StatusNoteOn          byte = 0x90
	StatusKeyPressure     byte = 0xA0
	StatusControlChange   byte = 0xB0
	StatusProgramChange   byte = 0xC0
	StatusChannelPressure byte = 0xD0
	StatusPitchBend       byte = 0xE0
)

// Status bytes of events that carry a length-prefixed payload.
const (
	StatusSysEx       byte = 0xF0
	StatusSysExEscape byte = 0xF7
	StatusMeta        byte = 0xFF
)

// Meta event types the package knows by name. Every other type passes
// through untouched.
const (
	MetaText          byte = 0x01
	MetaTrackName     byte = 0x03
	MetaEndOfTrack    byte = 0x2F
	MetaTempo         byte = 0x51
	MetaTimeSignature byte = 0x58
)

// Message is the payload of an Event. The set of implementations is closed:
// NoteOn, NoteOff, ChannelMessage and MetaMessage.
type Message interface {
	// Status returns the explicit status byte the message is written with.
	Status() byte
	String() string

	appendTo(dst []byte) ([]byte, error)
}

// NoteOn starts a note. A velocity of zero is kept as is; it is not turned
// into a NoteOff.
type NoteOn struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

func (m NoteOn) Status() byte { return StatusNoteOn | m.Channel&0x0F }

func (m NoteOn) String() string {
	return fmt.Sprintf("NoteOn ch=%d key=%d vel=%d", m.Channel, m.Key, m.Velocity)
}

func (m NoteOn) appendTo(dst []byte) ([]byte, error) {
	if err := checkNote(m.Channel, m.Key, m.Velocity); err != nil {
		return dst, err
	}
	return append(dst, m.Status(), m.Key, m.Velocity), nil
}

// NoteOff ends a note.
type NoteOff struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

func (m NoteOff) Status() byte { return StatusNoteOff | m.Channel&0x0F }

func (m NoteOff) String() string {
	return fmt.Sprintf("NoteOff ch=%d key=%d vel=%d", m.Channel, m.Key, m.Velocity)
}

func (m NoteOff) appendTo(dst []byte) ([]byte, error) {
	if err := checkNote(m.Channel, m.Key, m.Velocity); err != nil {
		return dst, err
	}
	return append(dst, m.Status(), m.Key, m.Velocity), nil
}

func checkNote(channel, key, velocity uint8) error {
	if channel > 0x0F || key > 0x7F || velocity > 0x7F {
		return fmt.Errorf("%w: channel=%d key=%d velocity=%d", ErrNoteRange, channel, key, velocity)
	}
	return nil
}

// ChannelMessage is any channel voice message other than a note on/off:
// key pressure, control change, program change, channel pressure, pitch bend.
// Data holds its one or two data bytes.
type ChannelMessage struct {
	Kind    byte // high nibble, e.g. StatusControlChange
	Channel uint8
	Data    []byte
}

func (m ChannelMessage) Status() byte { return m.Kind&0xF0 | m.Channel&0x0F }

func (m ChannelMessage) String() string {
	return fmt.Sprintf("Channel status=0x%02X data=% X", m.Status(), m.Data)
}

func (m ChannelMessage) appendTo(dst []byte) ([]byte, error) {
	switch m.Kind {
	case StatusKeyPressure, StatusControlChange, StatusProgramChange, StatusChannelPressure, StatusPitchBend:
	default:
		return dst, fmt.Errorf("%w: channel message kind 0x%02X", ErrStatus, m.Kind)
	}
	if m.Channel > 0x0F {
		return dst, fmt.Errorf("%w: channel=%d", ErrNoteRange, m.Channel)
	}
	if len(m.Data) != dataLen(m.Kind) {
		return dst, fmt.Errorf("%w: kind 0x%02X wants %d data bytes, got %d", ErrStatus, m.Kind, dataLen(m.Kind), len(m.Data))
	}
	for _, b := range m.Data {
		if b > 0x7F {
			return dst, fmt.Errorf("%w: 0x%02X", ErrDataByte, b)
		}
	}
	dst = append(dst, m.Status())
	return append(dst, m.Data...), nil
}

// dataLen is the number of data bytes following a channel voice status.
func dataLen(status byte) int {
	switch status & 0xF0 {
	case StatusProgramChange, StatusChannelPressure:
		return 1
	}
	return 2
}

// MetaMessage is a meta event (Kind 0xFF, with Type) or a system exclusive
// event (Kind 0xF0 or 0xF7, Type unused). Data is copied verbatim.
type MetaMessage struct {
	Kind byte
	Type byte
	Data []byte
}

func (m MetaMessage) Status() byte { return m.Kind }

// IsMeta reports whether m is a meta event rather than system exclusive.
func (m MetaMessage) IsMeta() bool { return m.Kind == StatusMeta }

func (m MetaMessage) String() string {
	if m.IsMeta() {
		return fmt.Sprintf("Meta type=0x%02X len=%d", m.Type, len(m.Data))
	}
	return fmt.Sprintf("SysEx status=0x%02X len=%d", m.Kind, len(m.Data))
}

// Tempo returns microseconds per quarter note for a tempo meta event.
func (m MetaMessage) Tempo() (uint32, bool) {
	if !m.IsMeta() || m.Type != MetaTempo || len(m.Data) != 3 {
		return 0, false
	}
	return uint32(m.Data[0])<<16 | uint32(m.Data[1])<<8 | uint32(m.Data[2]), true
}

func (m MetaMessage) appendTo(dst []byte) ([]byte, error) {
	switch m.Kind {
	case StatusMeta:
		dst = append(dst, m.Kind, m.Type)
	case StatusSysEx, StatusSysExEscape:
		dst = append(dst, m.Kind)
	default:
		return dst, fmt.Errorf("%w: meta kind 0x%02X", ErrStatus, m.Kind)
	}
	if len(m.Data) > MaxVarint {
		return dst, ErrVarintRange
	}
	dst, err := AppendVarint(dst, uint32(len(m.Data)))
	if err != nil {
		return dst, err
	}
	return append(dst, m.Data...), nil
}
