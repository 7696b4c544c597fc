package midifile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Read decodes a whole file from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses data into a Document. The Document does not alias data.
func Decode(data []byte) (*Document, error) {
	doc := &Document{}

	pos, err := decodeHeader(data, &doc.Header)
	if err != nil {
		return nil, err
	}

	for pos < len(data) {
		if len(data)-pos < chunkHeaderLen {
			doc.Trailer = clone(data[pos:])
			break
		}

		start := pos
		var id [4]byte
		copy(id[:], data[pos:])
		length := binary.BigEndian.Uint32(data[pos+4:])
		pos += chunkHeaderLen

		if uint64(length) > uint64(len(data)-pos) {
			return nil, &DecodeError{
				Offset: int64(start + 4),
				Err:    ErrTruncated,
				Detail: fmt.Sprintf("chunk %q declares %d bytes, %d remain", id[:], length, len(data)-pos),
			}
		}
		body := data[pos : pos+int(length)]

		if string(id[:]) == trackID {
			track, err := decodeTrack(body, pos)
			if err != nil {
				return nil, err
			}
			doc.Tracks = append(doc.Tracks, track)
		} else {
			doc.Chunks = append(doc.Chunks, RawChunk{ID: id, Data: clone(body), After: len(doc.Tracks)})
		}
		pos += int(length)
	}

	if len(doc.Tracks) < int(doc.Header.Tracks) {
		return nil, &DecodeError{
			Offset: int64(len(data)),
			Err:    ErrTrackCount,
			Detail: fmt.Sprintf("header declares %d tracks, found %d", doc.Header.Tracks, len(doc.Tracks)),
		}
	}

	return doc, nil
}

// decodeHeader parses the MThd chunk and returns the offset just past it.
func decodeHeader(data []byte, h *Header) (int, error) {
	if len(data) < chunkHeaderLen || string(data[:4]) != headerID {
		return 0, &DecodeError{Offset: 0, Err: ErrHeader, Detail: "missing MThd identifier"}
	}

	length := binary.BigEndian.Uint32(data[4:])
	if length < headerLen {
		return 0, &DecodeError{Offset: 4, Err: ErrHeader, Detail: fmt.Sprintf("header length %d, want at least %d", length, headerLen)}
	}
	if uint64(length) > uint64(len(data)-chunkHeaderLen) {
		return 0, &DecodeError{Offset: 4, Err: ErrHeader, Detail: fmt.Sprintf("header length %d exceeds file size", length)}
	}

	body := data[chunkHeaderLen : chunkHeaderLen+int(length)]
	h.Format = binary.BigEndian.Uint16(body[0:])
	h.Tracks = binary.BigEndian.Uint16(body[2:])
	h.Division = binary.BigEndian.Uint16(body[4:])
	if len(body) > headerLen {
		h.Extra = clone(body[headerLen:])
	}

	return chunkHeaderLen + int(length), nil
}

// trackDecoder walks the body of one MTrk chunk. base is the absolute offset
// of body[0] in the file; running is the last channel voice status seen.
type trackDecoder struct {
	body    []byte
	base    int
	pos     int
	running byte
}

func decodeTrack(body []byte, base int) (Track, error) {
	t := &trackDecoder{body: body, base: base}

	var track Track
	for t.pos < len(t.body) {
		ev, err := t.event()
		if err != nil {
			return Track{}, err
		}
		track.Events = append(track.Events, ev)
	}
	return track, nil
}

func (t *trackDecoder) fail(at int, err error, detail string) error {
	return &DecodeError{Offset: int64(t.base + at), Err: err, Detail: detail}
}

func (t *trackDecoder) varint() (uint32, error) {
	v, n, err := ReadVarint(t.body[t.pos:])
	if err != nil {
		if errors.Is(err, ErrTruncated) {
			return 0, t.fail(t.pos, ErrLengthMismatch, "variable-length integer runs past end of chunk")
		}
		return 0, t.fail(t.pos, err, "")
	}
	t.pos += n
	return v, nil
}

func (t *trackDecoder) take(n int) ([]byte, error) {
	if left := len(t.body) - t.pos; n > left {
		return nil, t.fail(t.pos, ErrLengthMismatch, fmt.Sprintf("need %d bytes, %d left in chunk", n, left))
	}
	b := t.body[t.pos : t.pos+n]
	t.pos += n
	return b, nil
}

func (t *trackDecoder) event() (Event, error) {
	delta, err := t.varint()
	if err != nil {
		return Event{}, err
	}

	at := t.pos
	if at >= len(t.body) {
		return Event{}, t.fail(at, ErrLengthMismatch, "delta-time without event")
	}

	status := t.body[at]
	if status < 0x80 {
		if t.running == 0 {
			return Event{}, t.fail(at, ErrUnknownStatus, fmt.Sprintf("data byte 0x%02X without running status", status))
		}
		// Running status: the byte is the first data byte, leave it in place.
		status = t.running
	} else {
		t.pos++
	}

	var msg Message
	switch {
	case status < 0xF0:
		msg, err = t.channel(status)
		t.running = status
	case status == StatusMeta:
		msg, err = t.meta()
	case status == StatusSysEx || status == StatusSysExEscape:
		msg, err = t.sysex(status)
	default:
		return Event{}, t.fail(at, ErrUnknownStatus, fmt.Sprintf("status 0x%02X", status))
	}
	if err != nil {
		return Event{}, err
	}

	return Event{Delta: delta, Message: msg}, nil
}

func (t *trackDecoder) channel(status byte) (Message, error) {
	at := t.pos
	data, err := t.take(dataLen(status))
	if err != nil {
		return nil, err
	}
	for i, b := range data {
		if b > 0x7F {
			return nil, t.fail(at+i, ErrDataByte, fmt.Sprintf("0x%02X after status 0x%02X", b, status))
		}
	}

	ch := status & 0x0F
	switch status & 0xF0 {
	case StatusNoteOn:
		return NoteOn{Channel: ch, Key: data[0], Velocity: data[1]}, nil
	case StatusNoteOff:
		return NoteOff{Channel: ch, Key: data[0], Velocity: data[1]}, nil
	default:
		return ChannelMessage{Kind: status & 0xF0, Channel: ch, Data: clone(data)}, nil
	}
}

func (t *trackDecoder) meta() (Message, error) {
	typ, err := t.take(1)
	if err != nil {
		return nil, err
	}
	payload, err := t.payload()
	if err != nil {
		return nil, err
	}
	return MetaMessage{Kind: StatusMeta, Type: typ[0], Data: payload}, nil
}

func (t *trackDecoder) sysex(status byte) (Message, error) {
	payload, err := t.payload()
	if err != nil {
		return nil, err
	}
	return MetaMessage{Kind: status, Data: payload}, nil
}

func (t *trackDecoder) payload() ([]byte, error) {
	n, err := t.varint()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(len(t.body)-t.pos) {
		return nil, t.fail(t.pos, ErrLengthMismatch, fmt.Sprintf("payload of %d bytes, %d left in chunk", n, len(t.body)-t.pos))
	}
	b, err := t.take(int(n))
	if err != nil {
		return nil, err
	}
	return clone(b), nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
