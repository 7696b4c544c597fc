package midifile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encode serializes doc. The header track count is recomputed from
// len(doc.Tracks); every event is written with an explicit status byte.
func Encode(doc *Document) ([]byte, error) {
	if len(doc.Tracks) > math.MaxUint16 {
		return nil, &EncodeError{Track: -1, Event: -1, Err: fmt.Errorf("%w: %d tracks do not fit the header", ErrTrackCount, len(doc.Tracks))}
	}

	h := doc.Header
	out := make([]byte, 0, chunkHeaderLen+headerLen+len(h.Extra))
	out = append(out, headerID...)
	out = binary.BigEndian.AppendUint32(out, uint32(headerLen+len(h.Extra)))
	out = binary.BigEndian.AppendUint16(out, h.Format)
	out = binary.BigEndian.AppendUint16(out, uint16(len(doc.Tracks)))
	out = binary.BigEndian.AppendUint16(out, h.Division)
	out = append(out, h.Extra...)

	ci := 0
	for i, track := range doc.Tracks {
		for ci < len(doc.Chunks) && doc.Chunks[ci].After <= i {
			out = appendChunk(out, doc.Chunks[ci].ID[:], doc.Chunks[ci].Data)
			ci++
		}

		body, err := encodeTrack(track, i)
		if err != nil {
			return nil, err
		}
		if uint64(len(body)) > math.MaxUint32 {
			return nil, &EncodeError{Track: i, Event: -1, Err: ErrLengthMismatch}
		}
		out = appendChunk(out, []byte(trackID), body)
	}
	for ; ci < len(doc.Chunks); ci++ {
		out = appendChunk(out, doc.Chunks[ci].ID[:], doc.Chunks[ci].Data)
	}

	return append(out, doc.Trailer...), nil
}

// WriteTo encodes d and writes it to w. Nothing is written if encoding fails.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := Encode(d)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func encodeTrack(track Track, index int) ([]byte, error) {
	// A one-byte delta plus a note message is the common case.
	body := make([]byte, 0, len(track.Events)*4)
	for i, ev := range track.Events {
		var err error
		body, err = AppendVarint(body, ev.Delta)
		if err != nil {
			return nil, &EncodeError{Track: index, Event: i, Err: fmt.Errorf("delta-time %d: %w", ev.Delta, err)}
		}
		if ev.Message == nil {
			return nil, &EncodeError{Track: index, Event: i, Err: fmt.Errorf("%w: nil message", ErrStatus)}
		}
		body, err = ev.Message.appendTo(body)
		if err != nil {
			return nil, &EncodeError{Track: index, Event: i, Err: err}
		}
	}
	return body, nil
}

func appendChunk(out []byte, id []byte, body []byte) []byte {
	out = append(out, id...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}
