package midifile

const (
	headerID = "MThd"
	trackID  = "MTrk"

	headerLen      = 6
	chunkHeaderLen = 8
)

// Header is the content of the MThd chunk.
type Header struct {
	Format uint16
	// Tracks is the count declared by the input. Encode ignores it and
	// writes the number of tracks actually present.
	Tracks   uint16
	Division uint16
	// Extra holds header bytes beyond the six defined ones, if any.
	Extra []byte
}

// Event is one timed message of a track.
type Event struct {
	// Delta is the number of ticks since the previous event of the track.
	Delta   uint32
	Message Message
}

// Track is the ordered event stream of one MTrk chunk.
type Track struct {
	Events []Event
}

// Duration returns the sum of all delta-times, in ticks.
func (t Track) Duration() uint64 {
	var total uint64
	for _, ev := range t.Events {
		total += uint64(ev.Delta)
	}
	return total
}

// Name returns the text of the first track name meta event, if any.
func (t Track) Name() string {
	for _, ev := range t.Events {
		if m, ok := ev.Message.(MetaMessage); ok && m.IsMeta() && m.Type == MetaTrackName {
			return string(m.Data)
		}
	}
	return ""
}

// RawChunk is a chunk of unknown type, kept verbatim.
type RawChunk struct {
	ID   [4]byte
	Data []byte
	// After is the number of tracks that precede the chunk in the file.
	After int
}

// Document is a decoded file. Tracks and Chunks are in file order.
type Document struct {
	Header  Header
	Tracks  []Track
	Chunks  []RawChunk
	Trailer []byte // bytes after the last chunk too short to form one
}

// EventCount returns the number of events across all tracks.
func (d *Document) EventCount() int {
	n := 0
	for _, t := range d.Tracks {
		n += len(t.Events)
	}
	return n
}
