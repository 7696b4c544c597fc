package midifile_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/aretw0/drumconv/pkg/midifile"
)

// gomidiFixture writes a two-track file with an independent SMF writer.
func gomidiFixture(t *testing.T) []byte {
	t.Helper()

	s := smf.New()

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(120))
	tempo.Close(0)
	require.NoError(t, s.Add(tempo))

	var drums smf.Track
	drums.Add(0, midi.ProgramChange(9, 0))
	drums.Add(0, midi.NoteOn(9, 36, 100))
	drums.Add(240, midi.NoteOn(9, 38, 90))
	drums.Add(240, midi.NoteOn(9, 42, 70))
	drums.Close(480)
	require.NoError(t, s.Add(drums))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestInterop_DecodeGomidiOutput(t *testing.T) {
	doc, err := midifile.Decode(gomidiFixture(t))
	require.NoError(t, err)
	require.Len(t, doc.Tracks, 2)

	var keys []uint8
	for _, ev := range doc.Tracks[1].Events {
		if on, ok := ev.Message.(midifile.NoteOn); ok {
			assert.Equal(t, uint8(9), on.Channel)
			keys = append(keys, on.Key)
		}
	}
	assert.Equal(t, []uint8{36, 38, 42}, keys)
	assert.Equal(t, uint64(240+240+480), doc.Tracks[1].Duration())

	var foundTempo bool
	for _, ev := range doc.Tracks[0].Events {
		if m, ok := ev.Message.(midifile.MetaMessage); ok {
			if us, ok := m.Tempo(); ok {
				assert.Equal(t, uint32(500000), us)
				foundTempo = true
			}
		}
	}
	assert.True(t, foundTempo)
}

func TestInterop_GomidiReadsEncoderOutput(t *testing.T) {
	doc, err := midifile.Decode(gomidiFixture(t))
	require.NoError(t, err)

	out, err := midifile.Encode(doc)
	require.NoError(t, err)

	parsed, err := smf.ReadFrom(bytes.NewReader(out))
	require.NoError(t, err)
	require.Len(t, parsed.Tracks, len(doc.Tracks))

	for i, track := range parsed.Tracks {
		require.Len(t, track, len(doc.Tracks[i].Events), "track %d", i)

		var total uint64
		for _, ev := range track {
			total += uint64(ev.Delta)
		}
		assert.Equal(t, doc.Tracks[i].Duration(), total, "track %d", i)
	}

	var keys []uint8
	for _, ev := range parsed.Tracks[1] {
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			keys = append(keys, key)
		}
	}
	assert.Equal(t, []uint8{36, 38, 42}, keys)

	var bpm float64
	var foundTempo bool
	for _, ev := range parsed.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			foundTempo = true
		}
	}
	assert.True(t, foundTempo)
	assert.InDelta(t, 120.0, bpm, 0.01)
}
