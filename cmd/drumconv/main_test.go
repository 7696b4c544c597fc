package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"
	"github.com/stretchr/testify/assert"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/drumconv/pkg/drummap"
	"github.com/aretw0/drumconv/pkg/midifile"
)

// run executes the command tree with args and returns what it printed.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	verbose, mapRef, configPath = false, "", ""
	inspectJSON, mapJSON = false, false
	resetUsage(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetUsage undoes SilenceUsage set by a previous run.
func resetUsage(cmd *cobra.Command) {
	cmd.SilenceUsage = false
	for _, c := range cmd.Commands() {
		resetUsage(c)
	}
}

func writeSong(t *testing.T, path string, keys ...uint8) {
	t.Helper()
	var events []midifile.Event
	events = append(events, midifile.Event{Message: midifile.MetaMessage{Kind: midifile.StatusMeta, Type: midifile.MetaTrackName, Data: []byte("Drums")}})
	for _, k := range keys {
		events = append(events,
			midifile.Event{Message: midifile.NoteOn{Channel: 9, Key: k, Velocity: 100}},
			midifile.Event{Delta: 120, Message: midifile.NoteOff{Channel: 9, Key: k}},
		)
	}
	events = append(events, midifile.Event{Message: midifile.MetaMessage{Kind: midifile.StatusMeta, Type: midifile.MetaEndOfTrack, Data: []byte{}}})

	data, err := midifile.Encode(&midifile.Document{Header: midifile.Header{Division: 480}, Tracks: []midifile.Track{{Events: events}}})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Success", nil, 0},
		{"Plain Error", errors.New("boom"), exitFailure},
		{"Invalid Input", fault.Wrap(errors.New("bad"), ftag.With(ftag.InvalidArgument)), exitInvalid},
		{"Missing Input", fault.Wrap(os.ErrNotExist, ftag.With(ftag.NotFound)), exitIO},
		{"Output Exists", fault.Wrap(errors.New("exists"), ftag.With(ftag.AlreadyExists)), exitIO},
		{"Permission", fault.Wrap(errors.New("denied"), ftag.With(ftag.PermissionDenied)), exitIO},
		{"Encode Failure", fault.Wrap(errors.New("encode"), ftag.With(ftag.Internal)), exitFailure},
		{"Invalid Drum Map", fmt.Errorf("load drum map: %w", drummap.ErrInvalid), exitInvalid},
		{"Unknown Drum Map", fmt.Errorf("load drum map: %w", drummap.ErrUnknownMap), exitInvalid},
		{"Untagged Not Exist", fmt.Errorf("read: %w", os.ErrNotExist), exitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRoot_MissingArguments(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, args := range [][]string{{}, {"only-input.mid"}} {
		stdout, stderr, err := run(t, args...)
		require.Error(t, err)
		assert.Equal(t, exitFailure, exitCode(err))
		// cobra prints usage to the configured output, stderr by default.
		assert.Contains(t, stdout+stderr, "Usage:")
	}
}

func TestRoot_Convert(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSong(t, "groove.mid", 36)

	stdout, _, err := run(t, "groove.mid", "groove-pv.mid")
	require.NoError(t, err)
	assert.Equal(t, "Converted MIDI file saved to groove-pv.mid\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "groove-pv.mid"))
	require.NoError(t, err)
	doc, err := midifile.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, midifile.NoteOn{Channel: 9, Key: 24, Velocity: 100}, doc.Tracks[0].Events[1].Message)
}

func TestConvert_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("garbage.mid", []byte("not midi"), 0644))

	_, _, err := run(t, "convert", "garbage.mid", "out.mid")
	require.Error(t, err)
	assert.Equal(t, exitInvalid, exitCode(err))
	assert.NoFileExists(t, "out.mid")

	_, _, err = run(t, "convert", "missing.mid", "out.mid")
	require.Error(t, err)
	assert.Equal(t, exitIO, exitCode(err))
}

func TestConvert_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSong(t, "groove.mid", 36)
	require.NoError(t, os.WriteFile("kit.yaml", []byte("name: kit\ncategories:\n  - name: kick\n    mappings:\n      - {from: C1, to: B0}\n"), 0644))
	require.NoError(t, os.WriteFile("drumconv.yaml", []byte("map: kit.yaml\n"), 0644))

	_, _, err := run(t, "convert", "groove.mid", "out.mid")
	require.NoError(t, err)

	data, err := os.ReadFile("out.mid")
	require.NoError(t, err)
	doc, err := midifile.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(35), doc.Tracks[0].Events[1].Message.(midifile.NoteOn).Key)

	t.Run("Flag Wins Over Config", func(t *testing.T) {
		_, _, err := run(t, "--map", drummap.DefaultName, "convert", "groove.mid", "out.mid")
		require.NoError(t, err)

		data, err := os.ReadFile("out.mid")
		require.NoError(t, err)
		doc, err := midifile.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, uint8(24), doc.Tracks[0].Events[1].Message.(midifile.NoteOn).Key)
	})
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSong(t, filepath.Join("songs", "a.mid"), 36)
	writeSong(t, filepath.Join("songs", "fills", "b.mid"), 38)

	stdout, _, err := run(t, "batch", "--root", "songs", "--out", "pv", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Converted 2 files into pv")
	assert.FileExists(t, filepath.Join(dir, "pv", "a.mid"))
	assert.FileExists(t, filepath.Join(dir, "pv", "fills", "b.mid"))
}

func TestInspect_JSON(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSong(t, "groove.mid", 36, 36, 60)

	stdout, _, err := run(t, "inspect", "--json", "groove.mid")
	require.NoError(t, err)

	var got inspection
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Tracks, 1)
	assert.Equal(t, "Drums", got.Tracks[0].Name)
	assert.Equal(t, 3, got.Tracks[0].Notes)
	assert.Equal(t, drummap.DefaultName, got.Map)
	assert.Equal(t, []noteCount{
		{Note: "C1", ID: 36, Count: 2, Category: "kick", To: "C0"},
		{Note: "C3", ID: 60, Count: 1},
	}, got.Notes)
}

func TestMap(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := run(t, "map", "--json")
	require.NoError(t, err)

	var got mapListing
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, drummap.DefaultName, got.Name)
	assert.Len(t, got.Entries, 92)
	assert.Contains(t, got.Builtin, drummap.DefaultName)
}

func TestMapValidate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("good.yaml", []byte("name: good\ncategories:\n  - name: kick\n    mappings:\n      - {from: C1, to: C0}\n"), 0644))
	require.NoError(t, os.WriteFile("bad.yaml", []byte("name: bad\ncategories:\n  - name: kick\n    mappings:\n      - {from: H9, to: C0}\n"), 0644))

	stdout, _, err := run(t, "map", "validate", "good.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, `map "good" is valid, 1 notes`)

	_, _, err = run(t, "map", "validate", "bad.yaml")
	require.Error(t, err)
	assert.Equal(t, exitInvalid, exitCode(err))
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^drumconv version \d+\.\d+\.\d+\n$`, stdout)
}
