package core_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
	"testing"

	"github.com/Southclaws/fault/ftag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/drumconv/pkg/core"
	"github.com/aretw0/drumconv/pkg/midifile"
)

// MockRepository implements core.Repository and core.Listable in memory.
// It deliberately does NOT implement core.Watchable.
type MockRepository struct {
	mu        sync.Mutex
	files     map[string][]byte
	noClobber bool
	failWrite error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{files: make(map[string][]byte)}
}

func (m *MockRepository) Load(ctx context.Context, p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m *MockRepository) Store(ctx context.Context, p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	if _, ok := m.files[p]; ok && m.noClobber {
		return fmt.Errorf("%s: %w", p, core.ErrOutputExists)
	}
	m.files[p] = data
	return nil
}

func (m *MockRepository) List(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		if ok, _ := path.Match(pattern, p); ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func encodeDoc(t *testing.T, doc *midifile.Document) []byte {
	t.Helper()
	data, err := midifile.Encode(doc)
	require.NoError(t, err)
	return data
}

func newService(t *testing.T, repo core.Repository) *core.Service {
	t.Helper()
	return core.NewService(repo, shippedTable(t), core.ServiceConfig{Workers: 2})
}

func TestService_Convert(t *testing.T) {
	repo := NewMockRepository()
	repo.files["in.mid"] = encodeDoc(t, noteDoc(36, 38, 60))
	svc := newService(t, repo)

	rep, err := svc.Convert(context.Background(), "in.mid", "out.mid")
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Notes)
	assert.Equal(t, 2, rep.Translated)

	out, err := midifile.Decode(repo.files["out.mid"])
	require.NoError(t, err)
	assert.Equal(t, []uint8{24, 26, 60}, keysOf(out.Tracks[0]))

	// The input is left alone.
	in, err := midifile.Decode(repo.files["in.mid"])
	require.NoError(t, err)
	assert.Equal(t, []uint8{36, 38, 60}, keysOf(in.Tracks[0]))

	st := svc.State().(core.ServiceState)
	assert.Equal(t, 1, st.Runs)
	assert.Equal(t, 0, st.Failures)
	assert.Equal(t, "in.mid", st.LastInput)
	assert.Equal(t, 92, st.Mappings)
	assert.Equal(t, "service", svc.ComponentType())
}

func TestService_ConvertBytes(t *testing.T) {
	svc := newService(t, NewMockRepository())

	out, rep, err := svc.ConvertBytes(context.Background(), encodeDoc(t, noteDoc(40)))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Translated)

	doc, err := midifile.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, []uint8{26}, keysOf(doc.Tracks[0]))
}

func TestService_ConvertErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*MockRepository)
		kind  ftag.Kind
		is    error
	}{
		{
			name:  "Missing Input",
			setup: func(*MockRepository) {},
			kind:  ftag.NotFound,
			is:    fs.ErrNotExist,
		},
		{
			name: "Malformed Input",
			setup: func(r *MockRepository) {
				r.files["in.mid"] = []byte("MThd\x00\x00\x00\x06\x00\x00\x00\x01\x00\x60MTrk\x00\x00\x00\x03\x00\x99\x24")
			},
			kind: ftag.InvalidArgument,
			is:   midifile.ErrLengthMismatch,
		},
		{
			name: "Unwritable Output",
			setup: func(r *MockRepository) {
				r.files["in.mid"] = encodeDoc(t, noteDoc(36))
				r.failWrite = &fs.PathError{Op: "rename", Path: "out.mid", Err: fs.ErrPermission}
			},
			kind: ftag.PermissionDenied,
			is:   fs.ErrPermission,
		},
		{
			name: "Existing Output",
			setup: func(r *MockRepository) {
				r.files["in.mid"] = encodeDoc(t, noteDoc(36))
				r.files["out.mid"] = []byte("keep me")
				r.noClobber = true
			},
			kind: ftag.AlreadyExists,
			is:   core.ErrOutputExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockRepository()
			tt.setup(repo)
			svc := newService(t, repo)

			_, err := svc.Convert(context.Background(), "in.mid", "out.mid")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			assert.Equal(t, tt.kind, ftag.Get(err))

			if tt.kind != ftag.AlreadyExists {
				_, written := repo.files["out.mid"]
				assert.False(t, written, "no partial output")
			}
			assert.Equal(t, 1, svc.State().(core.ServiceState).Failures)
		})
	}

	t.Run("Decode Error Is Recognised", func(t *testing.T) {
		svc := newService(t, NewMockRepository())
		_, _, err := svc.ConvertBytes(context.Background(), []byte("RIFF"))
		assert.True(t, core.IsDecodeError(err))
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := newService(t, NewMockRepository())
		_, _, err := svc.ConvertBytes(ctx, encodeDoc(t, noteDoc(36)))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, ftag.Cancelled, ftag.Get(err))
	})
}

func TestService_ConvertAll(t *testing.T) {
	repo := NewMockRepository()
	for i := range 5 {
		repo.files[fmt.Sprintf("song%d.mid", i)] = encodeDoc(t, noteDoc(36, 42))
	}
	repo.files["notes.txt"] = []byte("not midi")
	svc := newService(t, repo)

	batch, err := svc.ConvertAll(context.Background(), "*.mid", func(p string) string { return "pv/" + p }, nil)
	require.NoError(t, err)

	// Files come back sorted whatever order the workers finished in.
	assert.Equal(t, []string{"song0.mid", "song1.mid", "song2.mid", "song3.mid", "song4.mid"}, batch.Files)
	assert.Equal(t, 10, batch.Report.Notes)
	assert.Equal(t, 10, batch.Report.Translated)
	assert.Equal(t, map[string]int{"kick": 5, "hihat": 5}, batch.Report.PerCategory)

	for i := range 5 {
		out, err := midifile.Decode(repo.files[fmt.Sprintf("pv/song%d.mid", i)])
		require.NoError(t, err)
		assert.Equal(t, []uint8{24, 43}, keysOf(out.Tracks[0]))
	}
}

func TestService_ConvertAll_SkipsExistingOutputs(t *testing.T) {
	repo := NewMockRepository()
	repo.noClobber = true
	repo.files["a.mid"] = encodeDoc(t, noteDoc(36))
	repo.files["b.mid"] = encodeDoc(t, noteDoc(36))
	repo.files["out/a.mid"] = []byte("old")
	svc := newService(t, repo)

	batch, err := svc.ConvertAll(context.Background(), "*.mid", func(p string) string { return "out/" + p }, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.mid"}, batch.Files)
	assert.Equal(t, []string{"a.mid"}, batch.Skipped)
	assert.Equal(t, []byte("old"), repo.files["out/a.mid"])
}

func TestService_ConvertAll_Exclude(t *testing.T) {
	repo := NewMockRepository()
	repo.files["a.mid"] = encodeDoc(t, noteDoc(36))
	repo.files["pv-a.mid"] = encodeDoc(t, noteDoc(24))
	svc := newService(t, repo)

	previousOutput := func(p string) bool { return p == "pv-a.mid" }
	batch, err := svc.ConvertAll(context.Background(), "*.mid", func(p string) string { return "pv-" + p }, previousOutput)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mid"}, batch.Files)
	assert.Empty(t, batch.Skipped)
	assert.NotContains(t, repo.files, "pv-pv-a.mid")

	out, err := midifile.Decode(repo.files["pv-a.mid"])
	require.NoError(t, err)
	assert.Equal(t, []uint8{24}, keysOf(out.Tracks[0]))
}

func TestService_ConvertAll_StopsOnFirstFailure(t *testing.T) {
	repo := NewMockRepository()
	repo.files["good.mid"] = encodeDoc(t, noteDoc(36))
	repo.files["bad.mid"] = []byte("garbage")
	svc := newService(t, repo)

	_, err := svc.ConvertAll(context.Background(), "*.mid", func(p string) string { return "out/" + p }, nil)
	require.Error(t, err)
	assert.Equal(t, ftag.InvalidArgument, ftag.Get(err))
}

type loadOnly struct{}

func (loadOnly) Load(context.Context, string) ([]byte, error) { return nil, errors.New("unused") }
func (loadOnly) Store(context.Context, string, []byte) error { return errors.New("unused") }

func TestService_Unsupported(t *testing.T) {
	svc := newService(t, loadOnly{})

	_, err := svc.ConvertAll(context.Background(), "*.mid", nil, nil)
	assert.ErrorIs(t, err, core.ErrNotListable)

	_, err = svc.Watch(context.Background(), "**/*.mid")
	assert.ErrorIs(t, err, core.ErrNotWatchable)
}
