package lottery

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingKV struct {
	*MemoryKV
	failGet bool
	failSet bool
}

var errBackend = errors.New("backend down")

func (f *failingKV) Get(key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errBackend
	}
	return f.MemoryKV.Get(key)
}

func (f *failingKV) Set(key string, value []byte) error {
	if f.failSet {
		return errBackend
	}
	return f.MemoryKV.Set(key, value)
}

func testOptions() Options {
	seq := 0
	return Options{
		MaxUniverse:     5000,
		DefaultUniverse: 90,
		Retention:       10,
		Source:          NewSeededSource(7),
		Now:             func() time.Time { return time.Date(2025, 6, 1, 20, 0, seq, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
}

func newTestState(t *testing.T, kv KeyValueStore) *AppState {
	t.Helper()
	a, err := NewAppState(kv, testOptions())
	require.NoError(t, err)
	require.NoError(t, a.Load())
	return a
}

func TestAppState_LoadEmpty(t *testing.T) {
	a := newTestState(t, NewMemoryKV())
	snap := a.Snapshot()
	assert.Equal(t, 90, snap.Session.UniverseSize)
	assert.Empty(t, snap.Session.DrawnNumbers)
	assert.Empty(t, snap.History)
	assert.Equal(t, 90, snap.Remaining)
	assert.Equal(t, 10, snap.Retention)
	assert.Equal(t, 5000, snap.MaxUniverse)
}

func TestAppState_Scenario(t *testing.T) {
	kv := NewMemoryKV()
	a := newTestState(t, kv)

	for i := 0; i < 5; i++ {
		_, err := a.Draw()
		require.NoError(t, err)
	}
	drawn := a.Session().DrawnNumbers
	require.Len(t, drawn, 5)
	assert.Equal(t, []string{SessionKey}, kv.Keys())

	require.NoError(t, a.Discard())
	assert.Empty(t, a.Session().DrawnNumbers)
	assert.Empty(t, kv.Keys(), "an empty session is removed, not written")

	entry, ok, err := a.Archive([]int{7, 42, 13, 90, 1})
	require.NoError(t, err)
	require.True(t, ok)
	snap := a.Snapshot()
	require.Len(t, snap.History, 1)
	assert.Equal(t, []int{7, 42, 13, 90, 1}, snap.History[0].Numbers)
	assert.Equal(t, entry.ID, snap.History[0].ID)

	_, ok, err = a.Archive(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, a.Snapshot().History, 1)
}

func TestAppState_ResetArchivesSession(t *testing.T) {
	kv := NewMemoryKV()
	a := newTestState(t, kv)

	_, _, err := a.Reset()
	require.NoError(t, err)
	assert.Empty(t, a.Snapshot().History, "resetting an empty session archives nothing")

	for i := 0; i < 3; i++ {
		_, err := a.Draw()
		require.NoError(t, err)
	}
	drawn := a.Session().DrawnNumbers

	entry, ok, err := a.Reset()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, drawn, entry.Numbers)
	assert.Empty(t, a.Session().DrawnNumbers)
	assert.Equal(t, []string{HistoryKey}, kv.Keys())
}

func TestAppState_PersistAndReload(t *testing.T) {
	kv := NewMemoryKV()
	a := newTestState(t, kv)
	require.NoError(t, a.Configure(150))
	for i := 0; i < 4; i++ {
		_, err := a.Draw()
		require.NoError(t, err)
	}
	_, _, err := a.Reset()
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := a.Draw()
		require.NoError(t, err)
	}
	require.NoError(t, a.Save())
	want := a.Snapshot()

	b := newTestState(t, kv)
	got := b.Snapshot()
	assert.Equal(t, want.Session, got.Session)
	require.Len(t, got.History, len(want.History))
	for i := range want.History {
		assert.Equal(t, want.History[i].ID, got.History[i].ID)
		assert.Equal(t, want.History[i].Numbers, got.History[i].Numbers)
		assert.True(t, want.History[i].Timestamp.Equal(got.History[i].Timestamp))
	}
	assert.Equal(t, want.Remaining, got.Remaining)
}

func TestAppState_ConfigureValidation(t *testing.T) {
	a := newTestState(t, NewMemoryKV())
	_, err := a.Draw()
	require.NoError(t, err)
	before := a.Session()

	for _, n := range []int{0, 5001} {
		err := a.Configure(n)
		assert.True(t, IsValidation(err), "universe %d", n)
		assert.Equal(t, before, a.Session())
		assert.Empty(t, a.Snapshot().History)
	}

	require.NoError(t, a.Configure(5000))
	assert.Equal(t, 5000, a.UniverseSize())
	assert.Empty(t, a.Session().DrawnNumbers)
	history := a.Snapshot().History
	require.Len(t, history, 1, "the abandoned session is archived")
	assert.Equal(t, before.DrawnNumbers, history[0].Numbers)
}

func TestAppState_DrawUntilComplete(t *testing.T) {
	a := newTestState(t, NewMemoryKV())
	require.NoError(t, a.Configure(3))
	for i := 0; i < 3; i++ {
		_, err := a.Draw()
		require.NoError(t, err)
	}
	assert.True(t, a.IsComplete())
	_, err := a.Draw()
	assert.ErrorIs(t, err, ErrDrawComplete)
	assert.Len(t, a.Session().DrawnNumbers, 3)
}

func TestAppState_ClearAll(t *testing.T) {
	kv := NewMemoryKV()
	a := newTestState(t, kv)
	require.NoError(t, a.Configure(120))
	_, err := a.Draw()
	require.NoError(t, err)
	_, _, err = a.Reset()
	require.NoError(t, err)
	_, err = a.Draw()
	require.NoError(t, err)
	require.NotEmpty(t, kv.Keys())

	require.NoError(t, a.ClearAll())
	snap := a.Snapshot()
	assert.Empty(t, snap.Session.DrawnNumbers)
	assert.Empty(t, snap.History)
	assert.Equal(t, 90, snap.Session.UniverseSize)
	assert.Empty(t, kv.Keys())
}

func TestAppState_LoadTreatsBadDataAsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		session string
		history string
	}{
		{"malformed json", `[1, 2`, `{"version":1,"entries":`},
		{"wrong version", `{"version":9,"universeSize":90,"numbers":[1]}`, `{"version":9,"entries":[]}`},
		{"duplicate numbers", `[4, 4]`, `[]`},
		{"legacy numbers outside default universe", `[120]`, `not json`},
		{"universe above max", `{"version":1,"universeSize":6000,"numbers":[1]}`, `[{"id":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Set(SessionKey, []byte(tt.session)))
			require.NoError(t, kv.Set(HistoryKey, []byte(tt.history)))

			a := newTestState(t, kv)
			snap := a.Snapshot()
			assert.Empty(t, snap.Session.DrawnNumbers)
			assert.Equal(t, 90, snap.Session.UniverseSize)
			assert.Empty(t, snap.History)

			_, err := a.Draw()
			assert.NoError(t, err, "state stays usable")
		})
	}
}

func TestAppState_LoadLegacyLayout(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(SessionKey, []byte(`[12, 5, 90]`)))
	require.NoError(t, kv.Set(HistoryKey, []byte(`[{"id":1714557600000,"numbers":[5,6],"timestamp":"2024-05-01T10:00:00.000Z"}]`)))

	a := newTestState(t, kv)
	snap := a.Snapshot()
	assert.Equal(t, []int{12, 5, 90}, snap.Session.DrawnNumbers)
	assert.Equal(t, 87, snap.Remaining)
	require.Len(t, snap.History, 1)
	assert.Equal(t, "1714557600000", snap.History[0].ID)

	require.NoError(t, a.Save())
	data, ok, err := kv.Get(SessionKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"version":1,"universeSize":90,"numbers":[12,5,90]}`, string(data))
}

func TestAppState_BackendErrors(t *testing.T) {
	kv := &failingKV{MemoryKV: NewMemoryKV(), failGet: true}
	a, err := NewAppState(kv, testOptions())
	require.NoError(t, err)
	assert.ErrorIs(t, a.Load(), errBackend)

	kv.failGet = false
	kv.failSet = true
	n, err := a.Draw()
	assert.ErrorIs(t, err, errBackend)
	assert.NotZero(t, n)
	assert.Equal(t, []int{n}, a.Session().DrawnNumbers, "in-memory state stays authoritative")
}

func TestAppState_Entry(t *testing.T) {
	a := newTestState(t, NewMemoryKV())
	entry, _, err := a.Archive([]int{1, 2, 3})
	require.NoError(t, err)

	got, err := a.Entry(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Numbers, got.Numbers)

	_, err = a.Entry("missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestNewAppState_InvalidDefault(t *testing.T) {
	opts := testOptions()
	opts.DefaultUniverse = 0
	_, err := NewAppState(NewMemoryKV(), opts)
	assert.Error(t, err)
}
