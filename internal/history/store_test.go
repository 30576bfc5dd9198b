package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/jump_tracker/internal/jump"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jumps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmptyStore(t *testing.T) {
	s := openTestStore(t)

	recent, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, ok, err := s.Best()
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInsertAndRecent(t *testing.T) {
	s := openTestStore(t)

	events := []jump.Event{
		{HeightM: 0.30, FlightTime: 0.49, Quality: 5.1, Timestamp: 10.0},
		{HeightM: 0.45, FlightTime: 0.61, Quality: 6.8, Timestamp: 25.0},
		{HeightM: 0.22, FlightTime: 0.42, Quality: 4.0, Timestamp: 40.0},
	}
	for _, ev := range events {
		require.NoError(t, s.Insert(ev))
	}

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Newest first
	assert.Equal(t, 40.0, recent[0].Timestamp)
	assert.Equal(t, 25.0, recent[1].Timestamp)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBestPicksHighest(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Insert(jump.Event{HeightM: 0.30, FlightTime: 0.49, Quality: 5.1, Timestamp: 10.0}))
	require.NoError(t, s.Insert(jump.Event{HeightM: 0.45, FlightTime: 0.61, Quality: 6.8, Timestamp: 25.0}))
	require.NoError(t, s.Insert(jump.Event{HeightM: 0.22, FlightTime: 0.42, Quality: 4.0, Timestamp: 40.0}))

	best, ok, err := s.Best()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.45, best.HeightM)
	assert.Equal(t, 25.0, best.Timestamp)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jumps.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(jump.Event{HeightM: 0.33, FlightTime: 0.52, Quality: 5.5, Timestamp: 1.0}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
