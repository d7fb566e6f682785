package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SetActiveReplacesSelection(t *testing.T) {
	m := NewManager()

	m.SetActive(42, "yt")
	m.SetActive(42, "ig")

	tool, ok := m.Active(42)
	require.True(t, ok)
	assert.Equal(t, "ig", tool)
	assert.Equal(t, 1, m.Len())
}

func TestManager_ActiveUnknownUser(t *testing.T) {
	m := NewManager()

	tool, ok := m.Active(42)
	assert.False(t, ok)
	assert.Empty(t, tool)
}

func TestManager_Clear(t *testing.T) {
	m := NewManager()

	m.SetActive(42, "yt")
	m.Clear(42)

	_, ok := m.Active(42)
	assert.False(t, ok)

	// Clearing an absent user is a no-op.
	m.Clear(7)
	assert.Equal(t, 0, m.Len())
}

func TestManager_SweepEvictsStaleSelections(t *testing.T) {
	m := NewManager()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.SetActive(1, "yt")

	now = now.Add(2 * time.Hour)
	m.SetActive(2, "ig")

	evicted := m.Sweep(time.Hour)
	assert.Equal(t, 1, evicted)

	_, ok := m.Active(1)
	assert.False(t, ok)

	tool, ok := m.Active(2)
	require.True(t, ok)
	assert.Equal(t, "ig", tool)
}

func TestManager_SweepNonPositiveMaxAge(t *testing.T) {
	m := NewManager()
	m.SetActive(1, "yt")

	assert.Equal(t, 0, m.Sweep(0))
	assert.Equal(t, 1, m.Len())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		userID := int64(i)

		wg.Add(1)
		go func() {
			defer wg.Done()

			m.SetActive(userID, "yt")
			m.Active(userID)
			m.SetActive(userID, "ig")
		}()
	}

	wg.Wait()
	assert.Equal(t, 16, m.Len())
}
