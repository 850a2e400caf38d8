package recyclebin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SetActiveKindClearsSelection(t *testing.T) {
	s := NewSession()
	s.mu.Lock()
	s.assets = []DeletedRecord{record(1, "Laptop")}
	s.components = []DeletedRecord{record(10, "RAM stick")}
	s.mu.Unlock()

	s.SetSelected(1, true)
	require.Len(t, s.Selection(), 1)

	s.SetActiveKind(KindComponent)
	assert.Empty(t, s.Selection(), "selection never leaks across tabs")
	assert.Equal(t, KindComponent, s.ActiveKind())

	// Re-selecting the same tab is a no-op.
	s.SetSelected(10, true)
	s.SetActiveKind(KindComponent)
	assert.Len(t, s.Selection(), 1)
}

func TestSession_SetSelectedIgnoresUnknownID(t *testing.T) {
	s := NewSession()
	s.mu.Lock()
	s.assets = []DeletedRecord{record(1, "Laptop")}
	s.mu.Unlock()

	s.SetSelected(99, true)
	assert.Empty(t, s.Selection())

	s.SetSelected(1, true)
	s.SetSelected(1, false)
	assert.Empty(t, s.Selection())
}

func TestSession_BeginReloadResetsViewState(t *testing.T) {
	s := NewSession()
	s.mu.Lock()
	s.assets = []DeletedRecord{record(1, "Laptop")}
	s.loadFailed = true
	s.loadError = "boom"
	s.mu.Unlock()
	s.SetSelected(1, true)

	gen := s.beginReload()

	assert.Empty(t, s.Records(KindAsset))
	assert.Empty(t, s.Selection())
	failed, msg := s.LoadState()
	assert.False(t, failed)
	assert.Empty(t, msg)

	s.mu.Lock()
	current := s.stillCurrentLocked(gen)
	s.mu.Unlock()
	assert.True(t, current)

	s.beginReload()
	s.mu.Lock()
	current = s.stillCurrentLocked(gen)
	s.mu.Unlock()
	assert.False(t, current, "an older generation token must be rejected")
}

func TestSession_ToastDismissal(t *testing.T) {
	s := NewSession()

	s.pushToast("info", "first")
	s.pushToast("error", "second")

	toasts := s.Toasts()
	require.Len(t, toasts, 2)

	s.DismissToast(toasts[0].ID)
	toasts = s.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "second", toasts[0].Message)

	// Dismissing twice is harmless.
	s.DismissToast("no-such-toast")
	assert.Len(t, s.Toasts(), 1)
}

func TestSession_CloseStopsToasts(t *testing.T) {
	s := NewSession()
	s.pushToast("info", "pending")
	s.Close()

	assert.Empty(t, s.Toasts())

	// A closed session accepts no new toasts.
	s.pushToast("info", "late")
	assert.Empty(t, s.Toasts())
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(time.Hour)

	s := m.Create()
	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Remove(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	assert.True(t, closed)
}

func TestManager_EvictIdle(t *testing.T) {
	m := NewManager(time.Minute)

	stale := m.Create()
	stale.mu.Lock()
	stale.lastAccess = time.Now().Add(-2 * time.Minute)
	stale.mu.Unlock()

	active := m.Create()

	assert.Equal(t, 1, m.EvictIdle())
	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(active.ID)
	assert.True(t, ok)
}

func TestManager_EvictionDisabled(t *testing.T) {
	m := NewManager(0)
	s := m.Create()
	s.mu.Lock()
	s.lastAccess = time.Now().Add(-24 * time.Hour)
	s.mu.Unlock()

	assert.Zero(t, m.EvictIdle())
}
