package recyclebin

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActionKind identifies a bulk workflow.
type ActionKind string

const (
	ActionRecover ActionKind = "recover"
	ActionDelete  ActionKind = "delete"
)

// actionState is the modal/workflow state of a session.
type actionState int

const (
	stateIdle actionState = iota
	stateConfirming
	stateSubmitting
)

// toastTTL is how long a transient message stays before auto-dismissal.
const toastTTL = 5 * time.Second

// Toast is a transient user-facing message.
type Toast struct {
	ID      string `json:"id"`
	Level   string `json:"level"` // info, error
	Message string `json:"message"`
}

// Session mirrors one console view instance: the deleted collections, lookup
// state, selection, modal workflow, and transient messages. All mutation goes
// through the session mutex; the mutex is never held across collaborator
// calls so the view stays responsive while requests are in flight.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	generation uint64 // bumped per reload; stale responses are dropped
	closed     bool
	lastAccess time.Time

	assets     []DeletedRecord
	components []DeletedRecord
	lookups    Lookups
	products   ProductCache

	activeKind Kind
	selection  map[int64]struct{} // scoped to activeKind

	loadFailed bool
	loadError  string

	modalAction ActionKind
	modalState  actionState
	modalTarget *int64 // set for single-row actions

	toasts []Toast
	timers map[string]*time.Timer
}

// NewSession creates an empty session on the assets tab.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		lastAccess: now,
		lookups:    NewLookups(),
		products:   make(ProductCache),
		activeKind: KindAsset,
		selection:  make(map[int64]struct{}),
		timers:     make(map[string]*time.Timer),
	}
}

// Close tears the session down, cancelling pending toast timers so no
// dismissal fires against a dead view.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = map[string]*time.Timer{}
	s.toasts = nil
}

func (s *Session) touch() {
	s.lastAccess = time.Now()
}

// SetActiveKind switches the tab. Selection never leaks across tabs.
func (s *Session) SetActiveKind(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if kind == s.activeKind {
		return
	}
	s.activeKind = kind
	s.selection = make(map[int64]struct{})
	s.modalState = stateIdle
	s.modalTarget = nil
}

// ActiveKind returns the current tab.
func (s *Session) ActiveKind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKind
}

// SetSelected checks or unchecks a row of the active tab. Ids not present in
// the active tab's records are ignored.
func (s *Session) SetSelected(id int64, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if !on {
		delete(s.selection, id)
		return
	}
	for _, rec := range s.recordsLocked(s.activeKind) {
		if rec.ID == id {
			s.selection[id] = struct{}{}
			return
		}
	}
}

// Selection returns the checked ids of the active tab.
func (s *Session) Selection() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	return ids
}

// Records returns a copy of one collection.
func (s *Session) Records(kind Kind) []DeletedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.recordsLocked(kind)
	out := make([]DeletedRecord, len(src))
	copy(out, src)
	return out
}

func (s *Session) recordsLocked(kind Kind) []DeletedRecord {
	if kind == KindComponent {
		return s.components
	}
	return s.assets
}

// LoadState reports the load-failure flag and message.
func (s *Session) LoadState() (failed bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFailed, s.loadError
}

// Toasts returns the currently visible transient messages.
func (s *Session) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// DismissToast removes a toast ahead of its timer.
func (s *Session) DismissToast(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeToastLocked(id)
}

// pushToast appends a message and schedules its own dismissal.
func (s *Session) pushToast(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushToastLocked(level, message)
}

func (s *Session) pushToastLocked(level, message string) {
	if s.closed {
		return
	}
	toast := Toast{ID: uuid.New().String(), Level: level, Message: message}
	s.toasts = append(s.toasts, toast)
	s.timers[toast.ID] = time.AfterFunc(toastTTL, func() {
		s.DismissToast(toast.ID)
	})
}

func (s *Session) removeToastLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i, toast := range s.toasts {
		if toast.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// beginReload clears view state for a fresh load and returns the new
// generation token. Responses carrying an older token are dropped.
func (s *Session) beginReload() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.generation++
	s.assets = nil
	s.components = nil
	s.selection = make(map[int64]struct{})
	s.loadFailed = false
	s.loadError = ""
	s.modalState = stateIdle
	s.modalTarget = nil
	return s.generation
}

// stillCurrentLocked reports whether a response tagged with gen may still be
// applied to this session.
func (s *Session) stillCurrentLocked(gen uint64) bool {
	return !s.closed && s.generation == gen
}

// --- Session manager ---

// Manager owns live sessions and evicts idle ones.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxIdle  time.Duration
}

// NewManager creates a session manager. maxIdle <= 0 disables eviction.
func NewManager(maxIdle time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		maxIdle:  maxIdle,
	}
}

// Create registers a new session.
func (m *Manager) Create() *Session {
	s := NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// EvictIdle closes sessions idle longer than maxIdle. Returns the count.
func (m *Manager) EvictIdle() int {
	if m.maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-m.maxIdle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastAccess.Before(cutoff)
		s.mu.Unlock()
		if idle {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}
