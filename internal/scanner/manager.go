package scanner

import (
	"sync"

	"washops/internal/domain"
	"washops/internal/metrics"
)

// Manager hands out scan sessions and enforces exclusive ownership: one
// operator session holds the scanner at a time. The source constructor is
// picked at startup so the concrete adapter can be swapped without touching
// session logic.
type Manager struct {
	newSource func() ScanSource
	rec       metrics.Recorder

	mu     sync.Mutex
	active *Session
}

func NewManager(newSource func() ScanSource, rec metrics.Recorder) *Manager {
	return &Manager{
		newSource: newSource,
		rec:       metrics.OrNop(rec),
	}
}

// Open acquires the scanner for a new session. Fails with
// ResourceUnavailable while another session holds it.
func (m *Manager) Open(cfg Config) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && !m.active.Closed() {
		return nil, domain.ResourceUnavailableError{Resource: "scanner"}
	}

	sess, err := newSession(m.newSource(), cfg, m.rec)
	if err != nil {
		return nil, err
	}
	m.active = sess
	return sess, nil
}

// Get looks up the session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.ID != id {
		return nil, false
	}
	return m.active, true
}

// Close tears down the session by id, releasing the scanner. Unknown ids and
// already-closed sessions are no-ops.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess != nil && sess.ID == id {
		sess.Close()
	}
}

// CloseActive releases whatever session is open; used on shutdown so no exit
// path leaves the scanner held.
func (m *Manager) CloseActive() {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
}
