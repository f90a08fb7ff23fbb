// Package session holds the authenticated operator context. The old client
// kept this as an ambient JSON blob in browser storage read from anywhere;
// here there is exactly one accessor (Manager.Current) and explicit mutation
// on login/logout, with the blob persisted to a file between runs.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const RoleAdmin = "ADMIN"

// Session is the operator context attached to every backend call.
type Session struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id"`
	BranchID  string `json:"branch_id"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Expired reports whether the backend-issued lifetime has passed. The backend
// remains the authority; this only lets the UI skip a doomed call.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt)
}

// Store persists the session blob between runs.
type Store struct {
	path string
}

func NewStore(path string) *Store { return &Store{path: path} }

// Load returns the stored session, or nil when there is none. A corrupt file
// counts as no session, matching how the old client treated unreadable
// storage.
func (st *Store) Load() (*Session, error) {
	raw, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || s.SessionID == "" {
		return nil, nil
	}
	return &s, nil
}

func (st *Store) Save(s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(st.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(st.path, raw, 0o600)
}

func (st *Store) Clear() error {
	err := os.Remove(st.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Manager is the single process-wide holder of the current session.
type Manager struct {
	mu    sync.RWMutex
	cur   *Session
	store *Store
}

// NewManager hydrates from the store when one is given.
func NewManager(store *Store) (*Manager, error) {
	m := &Manager{store: store}
	if store != nil {
		s, err := store.Load()
		if err != nil {
			return nil, err
		}
		m.cur = s
	}
	return m, nil
}

// Current returns a copy of the active session, if any.
func (m *Manager) Current() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return nil, false
	}
	cp := *m.cur
	return &cp, true
}

// Set installs a new session (login).
func (m *Manager) Set(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = s
	if m.store != nil {
		return m.store.Save(s)
	}
	return nil
}

// Clear drops the session (logout or forced invalidation).
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = nil
	if m.store != nil {
		return m.store.Clear()
	}
	return nil
}
