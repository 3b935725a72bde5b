package storage

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/doccatalog/internal/session"
)

// ErrSessionOpen is returned by Add while another import is still undecided
var ErrSessionOpen = errors.New("another import session is already open")

// Entry is an import session held by the web driver. Callers hold the
// entry lock for every session call.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Session   *session.Session

	// release drops the manifest lock; set to nil once called
	release func()
	mu      sync.Mutex
}

func NewEntry(id string, s *session.Session, release func()) *Entry {
	return &Entry{
		ID:        id,
		CreatedAt: time.Now(),
		Session:   s,
		release:   release,
	}
}

func (e *Entry) Lock()   { e.mu.Lock() }
func (e *Entry) Unlock() { e.mu.Unlock() }

// Open reports whether the session still has work pending. The caller must
// hold the entry lock.
func (e *Entry) Open() bool {
	switch e.Session.State() {
	case session.Active, session.Exhausted:
		return true
	case session.Finalized:
		return e.Session.SaveFailed()
	default:
		return false
	}
}

// Release drops the manifest lock once. The caller must hold the entry lock.
func (e *Entry) Release() {
	if e.release != nil {
		e.release()
		e.release = nil
	}
}

type SessionStore struct {
	sessions map[string]*Entry
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Entry),
	}
}

func (s *SessionStore) Get(sessionID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.sessions[sessionID]
	return entry, exists
}

// Add stores entry unless another stored session is still open
func (s *SessionStore) Add(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sessions {
		existing.Lock()
		open := existing.Open()
		existing.Unlock()
		if open {
			return ErrSessionOpen
		}
	}

	s.sessions[entry.ID] = entry
	return nil
}

// GetAll returns the stored sessions, oldest first
func (s *SessionStore) GetAll() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
