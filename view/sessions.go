package view

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andrewpaige1/roadmap-api/metrics"
	"github.com/andrewpaige1/roadmap-api/roadmap"
)

var ErrNotFound = errors.New("view session not found")

// Session is one opened roadmap view owned by a user.
type Session struct {
	ID      string
	OwnerID uint
	// EntryID is the history entry the view was opened from, empty for unsaved roadmaps.
	EntryID string
	State   *State

	lastSeen time.Time
}

// Sessions keeps view states in memory, keyed by id and scoped to their owner. Idle
// sessions expire after the ttl.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	limits   ZoomLimits
	ttl      time.Duration
	now      func() time.Time
}

func NewSessions(limits ZoomLimits, ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		limits:   limits,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Open lays out the document and registers a new session for it.
func (s *Sessions) Open(ownerID uint, entryID string, doc *roadmap.Document) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		EntryID: entryID,
		State:   New(doc.Stages, s.limits),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	metrics.ViewSessions.Set(float64(len(s.sessions)))
	return sess
}

// Get returns the owner's session and refreshes its expiry. Sessions belonging to other
// owners are reported as not found.
func (s *Sessions) Get(ownerID uint, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()

	sess, ok := s.sessions[id]
	if !ok || sess.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

func (s *Sessions) Close(ownerID uint, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.sessions, id)
	metrics.ViewSessions.Set(float64(len(s.sessions)))
	return nil
}

// CloseEntry drops every session opened from a history entry, used when the entry is
// deleted.
func (s *Sessions) CloseEntry(ownerID uint, entryID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := 0
	for id, sess := range s.sessions {
		if sess.OwnerID == ownerID && sess.EntryID == entryID {
			delete(s.sessions, id)
			closed++
		}
	}
	metrics.ViewSessions.Set(float64(len(s.sessions)))
	return closed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) evictLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	metrics.ViewSessions.Set(float64(len(s.sessions)))
}
