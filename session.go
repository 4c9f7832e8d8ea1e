package main

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
)

// sessionTTL is how long an idle login token stays valid.
const sessionTTL = 7 * 24 * time.Hour

// session is per-login state the UI builds up between saves: workout sets
// queued for one batched append. The aggregator never sees it.
type session struct {
	mu       sync.Mutex
	queue    []balance.WorkoutEntry
	lastSeen time.Time
}

// Queued returns a copy of the queued entries.
func (s *session) Queued() []balance.WorkoutEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]balance.WorkoutEntry{}, s.queue...)
}

func (s *session) Enqueue(e balance.WorkoutEntry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, e)
	return len(s.queue)
}

// Drain empties the queue and returns what was in it.
func (s *session) Drain() []balance.WorkoutEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

// Restore puts entries back at the front of the queue after a failed save.
func (s *session) Restore(entries []balance.WorkoutEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(append([]balance.WorkoutEntry{}, entries...), s.queue...)
}

// sessionStore maps login tokens to sessions.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]*session{}, now: time.Now}
}

// Create starts a session and returns its token.
func (st *sessionStore) Create() string {
	token := uuid.NewString()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[token] = &session{lastSeen: st.now()}
	return token
}

// Get returns the live session for token, refreshing its idle timer.
// Expired sessions are removed.
func (st *sessionStore) Get(token string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[token]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(s.lastSeen) > sessionTTL {
		delete(st.sessions, token)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

func (st *sessionStore) Delete(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, token)
}
