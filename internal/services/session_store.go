package services

import (
	"sync"
	"time"
)

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// SessionStore keeps sessions in memory and drops those idle longer than ttl.
type SessionStore struct {
	chain *RouteChain
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionStore(chain *RouteChain, ttl time.Duration) *SessionStore {
	return &SessionStore{
		chain:    chain,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Get returns the live session for id, creating one when id is unknown,
// expired or empty. Callers must use the returned session's ID from then on.
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweep(now)

	if e, ok := st.sessions[id]; ok && id != "" {
		e.lastSeen = now
		return e.session
	}

	s := st.chain.NewSession("")
	st.sessions[s.ID] = &sessionEntry{session: s, lastSeen: now}
	return s
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) sweep(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
}
