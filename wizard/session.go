package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"petbudget/store"
)

// DefaultTTL is how long an untouched wizard session survives.
const DefaultTTL = 2 * time.Hour

type session struct {
	engine   *Engine
	lastSeen time.Time
}

// Sessions hosts one engine per in-flight wizard, keyed by an opaque id the
// client carries between requests. Abandoned sessions are dropped lazily.
type Sessions struct {
	mu     sync.Mutex
	byID   map[string]*session
	ttl    time.Duration
	st     store.Store
	notify Notifier
	now    func() time.Time
}

func NewSessions(st store.Store, notify Notifier, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{
		byID:   make(map[string]*session),
		ttl:    ttl,
		st:     st,
		notify: notify,
		now:    time.Now,
	}
}

// Start creates a fresh engine and returns its session id.
func (s *Sessions) Start() (string, *Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	id := uuid.New().String()
	e := New(s.st, s.notify)
	s.byID[id] = &session{engine: e, lastSeen: s.now()}
	return id, e
}

// Get returns the engine for id, refreshing its TTL.
func (s *Sessions) Get(id string) (*Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.lastSeen) > s.ttl {
		delete(s.byID, id)
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.engine, true
}

// End discards a session, normally right after a successful submit.
func (s *Sessions) End(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// sweep drops expired sessions. Caller holds the lock.
func (s *Sessions) sweep() {
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			delete(s.byID, id)
		}
	}
}
