// Package session holds chat conversations in process memory.
//
// The store is bounded: sessions are evicted least-recently-used once the
// capacity is reached, and after a period without activity. Each session
// carries its own mutex so concurrent requests on one session are applied one
// after another.
package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"coffee-shop/internal/domain"
)

// WelcomeText opens every new or reset conversation.
const WelcomeText = "Hello! I'm your coffee sommelier. How are you feeling today?"

// Store is the conversation store consumed by the chat use case.
type Store interface {
	// Acquire returns the locked session for id, creating it when missing or
	// when reset is true. The caller must call Release exactly once.
	Acquire(id string, reset bool) *Session
	// History returns a copy of the turns of an existing session.
	History(id string) ([]domain.Turn, bool)
}

// Session is one conversation. Methods other than Release may only be called
// between Acquire and Release.
type Session struct {
	ID string

	store *MemoryStore
	refs  int // holders and waiters, guarded by store.mu

	mu    sync.Mutex
	turns []domain.Turn
}

func newSession(id string, store *MemoryStore) *Session {
	return &Session{
		ID:    id,
		store: store,
		turns: welcomeTurns(),
	}
}

func welcomeTurns() []domain.Turn {
	return []domain.Turn{domain.NewBotTurn(WelcomeText)}
}

// Turns returns a copy of the session's turns.
func (s *Session) Turns() []domain.Turn {
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Append adds turns to the end of the session.
func (s *Session) Append(turns ...domain.Turn) {
	s.turns = append(s.turns, turns...)
}

// Release unlocks the session.
func (s *Session) Release() {
	s.mu.Unlock()
	if s.store != nil {
		s.store.release(s)
	}
}

// MemoryStore is a Store bounded by capacity and idle TTL. Sessions that are
// held or awaited stay in active, so every request on one id locks the same
// Session even if the cache evicted it meanwhile.
type MemoryStore struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, *Session]
	active map[string]*Session
}

// NewMemoryStore creates a store holding at most capacity sessions, each
// evicted after ttl without activity. ttl <= 0 disables expiry.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryStore{
		cache:  expirable.NewLRU[string, *Session](capacity, nil, ttl),
		active: map[string]*Session{},
	}
}

// Acquire blocks until no other request holds the session. A reset clears
// the turns in place once the lock is taken.
func (m *MemoryStore) Acquire(id string, reset bool) *Session {
	m.mu.Lock()
	sess, ok := m.active[id]
	if !ok {
		if sess, ok = m.cache.Peek(id); !ok {
			sess = newSession(id, m)
		}
		m.active[id] = sess
	}
	sess.refs++
	// Add refreshes both recency and expiry.
	m.cache.Add(id, sess)
	m.mu.Unlock()

	sess.mu.Lock()
	if reset {
		sess.turns = welcomeTurns()
	}
	return sess
}

func (m *MemoryStore) release(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess.refs--
	if sess.refs == 0 {
		delete(m.active, sess.ID)
	}
	// A session evicted while in use was just active; put it back.
	if _, ok := m.cache.Peek(sess.ID); !ok {
		m.cache.Add(sess.ID, sess)
	}
}

// History reads a session without counting as activity.
func (m *MemoryStore) History(id string) ([]domain.Turn, bool) {
	m.mu.Lock()
	sess, ok := m.active[id]
	if !ok {
		sess, ok = m.cache.Peek(id)
	}
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Turns(), true
}

// Len reports the number of cached sessions.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
