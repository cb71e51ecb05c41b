package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"shopbot.GO/cart"
	"shopbot.GO/catalog"
)

// PendingKind tags what the next free-text message from a session means.
// At most one pending mode at a time; free text with no mode pending is a
// no-op.
type PendingKind int

const (
	PendingNone PendingKind = iota
	PendingCity
	PendingReservation // key: the unavailable leaf being reserved
	PendingETA         // key: the leaf an admin is dating
)

// Pending is the session's tagged pending-input state.
type Pending struct {
	Kind PendingKind
	Key  catalog.Key
}

// Session is one user's conversational state: captured city, cart, pending
// mode, and the per-user mutation lock.
type Session struct {
	UserID int64

	Cart *cart.Cart

	mu       sync.Mutex // guards username, city and pending
	username string
	city     string
	pending  Pending

	action sync.Mutex // non-reentrant mutation lock, acquired via TryAcquire
}

// TryAcquire takes the session's exclusive mutation lock without blocking.
// A false return means another action for this user is still in flight and
// the caller should tell the user to wait, not queue or drop silently.
func (s *Session) TryAcquire() bool {
	return s.action.TryLock()
}

func (s *Session) Release() {
	s.action.Unlock()
}

func (s *Session) City() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.city
}

// Username returns the latest handle seen for this user. Handles change
// between updates, so every inbound event refreshes it.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) setUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
}

func (s *Session) Pending() Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SetPending installs a pending mode, displacing any previous one.
func (s *Session) SetPending(p Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = p
}

// ClearPending resets to no pending input.
func (s *Session) ClearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = Pending{}
}

// Store holds sessions keyed by user identity. Sessions are created on
// first contact and live for the process lifetime; only the captured city
// survives restarts, via the optional Redis client.
type Store struct {
	mu  sync.RWMutex
	m   map[int64]*Session
	rdb *redis.Client
}

// NewStore creates a session store. rdb may be nil (city persistence off).
func NewStore(rdb *redis.Client) *Store {
	return &Store{m: make(map[int64]*Session), rdb: rdb}
}

// Get returns the session for userID, creating it on first contact.
func (st *Store) Get(userID int64, username string) *Session {
	st.mu.RLock()
	s, ok := st.m[userID]
	st.mu.RUnlock()
	if ok {
		if username != "" {
			s.setUsername(username)
		}
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.m[userID]; ok {
		return s
	}
	s = &Session{UserID: userID, username: username, Cart: cart.New()}
	if st.rdb != nil {
		if city, err := st.rdb.Get(context.Background(), cityKey(userID)).Result(); err == nil {
			s.city = city
		}
	}
	st.m[userID] = s
	return s
}

// SetCity records the user's city and persists it when Redis is available.
func (st *Store) SetCity(s *Session, city string) {
	s.mu.Lock()
	s.city = city
	s.mu.Unlock()
	if st.rdb != nil {
		// cache only, sessions keep working without it
		_ = st.rdb.Set(context.Background(), cityKey(s.UserID), city, 90*24*time.Hour).Err()
	}
}

func cityKey(userID int64) string {
	return fmt.Sprintf("shopbot:city:%d", userID)
}
