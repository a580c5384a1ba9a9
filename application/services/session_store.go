package services

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// errStaleSignOn is returned when a sign-off for the same user landed
// while a sign-on was waiting for its token.
var errStaleSignOn = errors.New("sign-on superseded by a later sign-off")

// Session is a signed-on user's token and profile location.
type Session struct {
	ID         string
	UserID     string
	Token      string
	Partition  string
	Row        string
	SignedOnAt time.Time
	ExpiresAt  time.Time
}

// SessionStore is the process-wide map of signed-on users. Every access
// takes a single lock.
//
// Each user has a generation that every sign-off advances. A sign-on takes
// a ticket holding the generation before it calls out for a token and may
// only commit if no sign-off happened in between.
type SessionStore struct {
	clock clockwork.Clock

	mu          sync.RWMutex
	sessions    map[string]*Session
	generations map[string]uint64
}

// NewSessionStore creates an empty store. A nil clock uses real time.
func NewSessionStore(clock clockwork.Clock) *SessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionStore{
		clock:       clock,
		sessions:    make(map[string]*Session),
		generations: make(map[string]uint64),
	}
}

// Begin returns the ticket a sign-on for userID must present to Commit.
func (s *SessionStore) Begin(userID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[userID]
}

// Commit records sess if no sign-off for the user happened since Begin.
func (s *SessionStore) Commit(ticket uint64, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[sess.UserID] != ticket {
		return errStaleSignOn
	}
	s.sessions[sess.UserID] = sess
	return nil
}

// End removes userID's session and invalidates in-flight sign-ons. It
// reports the removed session, if there was one.
func (s *SessionStore) End(userID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[userID]++
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, userID)
	return sess, true
}

// Get returns userID's session. An expired session is dropped and
// reported as absent.
func (s *SessionStore) Get(userID string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !sess.ExpiresAt.IsZero() && !s.clock.Now().Before(sess.ExpiresAt) {
		s.mu.Lock()
		if current, ok := s.sessions[userID]; ok && current == sess {
			delete(s.sessions, userID)
		}
		s.mu.Unlock()
		return nil, false
	}
	return sess, true
}

// Len returns the number of live entries, expired ones included
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
