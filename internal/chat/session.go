package chat

import (
	"sync"
	"time"

	"github.com/lucidia/lucid-server/internal/model"
)

// SessionStore keeps per-user conversation state in memory. Sessions idle
// longer than the TTL are dropped on next access.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
	now      func() time.Time
}

type session struct {
	messages []model.ChatMessage
	topics   []string
	lastSeen time.Time
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *SessionStore) get(email string) *session {
	sess, ok := s.sessions[email]
	if ok && s.now().Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, email)
		ok = false
	}
	if !ok {
		sess = &session{}
		s.sessions[email] = sess
	}
	sess.lastSeen = s.now()
	return sess
}

// History returns a copy of the user's message history.
func (s *SessionStore) History(email string) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(email)
	return append([]model.ChatMessage(nil), sess.messages...)
}

// Append adds messages to the user's history.
func (s *SessionStore) Append(email string, messages ...model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(email)
	sess.messages = append(sess.messages, messages...)
}

// PushTopic records a theme surfaced during search chat.
func (s *SessionStore) PushTopic(email, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(email)
	sess.topics = append(sess.topics, topic)
}

// CurrentTopic returns the most recently surfaced theme, if any.
func (s *SessionStore) CurrentTopic(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(email)
	if len(sess.topics) == 0 {
		return "", false
	}
	return sess.topics[len(sess.topics)-1], true
}

// Reset drops the user's session.
func (s *SessionStore) Reset(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, email)
}
