package assistant

import "sync"

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// SessionStore keeps per-user conversation history, bounded to the most
// recent maxTurns messages per user. It is safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	maxTurns int
	sessions map[int64][]Message
}

// NewSessionStore creates a session store retaining at most maxTurns
// messages per user.
func NewSessionStore(maxTurns int) *SessionStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &SessionStore{
		maxTurns: maxTurns,
		sessions: make(map[int64][]Message),
	}
}

// History returns a copy of the user's conversation history, oldest
// first.
func (s *SessionStore) History(userID int64) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.sessions[userID]
	out := make([]Message, len(h))
	copy(out, h)
	return out
}

// Append records one turn, evicting the oldest messages beyond the
// retention bound.
func (s *SessionStore) Append(userID int64, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.sessions[userID], Message{Role: role, Content: content})
	if len(h) > s.maxTurns {
		h = h[len(h)-s.maxTurns:]
	}
	s.sessions[userID] = h
}

// Clear discards the user's history.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len reports the number of retained messages for the user.
func (s *SessionStore) Len(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[userID])
}
