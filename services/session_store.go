package services

import (
	"sync"
	"time"

	"github/itish2003/portfolio-rag/models"
)

// Session store defaults.
const (
	DefaultSessionMaxTurns     = 10
	DefaultAnswerPreviewLength = 200
)

// SessionStore keeps a bounded FIFO of turns per session for the lifetime of
// the process. Different sessions never contend for the same lock; requests
// within one session are serialised through Lock.
type SessionStore struct {
	maxTurns   int
	previewLen int
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	// request serialises whole requests for one session id.
	request sync.Mutex

	mu    sync.Mutex
	turns []models.Turn
}

// NewSessionStore creates an empty store. Non-positive arguments fall back to the defaults.
func NewSessionStore(maxTurns, previewLen int) *SessionStore {
	if maxTurns <= 0 {
		maxTurns = DefaultSessionMaxTurns
	}
	if previewLen <= 0 {
		previewLen = DefaultAnswerPreviewLength
	}
	return &SessionStore{
		maxTurns:   maxTurns,
		previewLen: previewLen,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

func (s *SessionStore) get(id string, create bool) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok && create {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// Lock blocks until no other request holds the session and returns the unlock func.
func (s *SessionStore) Lock(id string) func() {
	sess := s.get(id, true)
	sess.request.Lock()
	return sess.request.Unlock
}

// Append records a turn, evicting the oldest turns beyond the cap.
func (s *SessionStore) Append(id, question, answer string) {
	sess := s.get(id, true)
	turn := models.Turn{Question: question, Answer: answer, Timestamp: s.now()}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = append(sess.turns, turn)
	if over := len(sess.turns) - s.maxTurns; over > 0 {
		kept := make([]models.Turn, s.maxTurns)
		copy(kept, sess.turns[over:])
		sess.turns = kept
	}
}

// Recent returns at most maxTurns of the latest turns, oldest first, with
// answers cut to the preview length.
func (s *SessionStore) Recent(id string, maxTurns int) []models.Turn {
	sess := s.get(id, false)
	if sess == nil || maxTurns <= 0 {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	from := max(len(sess.turns)-maxTurns, 0)
	out := make([]models.Turn, 0, len(sess.turns)-from)
	for _, t := range sess.turns[from:] {
		t.Answer = truncateRunes(t.Answer, s.previewLen)
		out = append(out, t)
	}
	return out
}

// IsFirstTurn reports whether the session has no recorded turns yet.
func (s *SessionStore) IsFirstTurn(id string) bool {
	sess := s.get(id, false)
	if sess == nil {
		return true
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.turns) == 0
}

// Len returns the number of stored turns for id.
func (s *SessionStore) Len(id string) int {
	sess := s.get(id, false)
	if sess == nil {
		return 0
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.turns)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
