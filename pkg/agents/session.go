package agents

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
)

const sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewSessionID returns a random 20-character alphanumeric identifier.
func NewSessionID() string {
	id := make([]byte, 20)
	max := big.NewInt(int64(len(sessionIDAlphabet)))
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(err)
		}
		id[i] = sessionIDAlphabet[n.Int64()]
	}
	return string(id)
}

// Session holds the live state of one mock interview.
type Session struct {
	ID         string
	UserID     string
	WorkflowID string
	StartTime  time.Time
	Duration   time.Duration

	// Candidate context loaded at session start.
	Experience *models.PersonalExperience
	QAs        []models.RecommendedQA

	mu         sync.Mutex
	system     string
	transcript []models.TranscriptEntry
	history    []types.Turn
}

// Expired reports whether the interview has run past its duration.
func (s *Session) Expired() bool {
	return time.Since(s.StartTime) >= s.Duration
}

// Deadline returns the instant the interview must end.
func (s *Session) Deadline() time.Time {
	return s.StartTime.Add(s.Duration)
}

// AppendUser records a candidate message.
func (s *Session) AppendUser(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, types.Turn{Role: "user", Content: text})
	s.transcript = append(s.transcript, models.TranscriptEntry{Role: "user", Message: text})
}

// AppendAI records an interviewer message.
func (s *Session) AppendAI(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, types.Turn{Role: "assistant", Content: text})
	s.transcript = append(s.transcript, models.TranscriptEntry{Role: "AI", Message: text})
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []models.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// History returns a copy of the chat turns sent to the model.
func (s *Session) History() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// SessionManager tracks active interview sessions in memory.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

func (m *SessionManager) Put(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
