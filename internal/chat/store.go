package chat

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/themilan1337/nerdie/pkg/logger"
)

var ErrSessionNotFound = errors.New("chat session not found")

const recentChatLimit = 5

// Persister mirrors store mutations into durable storage. Persistence is
// best effort: the in-memory view stays authoritative for the process.
type Persister interface {
	LoadAll() ([]*Session, error)
	SaveSession(session *Session) error
	DeleteSession(id string) error
	Clear() error
}

// Store holds the ordered collection of chat sessions. Sessions are never
// implicitly deleted; only DeleteSession and ClearHistory remove them.
type Store struct {
	mu        sync.Mutex
	sessions  []*Session
	currentID string
	persister Persister
}

func NewStore() *Store {
	return &Store{}
}

// NewPersistentStore loads previously saved sessions and mirrors every
// mutation into the persister.
func NewPersistentStore(persister Persister) (*Store, error) {
	sessions, err := persister.LoadAll()
	if err != nil {
		return nil, err
	}
	return &Store{sessions: sessions, persister: persister}, nil
}

// CreateSession appends a new session and makes it current. An empty title
// falls back to the generic default.
func (s *Store) CreateSession(title string) string {
	if title == "" {
		title = DefaultTitle
	}

	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.currentID = session.ID
	s.mu.Unlock()

	s.persist(session)
	return session.ID
}

func (s *Store) SetCurrentSession(id string) {
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
}

func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

func (s *Store) CurrentSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.currentID)
}

func (s *Store) Session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

func (s *Store) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Session{}, s.sessions...)
}

// RecentChats returns the most recently updated sessions, newest first.
func (s *Store) RecentChats() []*Session {
	s.mu.Lock()
	recent := append([]*Session{}, s.sessions...)
	s.mu.Unlock()

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	if len(recent) > recentChatLimit {
		recent = recent[:recentChatLimit]
	}
	return recent
}

// AddMessage appends a message and refreshes the session's updated-at. The
// first user message retitles a session that still carries the generic
// title; an already-customized title is never touched.
func (s *Store) AddMessage(sessionID string, message Message) error {
	s.mu.Lock()
	session := s.findLocked(sessionID)
	if session == nil {
		s.mu.Unlock()
		return ErrSessionNotFound
	}

	session.Messages = append(session.Messages, message)
	session.UpdatedAt = time.Now()

	if message.Role == RoleUser && session.Title == DefaultTitle && countUserMessages(session) == 1 {
		session.Title = autoTitle(message.Content)
	}
	s.mu.Unlock()

	s.persist(session)
	return nil
}

// DeleteSession removes a session by id. Deleting the current session
// clears the current pointer; deleting any other session leaves it alone.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	s.sessions = kept
	if s.currentID == id {
		s.currentID = ""
	}
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.DeleteSession(id); err != nil {
			logger.Error("Failed to delete persisted chat session:", err)
		}
	}
}

func (s *Store) ClearHistory() {
	s.mu.Lock()
	s.sessions = nil
	s.currentID = ""
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Clear(); err != nil {
			logger.Error("Failed to clear persisted chat history:", err)
		}
	}
}

func (s *Store) findLocked(id string) *Session {
	for _, session := range s.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

func (s *Store) persist(session *Session) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveSession(session); err != nil {
		logger.Error("Failed to persist chat session:", err)
	}
}

func countUserMessages(session *Session) int {
	count := 0
	for _, message := range session.Messages {
		if message.Role == RoleUser {
			count++
		}
	}
	return count
}
