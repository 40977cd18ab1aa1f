package repository

import (
	"fmt"
	"sync"

	"github.com/themilan1337/nerdie/internal/auth/domain"
)

// SessionStore owns the persisted session trio on top of a raw Storage.
// All writes touch the three keys as one batch under one lock, so no reader,
// in this process or another, ever observes a token without its record or
// vice versa.
type SessionStore struct {
	mu      sync.Mutex
	storage Storage
}

func NewSessionStore(storage Storage) *SessionStore {
	return &SessionStore{storage: storage}
}

func (s *SessionStore) SaveSession(record *domain.SessionRecord) error {
	serialized, err := record.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize session record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.SetAll(map[string]string{
		domain.StorageKeyIDToken:      record.IDToken,
		domain.StorageKeyRefreshToken: record.RefreshToken,
		domain.StorageKeyUserData:     serialized,
	})
	return nil
}

func (s *SessionStore) LoadSession() (*domain.SessionRecord, error) {
	s.mu.Lock()
	raw, ok := s.storage.Get(domain.StorageKeyUserData)
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	record, err := domain.UnmarshalSessionRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored session record: %w", err)
	}
	return record, nil
}

func (s *SessionStore) IDToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.storage.Get(domain.StorageKeyIDToken)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (s *SessionStore) RawUserData() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.storage.Get(domain.StorageKeyUserData)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.RemoveAll(domain.StorageKeyIDToken, domain.StorageKeyRefreshToken, domain.StorageKeyUserData)
}

var _ SessionRepository = (*SessionStore)(nil)
