package repository

import "github.com/themilan1337/nerdie/internal/auth/domain"

// Storage is the raw key/value port behind the session store. Implementations
// must be safe for use from a single goroutine at a time; the SessionStore
// serializes access on top.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	// SetAll writes several keys as one batch. A persistent implementation
	// must make the batch visible to external readers in a single flush.
	SetAll(values map[string]string)
	Remove(key string)
	// RemoveAll removes several keys as one batch, mirroring SetAll.
	RemoveAll(keys ...string)
}

type SessionRepository interface {
	// SaveSession writes the id-token, refresh-token and serialized record
	// as one atomic group.
	SaveSession(record *domain.SessionRecord) error
	// LoadSession reads the stored record, or nil when none is stored.
	LoadSession() (*domain.SessionRecord, error)
	// IDToken reads the stored bearer credential.
	IDToken() (string, bool)
	// RawUserData reads the serialized record without parsing it.
	RawUserData() (string, bool)
	// Clear removes all three keys as one atomic group.
	Clear()
}
