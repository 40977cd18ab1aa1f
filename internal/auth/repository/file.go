package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/themilan1337/nerdie/pkg/crypto"
	"github.com/themilan1337/nerdie/pkg/logger"
)

// FileStorage persists keys as a single JSON document so session state
// survives restarts. When an encryption key is configured the document is
// encrypted at rest. Writes are flushed synchronously; flush failures are
// logged and the in-memory view stays authoritative for the process.
type FileStorage struct {
	path string

	mu        sync.Mutex
	data      map[string]string
	lastWrite []byte

	watcher *fsnotify.Watcher
}

func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &FileStorage{
		path: path,
		data: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok
}

func (s *FileStorage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.flushLocked()
}

// SetAll writes the batch in one flush, so an external watcher never sees a
// document holding only part of it.
func (s *FileStorage) SetAll(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range values {
		s.data[key] = value
	}
	s.flushLocked()
}

func (s *FileStorage) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.flushLocked()
}

func (s *FileStorage) RemoveAll(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	s.flushLocked()
}

// Watch invokes onChange whenever another process rewrites the storage file.
// Own writes are recognized by content, not by counting events: a flush may
// surface as several fsnotify events and a partial read of an in-progress
// write is retried on the next event.
func (s *FileStorage) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create storage watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch storage directory: %w", err)
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}

				raw, err := os.ReadFile(s.path)
				if err != nil {
					if !os.IsNotExist(err) {
						logger.Error("Failed to read session storage:", err)
					}
					continue
				}

				s.mu.Lock()
				own := bytes.Equal(raw, s.lastWrite)
				s.mu.Unlock()
				if own {
					continue
				}

				if err := s.apply(raw); err != nil {
					logger.Error("Failed to reload session storage:", err)
					continue
				}
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Session storage watcher error:", err)
			}
		}
	}()
	return nil
}

func (s *FileStorage) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *FileStorage) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session storage: %w", err)
	}
	return s.apply(raw)
}

// apply installs a document read from disk. lastWrite tracks the exact bytes
// of the current on-disk state so later events for them are recognized as
// already seen.
func (s *FileStorage) apply(raw []byte) error {
	plain := raw
	if crypto.IsKeySet() {
		decrypted, err := crypto.Decrypt(string(raw))
		if err != nil {
			return fmt.Errorf("failed to decrypt session storage: %w", err)
		}
		plain = []byte(decrypted)
	}

	data := make(map[string]string)
	if err := json.Unmarshal(plain, &data); err != nil {
		return fmt.Errorf("failed to parse session storage: %w", err)
	}

	s.mu.Lock()
	s.data = data
	s.lastWrite = raw
	s.mu.Unlock()
	return nil
}

func (s *FileStorage) flushLocked() {
	raw, err := json.Marshal(s.data)
	if err != nil {
		logger.Error("Failed to serialize session storage:", err)
		return
	}

	if crypto.IsKeySet() {
		encrypted, err := crypto.Encrypt(string(raw))
		if err != nil {
			logger.Error("Failed to encrypt session storage:", err)
			return
		}
		raw = []byte(encrypted)
	}

	s.lastWrite = raw
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		logger.Error("Failed to write session storage:", err)
	}
}

var _ Storage = (*FileStorage)(nil)
