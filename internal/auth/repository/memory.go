package repository

// MemoryStorage is a non-persistent Storage used in tests and as a fallback
// when no data directory is available.
type MemoryStorage struct {
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	value, ok := m.data[key]
	return value, ok
}

func (m *MemoryStorage) Set(key, value string) {
	m.data[key] = value
}

func (m *MemoryStorage) SetAll(values map[string]string) {
	for key, value := range values {
		m.data[key] = value
	}
}

func (m *MemoryStorage) Remove(key string) {
	delete(m.data, key)
}

func (m *MemoryStorage) RemoveAll(keys ...string) {
	for _, key := range keys {
		delete(m.data, key)
	}
}

var _ Storage = (*MemoryStorage)(nil)
