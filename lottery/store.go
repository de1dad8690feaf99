package lottery

import (
	"fmt"
	"sort"
	"sync"
)

// Keys of the persisted state.
const (
	SessionKey = "lottery-drawn-numbers"
	HistoryKey = "lottery-history"
)

// KeyValueStore is the durable storage behind Store.
type KeyValueStore interface {
	// Get returns ok=false, err=nil for a missing key.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(keys ...string) error
}

// Store maps sessions and history onto a KeyValueStore.
type Store struct {
	kv              KeyValueStore
	defaultUniverse int
}

func NewStore(kv KeyValueStore, defaultUniverse int) *Store {
	return &Store{kv: kv, defaultUniverse: defaultUniverse}
}

// LoadSession returns found=false when nothing is stored. A stored value that
// cannot be decoded comes back as a *DecodeError.
func (s *Store) LoadSession() (Session, bool, error) {
	data, ok, err := s.kv.Get(SessionKey)
	if err != nil || !ok {
		return Session{}, false, err
	}
	sess, err := DecodeSession(data, s.defaultUniverse)
	if err != nil {
		return Session{}, false, &DecodeError{Key: SessionKey, Err: err}
	}
	return sess, true, nil
}

// LoadHistory is LoadSession for the history log.
func (s *Store) LoadHistory() ([]HistoryEntry, bool, error) {
	data, ok, err := s.kv.Get(HistoryKey)
	if err != nil || !ok {
		return nil, false, err
	}
	entries, err := DecodeHistory(data)
	if err != nil {
		return nil, false, &DecodeError{Key: HistoryKey, Err: err}
	}
	return entries, true, nil
}

// SaveSession writes sess, or removes the key when nothing has been drawn.
// An empty session is never written.
func (s *Store) SaveSession(sess Session) error {
	if len(sess.DrawnNumbers) == 0 {
		return s.kv.Delete(SessionKey)
	}
	data, err := EncodeSession(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.kv.Set(SessionKey, data)
}

// SaveHistory writes entries, or removes the key when the log is empty.
func (s *Store) SaveHistory(entries []HistoryEntry) error {
	if len(entries) == 0 {
		return s.kv.Delete(HistoryKey)
	}
	data, err := EncodeHistory(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return s.kv.Set(HistoryKey, data)
}

func (s *Store) Clear() error {
	return s.kv.Delete(SessionKey, HistoryKey)
}

// MemoryKV is an in-process KeyValueStore.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (m *MemoryKV) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
