package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/siteforge/content-pipeline/internal/store"
)

// MemStore is an in-memory implementation of store.RecordStore backed by a
// map of JSON documents. Values round-trip through encoding/json so tests
// exercise the same serialization boundary as the real store.
type MemStore struct {
	mu      sync.Mutex
	Records map[string]json.RawMessage

	GetErr    error
	SetErr    error
	DeleteErr error
	ListErr   error

	// FailKeys injects a per-key fault on Set and Delete
	FailKeys map[string]error

	SetCalls    []string
	DeleteCalls []string
}

// Verify interface compliance
var _ store.RecordStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		Records:  make(map[string]json.RawMessage),
		FailKeys: make(map[string]error),
	}
}

func (m *MemStore) Get(ctx context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return false, m.GetErr
	}
	raw, ok := m.Records[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemStore) Set(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, key)
	if m.SetErr != nil {
		return m.SetErr
	}
	if err, ok := m.FailKeys[key]; ok {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.Records[key] = raw
	return nil
}

func (m *MemStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if err, ok := m.FailKeys[key]; ok {
		return err
	}
	delete(m.Records, key)
	return nil
}

func (m *MemStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	keys := make([]string, 0)
	for k := range m.Records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Has reports whether a key currently exists
func (m *MemStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Records[key]
	return ok
}
