// README: Session persistence. The whole state is stored as one JSON document per thread.
package session

import (
	"context"
	"encoding/json"
	"sync"
)

type Store interface {
	Get(ctx context.Context, threadID string) (*State, error)
	Save(ctx context.Context, st *State) error
	Delete(ctx context.Context, threadID string) error
}

// MemoryStore keeps encoded states so callers never share slices with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, threadID string) (*State, error) {
	m.mu.RLock()
	raw, ok := m.states[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(raw)
}

func (m *MemoryStore) Save(_ context.Context, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[st.ThreadID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[threadID]; !ok {
		return ErrNotFound
	}
	delete(m.states, threadID)
	return nil
}

func decode(raw []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
