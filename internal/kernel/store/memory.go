package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process AgentStore, useful for tests and for the
// tolerated no-durability configuration the kernel falls back to when no
// database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]StoredAgent
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]StoredAgent{}}
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]StoredAgent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredAgent, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, agent StoredAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[agent.ID] = agent
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
