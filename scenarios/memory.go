package scenarios

import (
	"context"
	"sync"
)

// MemoryStore хранилище в памяти процесса (для тестов и режима без диска)
type MemoryStore struct {
	mu    sync.Mutex
	items []Scenario
}

// NewMemoryStore создает хранилище с начальным содержимым items
func NewMemoryStore(items ...Scenario) *MemoryStore {
	return &MemoryStore{items: dedupe(items)}
}

func (s *MemoryStore) List(ctx context.Context) ([]Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyScenarios(s.items), nil
}

func (s *MemoryStore) Upsert(ctx context.Context, name string, payload Payload) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = upsertInto(s.items, name, payload)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = removeFrom(s.items, name)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context, items []Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = dedupe(items)
	return nil
}

func (s *MemoryStore) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) > 0 {
		return false, nil
	}
	s.items = copyScenarios(Defaults())
	return true, nil
}

func copyScenarios(items []Scenario) []Scenario {
	out := make([]Scenario, 0, len(items))
	for _, it := range items {
		out = append(out, Scenario{Name: it.Name, Payload: clonePayload(it.Payload)})
	}
	return out
}
