package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// MockStorage is an in-memory Storage for tests and local runs.
type MockStorage struct {
	mu          sync.RWMutex
	populations map[uuid.UUID]*npc.Population
	pingError   error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		populations: make(map[uuid.UUID]*npc.Population),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SavePopulation stores pop under its id, replacing any previous entry.
func (m *MockStorage) SavePopulation(ctx context.Context, pop *npc.Population) error {
	if pop == nil {
		return errors.New("population cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.populations[pop.ID] = pop
	return nil
}

// LoadPopulation returns ErrPopulationNotFound for unknown ids.
func (m *MockStorage) LoadPopulation(ctx context.Context, id uuid.UUID) (*npc.Population, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pop, exists := m.populations[id]
	if !exists {
		return nil, ErrPopulationNotFound
	}
	return pop, nil
}

// DeletePopulation is a no-op for unknown ids.
func (m *MockStorage) DeletePopulation(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.populations, id)
	return nil
}

// ListPopulations mocks listing stored ids
func (m *MockStorage) ListPopulations(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(m.populations))
	for id := range m.populations {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids, nil
}

// SortIDs orders ids by their string form.
func SortIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
}
