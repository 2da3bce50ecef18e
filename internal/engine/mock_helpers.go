package engine

import (
	"context"
	"sync"

	"github.com/michael-freling/power-e/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockConfirmer is a mock implementation of Confirmer for testing.
type MockConfirmer struct {
	mock.Mock
}

// Confirm is a mock implementation of Confirmer.Confirm.
func (m *MockConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	args := m.Called(ctx, message)
	return args.Bool(0), args.Error(1)
}

// MockConfigSaver is a mock implementation of ConfigSaver for testing.
type MockConfigSaver struct {
	mock.Mock
}

// Save is a mock implementation of ConfigSaver.Save.
func (m *MockConfigSaver) Save(cfg store.Config) {
	m.Called(cfg)
}

// MemoryRecorder keeps appended entries in memory for inspection in tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []store.LogEntry
}

// Append implements ActionRecorder.
func (r *MemoryRecorder) Append(entry store.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of everything appended so far.
func (r *MemoryRecorder) Entries() []store.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]store.LogEntry(nil), r.entries...)
}

// Actions returns the action names appended so far.
func (r *MemoryRecorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		actions = append(actions, e.Action)
	}
	return actions
}
