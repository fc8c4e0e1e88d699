package runs

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/racetrack/game/service"
)

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrInvalidRunID     = errors.New("invalid run ID")
)

// Manager keeps the analysis run history
type Manager struct {
	runs        map[string]*service.Run
	persistence RunPersistence
	mu          sync.RWMutex
}

// NewManager creates an in-memory run manager
func NewManager() *Manager {
	return &Manager{
		runs: make(map[string]*service.Run),
	}
}

// NewManagerWithPersistence creates a run manager that writes every run through
func NewManagerWithPersistence(persistence RunPersistence) *Manager {
	return &Manager{
		runs:        make(map[string]*service.Run),
		persistence: persistence,
	}
}

// Record stores a run, assigning a UUID when it has no ID
func (m *Manager) Record(run *service.Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if err := validateID(run.ID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(run.ID)
	if _, exists := m.runs[key]; exists {
		return ErrRunAlreadyExists
	}
	m.runs[key] = run

	if m.persistence != nil {
		if err := m.persistence.Save(run); err != nil {
			// Keep the in-memory record
			slog.Warn("failed to persist run", "run", run.ID, "error", err)
		}
	}

	return nil
}

// Get retrieves a run by ID (case-insensitive), falling back to persistence
func (m *Manager) Get(id string) (*service.Run, error) {
	m.mu.RLock()
	run, exists := m.runs[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return run, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		run, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted run: %w", err)
		}

		m.mu.Lock()
		m.runs[strings.ToLower(id)] = run
		m.mu.Unlock()

		return run, nil
	}

	return nil, ErrRunNotFound
}

// List returns all runs, newest first
func (m *Manager) List() []*service.Run {
	m.mu.RLock()
	result := make([]*service.Run, 0, len(m.runs))
	for _, run := range m.runs {
		result = append(result, run)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CompletedAt.Equal(result[j].CompletedAt) {
			return result[i].CompletedAt.After(result[j].CompletedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Delete removes a run from memory and storage
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	_, inMemory := m.runs[key]
	delete(m.runs, key)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted run: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrRunNotFound
	}
	return nil
}

// DeleteFromMemory removes a run from memory only
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.runs[key]; !exists {
		return ErrRunNotFound
	}
	delete(m.runs, key)
	return nil
}

// CleanupExpiredRuns drops runs completed more than maxAge ago, from
// memory and storage
func (m *Manager) CleanupExpiredRuns(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for key, run := range m.runs {
		if !run.CompletedAt.Before(cutoff) {
			continue
		}
		delete(m.runs, key)
		if m.persistence != nil && m.persistence.Exists(run.ID) {
			if err := m.persistence.Delete(run.ID); err != nil {
				slog.Warn("failed to delete expired run", "run", run.ID, "error", err)
			}
		}
		removed++
	}

	return removed
}

// PruneOrphans drops in-memory runs whose files were deleted from storage
func (m *Manager) PruneOrphans() int {
	if m.persistence == nil {
		return 0
	}

	pruned := 0
	for _, run := range m.List() {
		if m.persistence.Exists(run.ID) {
			continue
		}
		if err := m.DeleteFromMemory(run.ID); err == nil {
			pruned++
			slog.Debug("pruned run from memory (file deleted)", "run", run.ID)
		}
	}
	return pruned
}

// Count returns the number of runs in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// LoadPersistedRuns loads all persisted runs into memory
func (m *Manager) LoadPersistedRuns() error {
	if m.persistence == nil {
		return nil
	}

	runIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted runs: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range runIDs {
		if _, exists := m.runs[strings.ToLower(id)]; exists {
			continue
		}

		run, err := m.persistence.Load(id)
		if err != nil {
			slog.Warn("failed to load persisted run", "run", id, "error", err)
			continue
		}

		m.runs[strings.ToLower(id)] = run
		loadedCount++
	}

	if loadedCount > 0 {
		slog.Info("loaded persisted runs", "count", loadedCount)
	}

	return nil
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return ErrInvalidRunID
	}
	return nil
}
