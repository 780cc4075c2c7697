package services

import (
	"context"
	"fmt"
	"sync"

	domerrors "launchdeck/internal/infrastructure/errors"
	"launchdeck/internal/repository"
	"launchdeck/internal/types"
)

// MockRepository implements the AppRepository interface for testing
type MockRepository struct {
	mu              sync.RWMutex
	apps            map[string]types.RegisteredApp
	order           []string // insertion order of ids
	insertCount     int
	updateCount     int
	deleteCount     int
	getCount        int
	shouldFailWrite bool
	shouldFailRead  bool
}

// Ensure MockRepository implements the AppRepository interface
var _ repository.AppRepository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		apps: make(map[string]types.RegisteredApp),
	}
}

// SetFailureModes configures the mock to simulate storage failures
func (m *MockRepository) SetFailureModes(write, read bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailWrite = write
	m.shouldFailRead = read
}

// CallCounts returns the number of times each mutation method was called
func (m *MockRepository) CallCounts() (insert, update, del, get int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.insertCount, m.updateCount, m.deleteCount, m.getCount
}

// GetAll implements AppRepository
func (m *MockRepository) GetAll(ctx context.Context) ([]types.RegisteredApp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.shouldFailRead {
		return nil, domerrors.NewDomainError("GetAll", fmt.Errorf("mock read failure"), domerrors.ErrCodeConnection)
	}

	apps := make([]types.RegisteredApp, 0, len(m.order))
	for _, id := range m.order {
		apps = append(apps, m.apps[id])
	}
	return apps, nil
}

// GetByID implements AppRepository
func (m *MockRepository) GetByID(ctx context.Context, id string) (*types.RegisteredApp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCount++

	if m.shouldFailRead {
		return nil, domerrors.NewDomainError("GetByID", fmt.Errorf("mock read failure"), domerrors.ErrCodeConnection)
	}

	app, ok := m.apps[id]
	if !ok {
		return nil, domerrors.HandleNotFound("GetByID", "registered_app", id)
	}
	return &app, nil
}

// Insert implements AppRepository
func (m *MockRepository) Insert(ctx context.Context, app *types.RegisteredApp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCount++

	if m.shouldFailWrite {
		return domerrors.NewDomainError("Insert", fmt.Errorf("mock write failure"), domerrors.ErrCodeDiskSpace)
	}

	if _, exists := m.apps[app.ID]; exists {
		return domerrors.NewDomainError("Insert", fmt.Errorf("duplicate id"), domerrors.ErrCodeDuplicate)
	}

	m.apps[app.ID] = *app
	m.order = append(m.order, app.ID)
	return nil
}

// Update implements AppRepository
func (m *MockRepository) Update(ctx context.Context, app *types.RegisteredApp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCount++

	if m.shouldFailWrite {
		return domerrors.NewDomainError("Update", fmt.Errorf("mock write failure"), domerrors.ErrCodeDiskSpace)
	}

	if _, exists := m.apps[app.ID]; !exists {
		return domerrors.HandleNotFound("Update", "registered_app", app.ID)
	}

	m.apps[app.ID] = *app
	return nil
}

// Delete implements AppRepository
func (m *MockRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCount++

	if m.shouldFailWrite {
		return domerrors.NewDomainError("Delete", fmt.Errorf("mock write failure"), domerrors.ErrCodeDiskSpace)
	}

	if _, exists := m.apps[id]; !exists {
		return domerrors.HandleNotFound("Delete", "registered_app", id)
	}

	delete(m.apps, id)
	for i, orderedID := range m.order {
		if orderedID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteAll implements AppRepository
func (m *MockRepository) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shouldFailWrite {
		return domerrors.NewDomainError("DeleteAll", fmt.Errorf("mock write failure"), domerrors.ErrCodeDiskSpace)
	}

	m.apps = make(map[string]types.RegisteredApp)
	m.order = nil
	return nil
}
