package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kamal-hamza/upkg/internal/core/domain"
)

// MockProjectRepository is an in-memory ProjectRepository for testing
type MockProjectRepository struct {
	mu         sync.RWMutex
	projects   map[string]domain.Project
	shouldFail bool
	failError  error
}

// NewMockProjectRepository creates a new mock repository
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{
		projects: make(map[string]domain.Project),
	}
}

// Add registers a project
func (m *MockProjectRepository) Add(p domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.Name] = p
}

// SetShouldFail configures List to fail
func (m *MockProjectRepository) SetShouldFail(fail bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
	m.failError = err
}

// List returns all projects sorted by name
func (m *MockProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.shouldFail {
		return nil, m.failError
	}

	projects := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// Get retrieves a project by name
func (m *MockProjectRepository) Get(ctx context.Context, name string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[name]
	if !ok {
		return nil, fmt.Errorf("project not found: %s", name)
	}
	return &p, nil
}

// MockRevisionSource returns a fixed build tag
type MockRevisionSource struct {
	Tag   domain.BuildTag
	calls int
	mu    sync.Mutex
}

// ShortHash returns the configured tag
func (m *MockRevisionSource) ShortHash(ctx context.Context) domain.BuildTag {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Tag
}

// Calls returns how many times ShortHash was invoked
func (m *MockRevisionSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
