package mocks

import (
	"fmt"
	"sync"
)

// MockReporter records every progress notification
type MockReporter struct {
	mu     sync.Mutex
	events []string
}

// NewMockReporter creates a new mock reporter
func NewMockReporter() *MockReporter {
	return &MockReporter{}
}

func (m *MockReporter) ProjectStarted(project string) {
	m.record(fmt.Sprintf("start %s", project))
}

func (m *MockReporter) EntryAdded(project, logicalPath string) {
	m.record(fmt.Sprintf("add %s %s", project, logicalPath))
}

func (m *MockReporter) ProjectFinished(project, outputPath string, err error) {
	if err != nil {
		m.record(fmt.Sprintf("fail %s", project))
		return
	}
	m.record(fmt.Sprintf("done %s", project))
}

func (m *MockReporter) record(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// GetEvents returns a copy of the recorded events
func (m *MockReporter) GetEvents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	copy(out, m.events)
	return out
}
