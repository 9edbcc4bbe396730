package sheets

import (
	"context"
	"sync"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc func(ctx context.Context, report Report) error
	Reports   []Report
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records the report and returns the result of WriteFunc, if set.
func (m *MockWriter) Write(ctx context.Context, report Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}

// Last returns the most recently written report.
func (m *MockWriter) Last() (Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Reports) == 0 {
		return Report{}, false
	}
	return m.Reports[len(m.Reports)-1], true
}

var _ ReportWriter = (*MockWriter)(nil)
