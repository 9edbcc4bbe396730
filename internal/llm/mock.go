package llm

import (
	"context"
	"sync"

	"github.com/Veraticus/thrift/internal/common"
)

// MockClient is a scripted Client for tests. Replies are returned in order;
// the last reply repeats once the script is exhausted.
type MockClient struct {
	Err     error
	replies []string
	calls   []MockCall
	mu      sync.Mutex
}

// MockCall records one request made to a MockClient.
type MockCall struct {
	System      string
	User        string
	Messages    []Message
	Temperature float64
}

// NewMockClient creates a mock that answers with the given replies.
func NewMockClient(replies ...string) *MockClient {
	return &MockClient{replies: replies}
}

// NewFailingMockClient creates a mock whose every call returns err.
func NewFailingMockClient(err error) *MockClient {
	return &MockClient{Err: err}
}

// Complete records the request and returns the next scripted reply.
func (m *MockClient) Complete(_ context.Context, system, user string, temperature float64) (string, error) {
	return m.next(MockCall{System: system, User: user, Temperature: temperature})
}

// Chat records the conversation and returns the next scripted reply.
func (m *MockClient) Chat(_ context.Context, messages []Message, temperature float64) (string, error) {
	copied := append([]Message(nil), messages...)
	return m.next(MockCall{Messages: copied, Temperature: temperature})
}

func (m *MockClient) next(call MockCall) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, call)
	if m.Err != nil {
		return "", m.Err
	}

	idx := len(m.calls) - 1
	switch {
	case len(m.replies) == 0:
		return "", common.ErrEmptyResponse
	case idx >= len(m.replies):
		return m.replies[len(m.replies)-1], nil
	default:
		return m.replies[idx], nil
	}
}

// Calls returns a copy of all recorded requests.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}
