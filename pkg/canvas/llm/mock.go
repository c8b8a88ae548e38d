package llm

import (
	"context"
	"sync"
)

// MockClient is a Client for tests and demos. It returns canned
// responses, optionally cycling through a sequence, and records the
// requests it receives.
type MockClient struct {
	mu        sync.Mutex
	response  string
	responses []string
	next      int
	err       error
	delay     func(ctx context.Context) error
	requests  []CompletionRequest
	models    []ModelInfo
}

// Compile-time interface check.
var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock that always replies with response.
func NewMockClient(response string) *MockClient {
	return &MockClient{response: response}
}

// WithResponses makes the mock cycle through the given replies.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	return m
}

// WithError makes every Complete call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithBlockUntil makes Complete block until release is closed (or ctx
// is done), for testing in-flight behavior.
func (m *MockClient) WithBlockUntil(release <-chan struct{}) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m
}

// WithModels sets the catalog returned by Models.
func (m *MockClient) WithModels(models ...ModelInfo) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = models
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	delay := m.delay
	err := m.err
	content := m.response
	if len(m.responses) > 0 {
		content = m.responses[m.next%len(m.responses)]
		m.next++
	}
	m.mu.Unlock()

	if delay != nil {
		if derr := delay(ctx); derr != nil {
			return nil, NewError("complete", derr, false)
		}
	}
	if err != nil {
		return nil, err
	}
	return &CompletionResponse{
		Content:      content,
		Model:        req.Model,
		FinishReason: "stop",
	}, nil
}

// Models implements Client.
func (m *MockClient) Models(ctx context.Context, credential string) ([]ModelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.models) > 0 {
		return m.models, nil
	}
	return DefaultModels, nil
}

// CallCount returns how many Complete calls were made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the recorded requests, in order.
func (m *MockClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
