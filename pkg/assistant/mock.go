package assistant

import (
	"context"
	"sync"
)

// MockProvider implements Provider for testing.
type MockProvider struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, echoes the prompt back.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// Generate calls GenerateFunc and records the prompt.
func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "echo: " + prompt, nil
}

// Close is a no-op.
func (m *MockProvider) Close() error {
	return nil
}

// Prompts returns the prompts seen so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Verify MockProvider implements Provider at compile time.
var _ Provider = (*MockProvider)(nil)
