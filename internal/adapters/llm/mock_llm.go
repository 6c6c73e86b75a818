package llm

import (
	"context"
	"sync"
)

// MockCompleter returns a canned model output. Useful for local runs and tests.
type MockCompleter struct {
	mu     sync.Mutex
	Output string
	Err    error
	Calls  int
	Last   Prompt
}

func NewMockCompleter(output string) *MockCompleter {
	return &MockCompleter{Output: output}
}

func (m *MockCompleter) Complete(_ context.Context, p Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Last = p
	if m.Err != nil {
		return "", m.Err
	}
	return m.Output, nil
}
