package dynamic

import (
	"context"
	"fmt"
	"sync"
)

// MockService implements CompileService from a table of canned handles keyed
// by exact source text, recording every call. Tests use it to script the
// bridge without a real compiler.
type MockService struct {
	mu      sync.Mutex
	handles map[string]any
	err     error
	calls   []string
}

// NewMockService creates a MockService serving the given source→handle map.
func NewMockService(handles map[string]any) *MockService {
	return &MockService{handles: handles}
}

// FailWith makes every call return err instead of a handle.
func (m *MockService) FailWith(err error) { m.err = err }

// Calls returns the source texts seen so far, in order.
func (m *MockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockService) CompileAndInvoke(ctx context.Context, src string) (any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, src)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	h, ok := m.handles[src]
	if !ok {
		return nil, fmt.Errorf("mock service has no handle for %q", src)
	}
	return h, nil
}
