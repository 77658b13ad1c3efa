package media

import (
	"context"
	"sync"
)

// MockPlayer is a deterministic Player for testing. Each Start returns a
// MockPlayback; when AutoResolve is set the outcome is delivered immediately.
type MockPlayer struct {
	mu          sync.Mutex
	AutoResolve bool
	Outcome     error
	Calls       []Request
	Playbacks   []*MockPlayback
}

var _ Player = (*MockPlayer)(nil)

// NewMockPlayer creates a MockPlayer that resolves every start with outcome.
func NewMockPlayer(outcome error) *MockPlayer {
	return &MockPlayer{AutoResolve: true, Outcome: outcome}
}

// Start records the request and returns a controllable playback.
func (m *MockPlayer) Start(_ context.Context, req Request) Playback {
	m.mu.Lock()
	defer m.mu.Unlock()

	pb := &MockPlayback{handle: newHandle(nil)}
	m.Calls = append(m.Calls, req)
	m.Playbacks = append(m.Playbacks, pb)
	if m.AutoResolve {
		pb.Resolve(m.Outcome)
	}
	return pb
}

// StartCount returns how many playbacks were started.
func (m *MockPlayer) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Last returns the most recent playback, or nil.
func (m *MockPlayer) Last() *MockPlayback {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Playbacks) == 0 {
		return nil
	}
	return m.Playbacks[len(m.Playbacks)-1]
}

// MockPlayback is a Playback whose outcome is set by the test.
type MockPlayback struct {
	*handle

	mu      sync.Mutex
	stopped bool
}

// Resolve delivers the outcome. Only the first call has an effect.
func (p *MockPlayback) Resolve(err error) {
	p.handle.resolve(err)
}

func (p *MockPlayback) Stop() error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	return p.handle.Stop()
}

// Stopped reports whether Stop was called.
func (p *MockPlayback) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}
