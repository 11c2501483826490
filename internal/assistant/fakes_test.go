package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"school-assistant-backend/internal/dashboard"
	"school-assistant-backend/internal/schema"
	"school-assistant-backend/internal/tasks"
)

type fakeInvoker struct {
	out   *schema.ChatOutput
	err   error
	calls int
	last  schema.ChatInput
}

func (f *fakeInvoker) Chat(_ context.Context, in schema.ChatInput) (*schema.ChatOutput, error) {
	f.calls++
	f.last = in
	return f.out, f.err
}

func chatOut(component, props string) *schema.ChatOutput {
	return &schema.ChatOutput{Component: component, Props: []byte(props)}
}

// memTasks dedups on id like the Postgres store does.
type memTasks struct {
	mu      sync.Mutex
	byID    map[string]tasks.Task
	order   []string
	appends int
	delay   time.Duration
	err     error
}

func newMemTasks() *memTasks {
	return &memTasks{byID: map[string]tasks.Task{}}
}

func (m *memTasks) Append(_ context.Context, _ int, t tasks.Task) (bool, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appends++
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.byID[t.ID]; ok {
		return false, nil
	}
	m.byID[t.ID] = t
	m.order = append(m.order, t.ID)
	return true, nil
}

func (m *memTasks) List(context.Context, int) ([]tasks.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tasks.Task, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.byID[m.order[i]])
	}
	return out, nil
}

func (m *memTasks) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type fakeSnapshots struct {
	snap *dashboard.Snapshot
}

func (f fakeSnapshots) Get(context.Context, int) (*dashboard.Snapshot, error) {
	if f.snap == nil {
		return nil, dashboard.ErrNotFound
	}
	return f.snap, nil
}

var errStoreDown = errors.New("store down")
