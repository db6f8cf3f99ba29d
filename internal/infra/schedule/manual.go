package schedule

import (
	"sync"
	"time"
)

// Manual is a Scheduler whose ticks fire only when Fire is called, for
// deterministic tests and step-through demos.
type Manual struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]func()
}

func NewManual() *Manual {
	return &Manual{entries: make(map[int]func())}
}

func (m *Manual) Every(_ time.Duration, fn func()) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.entries[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
	}, nil
}

// Fire runs every scheduled callback once, n times over.
func (m *Manual) Fire(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fns := make([]func(), 0, len(m.entries))
		for _, fn := range m.entries {
			fns = append(fns, fn)
		}
		m.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
}

// Active returns the number of scheduled callbacks.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
