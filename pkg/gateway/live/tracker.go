package live

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker registers running realtime sessions so the process can drain and
// cancel them on shutdown. Sessions are otherwise fully isolated; this map is
// the only cross-session state and it holds cancel handles, not channels.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]context.CancelFunc
	draining atomic.Bool
}

func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]context.CancelFunc)}
}

// Register records a session's cancel handle and returns its unregister func.
func (t *Tracker) Register(id string, cancel context.CancelFunc) func() {
	t.mu.Lock()
	t.sessions[id] = cancel
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.sessions, id)
		t.mu.Unlock()
	}
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// SetDraining marks the gateway as shutting down; new sessions are refused.
func (t *Tracker) SetDraining() {
	t.draining.Store(true)
}

func (t *Tracker) IsDraining() bool {
	return t.draining.Load()
}

// CancelAll cancels every registered session.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(t.sessions))
	for _, cancel := range t.sessions {
		cancels = append(cancels, cancel)
	}
	t.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Wait blocks until all sessions have unregistered or ctx is done. Returns
// true when the tracker drained cleanly.
func (t *Tracker) Wait(ctx context.Context) bool {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		if t.Len() == 0 {
			return true
		}
		select {
		case <-ctx.Done():
			return t.Len() == 0
		case <-ticker.C:
		}
	}
}
