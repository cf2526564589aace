// Package hostmem is a reference host config and reconciler pair over an
// in-memory tree. It exists so every code path in the core scheduler has a
// concrete, testable collaborator instead of a mock: a real (if trivial)
// mutable tree, keyed child diffing, and error boundary recovery.
package hostmem

import (
	"time"

	"github.com/kaelanwillis/loom/internal"
)

// HostNode is the committed host tree's instance type: a minimal
// stand-in for a DOM or native UI node.
type HostNode struct {
	Tag      string
	Props    map[string]any
	Children []*HostNode
}

// InMemoryHostConfig queues animation and deferred callbacks for the
// scheduler's owning goroutine to run via Pump, and reports idle budget
// against a configured slice length.
//
// It deliberately does not hand callbacks to a timer-pool goroutine:
// every Scheduler entry point asserts it is being called from the
// goroutine that constructed it (see internal/affinity.go), and
// performAnimationWorkUnsafe/performDeferredWorkUnsafe — which these
// callbacks invoke — sit behind that same assertion everywhere else they're
// reached. A bare time.AfterFunc callback always runs on a fresh runtime
// timer goroutine, which would silently call back into the scheduler from
// the wrong goroutine. Queuing instead, and leaving draining to an explicit
// Pump call, keeps every call into the scheduler on one goroutine.
type InMemoryHostConfig struct {
	// SyncScheduling, when true, reports UseSyncScheduling() == true.
	SyncScheduling bool
	// FrameBudget is the slice length reported to deferred callbacks.
	FrameBudget time.Duration

	pending []func()
}

// NewInMemoryHostConfig builds a host config with a 5ms frame budget.
func NewInMemoryHostConfig() *InMemoryHostConfig {
	return &InMemoryHostConfig{FrameBudget: 5 * time.Millisecond}
}

func (h *InMemoryHostConfig) ScheduleAnimationCallback(cb func()) {
	h.pending = append(h.pending, cb)
}

func (h *InMemoryHostConfig) ScheduleDeferredCallback(cb func(internal.Deadline)) {
	budget := h.FrameBudget
	h.pending = append(h.pending, func() {
		cb(&frameDeadline{expires: time.Now().Add(budget)})
	})
}

func (h *InMemoryHostConfig) UseSyncScheduling() bool { return h.SyncScheduling }

// Pump runs callbacks queued by ScheduleAnimationCallback/
// ScheduleDeferredCallback on the calling goroutine until the queue is
// empty, including any that those callbacks queue in turn. Callers must
// invoke it from the same goroutine that constructed the Scheduler this
// host config backs — exactly like every other entry point into the
// scheduler — to drive Animation/Low priority work forward.
func (h *InMemoryHostConfig) Pump() {
	for len(h.pending) > 0 {
		cb := h.pending[0]
		h.pending = h.pending[1:]
		cb()
	}
}

type frameDeadline struct{ expires time.Time }

func (d *frameDeadline) TimeRemaining() float64 {
	remaining := time.Until(d.expires).Seconds() * 1000
	if remaining < 0 {
		return 0
	}
	return remaining
}
