// Package loom is an incremental, priority-driven tree reconciler core: a
// cooperative scheduler that turns a tree of fibers into a committed tree
// of host-side side effects, in slices bounded by a host-supplied
// deadline, with strict priority ordering, atomic commit, and error
// containment at the nearest ancestor error boundary.
//
// The scheduler is generic over two collaborators it never constructs
// itself: a HostConfig (how to register animation/deferred callbacks with
// the embedding runtime) and a Reconciler (how to diff children and commit
// mutations for one fiber type). See the hostmem package for a reference
// implementation of both over an in-memory tree.
package loom

import "github.com/kaelanwillis/loom/internal"

// Fiber is one reconciliation work unit; a node in the double-buffered
// current/work-in-progress tree. See internal.Fiber for field semantics.
type Fiber = internal.Fiber

// FiberRoot is a host container descriptor: one per mounted tree.
type FiberRoot = internal.FiberRoot

// TrappedError pairs an error with the nearest ancestor error boundary, or
// a nil Boundary if none exists and the error is uncaught.
type TrappedError = internal.TrappedError

// PriorityLevel is a totally ordered urgency class; lower is more urgent.
type PriorityLevel = internal.PriorityLevel

const (
	SynchronousPriority = internal.SynchronousPriority
	AnimationPriority   = internal.AnimationPriority
	LowPriority         = internal.LowPriority
	NoWork              = internal.NoWork
)

// EffectTag is a bitset over a fiber's pending side effects.
type EffectTag = internal.EffectTag

const (
	NoEffect  = internal.NoEffect
	Placement = internal.Placement
	Update    = internal.Update
	Deletion  = internal.Deletion
	Callback  = internal.Callback
)

// FiberTag discriminates what a Fiber represents. The scheduler only knows
// about HostContainerTag; every other value is reconciler-defined.
type FiberTag = internal.FiberTag

const HostContainerTag = internal.HostContainerTag

// Deadline reports remaining idle budget for a deferred work slice.
type Deadline = internal.Deadline

// HostConfig is the embedding runtime's callback-scheduling surface.
type HostConfig = internal.HostConfig

// Reconciler decides child diffing, commits host mutations, and locates
// error boundaries. The scheduler treats it as a black box.
type Reconciler = internal.Reconciler

// SchedulerError wraps a structural invariant violation (a bug in the
// embedding runtime or reconciler, never a user-code error). Use
// errors.Is/errors.As against ErrWrongGoroutine to check for the affinity
// violation specifically.
type SchedulerError = internal.SchedulerError

// ErrWrongGoroutine is the sentinel a caller can match with errors.Is
// against a SchedulerError raised when a Scheduler entry point is called
// from a goroutine other than the one that constructed it.
var ErrWrongGoroutine = internal.ErrWrongGoroutine

// Logger is the scheduler's structured-logging surface.
type Logger = internal.Logger

// NoopLogger discards everything; it is the Scheduler default.
var NoopLogger = internal.NoopLogger

// NewStdLogger wraps a standard library logger writing to stderr.
func NewStdLogger(prefix string) Logger { return internal.NewStdLogger(prefix) }

// Option configures a Scheduler at construction time.
type Option = internal.Option

// WithDeferredHeuristic sets the minimum timeRemaining (ms) a deadline must
// report for deferred work to keep processing units.
func WithDeferredHeuristic(ms float64) Option { return internal.WithDeferredHeuristic(ms) }

// WithLogger overrides the default no-op Logger.
func WithLogger(l Logger) Option { return internal.WithLogger(l) }

// WithLabel attaches a human-readable label, surfaced only in log lines.
func WithLabel(label string) Option { return internal.WithLabel(label) }

// Scheduler is one reconciler instance: a host config, a reconciler, and
// every cursor the core's work loop needs, bundled into a single value.
// Never process-wide state — construct one per independent tree (or test).
type Scheduler struct {
	core *internal.Scheduler
}

// NewScheduler builds a Scheduler over hostConfig and reconciler. It
// records the constructing goroutine so every later call can assert it is
// still being driven by that single logical agent.
func NewScheduler(hostConfig HostConfig, reconciler Reconciler, opts ...Option) *Scheduler {
	return &Scheduler{core: internal.NewScheduler(hostConfig, reconciler, opts...)}
}

// ID returns the Scheduler's instance identifier, for log correlation.
func (s *Scheduler) ID() string { return s.core.ID.String() }

// CreateRoot allocates a FiberRoot for a fresh host container.
func (s *Scheduler) CreateRoot(containerInfo any) *FiberRoot { return s.core.CreateRoot(containerInfo) }

// ScheduleWork schedules root at the current priority context.
func (s *Scheduler) ScheduleWork(root *FiberRoot) { s.core.ScheduleWork(root) }

// ScheduleDeferredWork schedules root at an explicit priority, independent
// of the current priority context.
func (s *Scheduler) ScheduleDeferredWork(root *FiberRoot, priority PriorityLevel) {
	s.core.ScheduleDeferredWork(root, priority)
}

// ScheduleUpdate walks from fiber to its root, tightening pending priority
// along the way, and dispatches work on the root it finds.
func (s *Scheduler) ScheduleUpdate(fiber *Fiber) { s.core.ScheduleUpdate(fiber) }

// PerformWithPriority scopes the priority context to level for fn,
// restoring the prior value even if fn panics.
func PerformWithPriority[A any](s *Scheduler, level PriorityLevel, fn func() A) A {
	var result A
	s.core.PerformWithPriority(level, func() { result = fn() })
	return result
}

// SyncUpdates scopes the priority context to SynchronousPriority for fn.
func SyncUpdates[A any](s *Scheduler, fn func() A) A {
	return PerformWithPriority(s, SynchronousPriority, fn)
}

// BatchedUpdates suppresses immediate synchronous flushes for fn; the
// outermost call to unwind back to unbatched performs synchronous work
// exactly once. Nesting is idempotent with a single call.
func BatchedUpdates[A any](s *Scheduler, fn func() A) A {
	var result A
	s.core.BatchedUpdates(func() { result = fn() })
	return result
}
