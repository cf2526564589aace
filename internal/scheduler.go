package internal

import (
	"github.com/google/uuid"
	"github.com/petermattis/goid"
)

// Scheduler bundles every cursor of one reconciler instance into a single
// value, built by NewScheduler. There is no package-level state backing it
// — two Schedulers never interfere with each other.
type Scheduler struct {
	ID    uuid.UUID
	Label string

	hostConfig  HostConfig
	reconciler  Reconciler
	ownerGID    int64
	logger      Logger
	deferredMin float64 // ms; heuristic for performDeferredWorkUnsafe

	registry rootRegistry

	nextUnitOfWork    *Fiber
	nextPriorityLevel PriorityLevel
	priorityContext   PriorityLevel

	shouldBatchUpdates bool

	isAnimationCallbackScheduled bool
	isDeferredCallbackScheduled  bool
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithDeferredHeuristic sets the minimum timeRemaining (ms) a deadline must
// report for performDeferredWorkUnsafe to keep processing units.
func WithDeferredHeuristic(ms float64) Option {
	return func(s *Scheduler) { s.deferredMin = ms }
}

// WithLogger overrides the default no-op Logger.
func WithLogger(l Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithLabel attaches a human-readable label, surfaced only in log lines.
func WithLabel(label string) Option {
	return func(s *Scheduler) { s.Label = label }
}

// NewScheduler builds one Scheduler instance over hostConfig and
// reconciler. It records the constructing goroutine's id via goid so every
// later entry point can assert it's still being driven by that one logical
// agent.
func NewScheduler(hostConfig HostConfig, reconciler Reconciler, opts ...Option) *Scheduler {
	s := &Scheduler{
		ID:                uuid.New(),
		hostConfig:        hostConfig,
		reconciler:        reconciler,
		ownerGID:          goid.Get(),
		logger:            NoopLogger,
		deferredMin:       1,
		nextPriorityLevel: NoWork,
		priorityContext:   SynchronousPriority,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateRoot allocates a FiberRoot for a fresh host container.
func (s *Scheduler) CreateRoot(containerInfo any) *FiberRoot {
	s.assertAffinity()
	return NewFiberRoot(containerInfo)
}
