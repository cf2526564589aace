package internal

// Fiber tags used only by these white-box tests. HostContainerTag (0) is
// the scheduler's own; anything else here is test-local, standing in for
// the reconciler-owned tags a real collaborator (e.g. hostmem) would use.
const (
	testLeafTag     FiberTag = 1
	testBoundaryTag FiberTag = 2
)

// stubReconciler implements Reconciler with overridable func fields; any
// field left nil falls back to an inert default, so each test only wires
// up the behavior it actually exercises.
type stubReconciler struct {
	beginWork                  func(current, wip *Fiber, priority PriorityLevel) (*Fiber, error)
	completeWork               func(current, wip *Fiber) (*Fiber, error)
	commitInsertion            func(f *Fiber) error
	commitWork                 func(current, f *Fiber) error
	commitDeletion             func(f *Fiber) ([]TrappedError, error)
	commitLifeCycles           func(current, f *Fiber) (*TrappedError, error)
	trapError                  func(f *Fiber, err error) TrappedError
	acknowledgeErrorInBoundary func(boundary *Fiber, err error) error
	cloneFiber                 func(fiber *Fiber, priority PriorityLevel) *Fiber
}

func (s *stubReconciler) BeginWork(current, wip *Fiber, priority PriorityLevel) (*Fiber, error) {
	if s.beginWork != nil {
		return s.beginWork(current, wip, priority)
	}
	return nil, nil
}

func (s *stubReconciler) CompleteWork(current, wip *Fiber) (*Fiber, error) {
	if s.completeWork != nil {
		return s.completeWork(current, wip)
	}
	return nil, nil
}

func (s *stubReconciler) CommitInsertion(f *Fiber) error {
	if s.commitInsertion != nil {
		return s.commitInsertion(f)
	}
	return nil
}

func (s *stubReconciler) CommitWork(current, f *Fiber) error {
	if s.commitWork != nil {
		return s.commitWork(current, f)
	}
	return nil
}

func (s *stubReconciler) CommitDeletion(f *Fiber) ([]TrappedError, error) {
	if s.commitDeletion != nil {
		return s.commitDeletion(f)
	}
	return nil, nil
}

func (s *stubReconciler) CommitLifeCycles(current, f *Fiber) (*TrappedError, error) {
	if s.commitLifeCycles != nil {
		return s.commitLifeCycles(current, f)
	}
	return nil, nil
}

func (s *stubReconciler) TrapError(f *Fiber, err error) TrappedError {
	if s.trapError != nil {
		return s.trapError(f, err)
	}
	return TrappedError{Err: err}
}

func (s *stubReconciler) AcknowledgeErrorInBoundary(boundary *Fiber, err error) error {
	if s.acknowledgeErrorInBoundary != nil {
		return s.acknowledgeErrorInBoundary(boundary, err)
	}
	return nil
}

func (s *stubReconciler) CloneFiber(fiber *Fiber, priority PriorityLevel) *Fiber {
	if s.cloneFiber != nil {
		return s.cloneFiber(fiber, priority)
	}
	return defaultCloneFiber(fiber, priority)
}

// defaultCloneFiber is the same reuse-or-allocate shape a real reconciler
// uses (see hostmem.ReferenceReconciler.CloneFiber), reimplemented locally
// so these tests don't need to import outside the internal package.
func defaultCloneFiber(fiber *Fiber, priority PriorityLevel) *Fiber {
	alt := fiber.Alternate
	if alt == nil {
		alt = &Fiber{Tag: fiber.Tag}
	}

	alt.Alternate = fiber
	fiber.Alternate = alt

	alt.StateNode = fiber.StateNode
	alt.PendingProps = fiber.PendingProps
	alt.UpdateQueue = fiber.UpdateQueue
	alt.PendingWorkPriority = priority
	alt.EffectTag = NoEffect
	alt.Child = nil
	alt.Sibling = nil
	alt.ProgressedChild = nil
	alt.FirstEffect = nil
	alt.LastEffect = nil
	alt.NextEffect = nil

	return alt
}

// listBeginWork treats the container's PendingProps as a flat []string of
// leaf names and mounts one Placement-tagged leaf per name.
func listBeginWork(current, wip *Fiber, priority PriorityLevel) (*Fiber, error) {
	if wip.Tag != HostContainerTag {
		return nil, nil
	}

	names, _ := wip.PendingProps.([]string)
	var first, last *Fiber
	for _, name := range names {
		leaf := &Fiber{Tag: testLeafTag, StateNode: name, Return: wip, PendingWorkPriority: priority, EffectTag: Placement}
		if first == nil {
			first = leaf
		} else {
			last.Sibling = leaf
		}
		last = leaf
	}

	wip.Child = first
	wip.ProgressedChild = first
	return first, nil
}

// stubHostConfig implements HostConfig; nil callback fields run their
// callback immediately (synchronous by default), which is enough for
// tests that only ever schedule Synchronous-priority work.
type stubHostConfig struct {
	scheduleAnimation func(cb func())
	scheduleDeferred  func(cb func(Deadline))
	useSync           bool
}

func (h *stubHostConfig) ScheduleAnimationCallback(cb func()) {
	if h.scheduleAnimation != nil {
		h.scheduleAnimation(cb)
		return
	}
	cb()
}

func (h *stubHostConfig) ScheduleDeferredCallback(cb func(Deadline)) {
	if h.scheduleDeferred != nil {
		h.scheduleDeferred(cb)
		return
	}
	cb(fakeDeadline{remaining: 1000})
}

func (h *stubHostConfig) UseSyncScheduling() bool { return h.useSync }

type fakeDeadline struct{ remaining float64 }

func (d fakeDeadline) TimeRemaining() float64 { return d.remaining }
