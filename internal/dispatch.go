package internal

// runLoop drives the work loop: while shouldContinue reports true and there
// is a unit to perform, it performs exactly one unit, recovering any
// begin/complete-work panic or error into a trapped error routed through
// the error pipeline immediately (so a boundary recovery never leaves
// nextUnitOfWork dangling on a subtree that's about to be discarded).
func (s *Scheduler) runLoop(shouldContinue func() bool) error {
	for {
		if s.nextUnitOfWork == nil {
			s.nextUnitOfWork = s.findNextUnitOfWork()
		}
		if s.nextUnitOfWork == nil || !shouldContinue() {
			return nil
		}

		unit := s.nextUnitOfWork
		root := rootOf(unit)

		var committed []TrappedError
		trapped, _ := s.recoverTrapped(unit, func() error {
			next, fromCommit, err := s.performUnitOfWork(unit, false, root)
			s.nextUnitOfWork = next
			committed = fromCommit
			return err
		})

		if trapped != nil {
			committed = append(committed, *trapped)
			s.nextUnitOfWork = nil
		}

		if len(committed) > 0 {
			if err := s.handleErrors(committed); err != nil {
				return err
			}
		}
	}
}

// performSynchronousWorkUnsafe drains synchronous-priority work to
// exhaustion, then reschedules whatever priority is left via the
// appropriate host callback. On a host that reports UseSyncScheduling,
// there is no real animation-frame or idle-callback primitive to hand
// lower-priority work to, so it drains everything instead of stopping at
// the first non-synchronous unit.
func (s *Scheduler) performSynchronousWorkUnsafe() error {
	forceAll := s.hostConfig.UseSyncScheduling()

	if err := s.runLoop(func() bool { return forceAll || s.nextPriorityLevel == SynchronousPriority }); err != nil {
		return err
	}

	switch {
	case s.nextPriorityLevel == NoWork, forceAll:
	case s.nextPriorityLevel <= AnimationPriority:
		s.scheduleAnimationCallbackIfNeeded()
	default:
		s.scheduleDeferredCallbackIfNeeded()
	}
	return nil
}

// performAnimationWorkUnsafe drains everything at Animation priority or
// higher urgency, then schedules a deferred callback if lower-priority work
// remains.
func (s *Scheduler) performAnimationWorkUnsafe() error {
	if err := s.runLoop(func() bool {
		return s.nextPriorityLevel <= AnimationPriority && s.nextPriorityLevel != NoWork
	}); err != nil {
		return err
	}

	if s.nextPriorityLevel > AnimationPriority && s.nextPriorityLevel != NoWork {
		s.scheduleDeferredCallbackIfNeeded()
	}
	return nil
}

// performDeferredWorkUnsafe processes units as long as the host-reported
// deadline has more than the configured heuristic remaining, re-registering
// a deferred callback if work is left when the slice runs out.
func (s *Scheduler) performDeferredWorkUnsafe(deadline Deadline) error {
	if err := s.runLoop(func() bool { return deadline.TimeRemaining() > s.deferredMin }); err != nil {
		return err
	}

	if s.nextPriorityLevel != NoWork {
		s.scheduleDeferredCallbackIfNeeded()
	}
	return nil
}

func (s *Scheduler) scheduleAnimationCallbackIfNeeded() {
	if s.isAnimationCallbackScheduled {
		return
	}
	s.isAnimationCallbackScheduled = true

	s.hostConfig.ScheduleAnimationCallback(func() {
		s.isAnimationCallbackScheduled = false
		if err := s.performAnimationWorkUnsafe(); err != nil {
			panic(err)
		}
	})
}

func (s *Scheduler) scheduleDeferredCallbackIfNeeded() {
	if s.isDeferredCallbackScheduled {
		return
	}
	s.isDeferredCallbackScheduled = true

	s.hostConfig.ScheduleDeferredCallback(func(deadline Deadline) {
		s.isDeferredCallbackScheduled = false
		if err := s.performDeferredWorkUnsafe(deadline); err != nil {
			panic(err)
		}
	})
}

// scheduleWorkAtPriority enqueues root at priority, invalidates the current
// work-in-progress cursor if this is at least as urgent as what's in
// flight, and kicks off (or registers) the matching entry point.
func (s *Scheduler) scheduleWorkAtPriority(root *FiberRoot, priority PriorityLevel) {
	wasEmpty := s.registry.head == nil
	s.registry.enqueue(root, priority)

	if priority <= s.nextPriorityLevel {
		s.nextUnitOfWork = nil
	}

	switch {
	case priority == SynchronousPriority || s.hostConfig.UseSyncScheduling():
		if wasEmpty && !s.shouldBatchUpdates {
			if err := s.performSynchronousWorkUnsafe(); err != nil {
				panic(err)
			}
		}
	case priority <= AnimationPriority:
		s.scheduleAnimationCallbackIfNeeded()
	default:
		s.scheduleDeferredCallbackIfNeeded()
	}
}

// bubblePendingPriority walks from fiber to its root via Return, tightening
// PendingWorkPriority on every node (and its alternate) along the way, and
// returns the owning FiberRoot. Shared by ScheduleUpdate and the error
// pipeline's boundary re-scheduling.
func bubblePendingPriority(fiber *Fiber, priority PriorityLevel) *FiberRoot {
	node := fiber
	for {
		node.PendingWorkPriority = minPriority(node.PendingWorkPriority, priority)
		if node.Alternate != nil {
			node.Alternate.PendingWorkPriority = minPriority(node.Alternate.PendingWorkPriority, priority)
		}

		if node.Return == nil {
			break
		}
		node = node.Return
	}

	root, ok := node.StateNode.(*FiberRoot)
	if !ok {
		panicInvariant(ViolationNonContainerRoot, errNonContainerRoot)
	}
	return root
}

func (s *Scheduler) scheduleAncestorsAtPriority(fiber *Fiber, priority PriorityLevel) *FiberRoot {
	return bubblePendingPriority(fiber, priority)
}

// ScheduleWork schedules root at the current priority context.
func (s *Scheduler) ScheduleWork(root *FiberRoot) {
	s.assertAffinity()
	s.scheduleWorkAtPriority(root, s.priorityContext)
}

// ScheduleDeferredWork schedules root at an explicit priority, independent
// of priorityContext.
func (s *Scheduler) ScheduleDeferredWork(root *FiberRoot, priority PriorityLevel) {
	s.assertAffinity()
	s.scheduleWorkAtPriority(root, priority)
}

// ScheduleUpdate walks from fiber to its root, tightening pending priority
// along the way, and dispatches work on the root found at the top. Panics
// with a structural invariant violation if fiber's root isn't a
// HostContainer.
func (s *Scheduler) ScheduleUpdate(fiber *Fiber) {
	s.assertAffinity()

	priority := s.priorityContext
	root := bubblePendingPriority(fiber, priority)
	s.scheduleWorkAtPriority(root, priority)
}

// PerformWithPriority scopes priorityContext to level for the duration of
// fn, restoring the prior value even if fn panics.
func (s *Scheduler) PerformWithPriority(level PriorityLevel, fn func()) {
	s.assertAffinity()

	prev := s.priorityContext
	s.priorityContext = level
	defer func() { s.priorityContext = prev }()

	fn()
}

// SyncUpdates is PerformWithPriority pinned to SynchronousPriority.
func (s *Scheduler) SyncUpdates(fn func()) {
	s.PerformWithPriority(SynchronousPriority, fn)
}

// BatchedUpdates suppresses immediate synchronous flushes for the duration
// of fn; the outermost call to unwind back to unbatched performs
// synchronous work exactly once. Nested BatchedUpdates calls are therefore
// idempotent with a single call — only the outermost flushes.
func (s *Scheduler) BatchedUpdates(fn func()) {
	s.assertAffinity()

	prevBatching := s.shouldBatchUpdates
	s.shouldBatchUpdates = true
	defer func() {
		s.shouldBatchUpdates = prevBatching
		if !s.shouldBatchUpdates {
			if err := s.performSynchronousWorkUnsafe(); err != nil {
				panic(err)
			}
		}
	}()

	fn()
}
