package internal

// rootOf walks Return pointers up to the HostContainer fiber and returns its
// owning FiberRoot. Panics with a structural invariant violation if fiber's
// root is not a HostContainer — callers only ever invoke this on fibers
// reachable from a properly constructed tree.
func rootOf(fiber *Fiber) *FiberRoot {
	cur := fiber
	for cur.Return != nil {
		cur = cur.Return
	}

	root, ok := cur.StateNode.(*FiberRoot)
	if !ok {
		panicInvariant(ViolationNonContainerRoot, errNonContainerRoot)
	}
	return root
}

// findNextUnitOfWork GCs empty roots, picks the top root, and clones its
// current fiber into a fresh work-in-progress to start the next slice.
// Returns nil if no root has work.
func (s *Scheduler) findNextUnitOfWork() *Fiber {
	root := s.registry.pickHighestPriorityRoot()
	if root == nil {
		s.nextPriorityLevel = NoWork
		return nil
	}

	priority := root.Current.PendingWorkPriority
	s.nextPriorityLevel = priority

	wip := s.reconciler.CloneFiber(root.Current, priority)
	wip.Return = nil
	wip.PendingWorkPriority = priority

	return wip
}

// performUnitOfWork runs one fiber through beginWork, or — if beginWork
// found no child — through completeUnitOfWork. There is no ambient
// tracking context to reset between units, so the only per-unit cleanup is
// the one completeUnitOfWork itself performs.
//
// The third return value carries trapped errors collected by a commit that
// happened to finish during this call. It is returned rather than fed
// straight into handleErrors here so that the error pipeline's own inner
// loop (errors.go) can drive performUnitOfWork without ever recursively
// re-entering handleErrors — only the outer driver (dispatch.go's runLoop)
// does that.
func (s *Scheduler) performUnitOfWork(f *Fiber, ignoreUnmountingErrors bool, root *FiberRoot) (*Fiber, []TrappedError, error) {
	child, err := s.reconciler.BeginWork(f.Alternate, f, s.nextPriorityLevel)
	if err != nil {
		return nil, nil, err
	}

	if child != nil {
		return child, nil, nil
	}

	return s.completeUnitOfWork(f, ignoreUnmountingErrors, root)
}

// completeUnitOfWork ascends from f, completing each node, bubbling its
// effect list and priority into its parent, until it finds a sibling to
// return as the next unit, or reaches the root and runs commit.
func (s *Scheduler) completeUnitOfWork(f *Fiber, ignoreUnmountingErrors bool, root *FiberRoot) (*Fiber, []TrappedError, error) {
	for {
		spawned, err := s.reconciler.CompleteWork(f.Alternate, f)
		if err != nil {
			return nil, nil, err
		}
		if spawned != nil {
			return spawned, nil, nil
		}

		resetWorkPriority(f)

		f.PendingProps = nil
		f.UpdateQueue = nil

		if parent := f.Return; parent != nil {
			spliceEffectList(parent, f)
			appendSelfEffect(parent, f)
		}

		if f.Sibling != nil {
			return f.Sibling, nil, nil
		}

		if f.Return != nil {
			f = f.Return
			continue
		}

		// f is the root.
		if root.Current == f {
			panicInvariant(ViolationDoubleCommit, errDoubleCommit)
		}
		root.Current = f

		trapped := s.commitRoot(f, root, ignoreUnmountingErrors)

		return s.findNextUnitOfWork(), trapped, nil
	}
}

// resetWorkPriority recomputes f.PendingWorkPriority as the minimum over
// its progressed children's priorities, excluding NoWork entries.
func resetWorkPriority(f *Fiber) {
	priority := NoWork

	for child := f.ProgressedChild; child != nil; child = child.Sibling {
		if child.PendingWorkPriority != NoWork {
			priority = minPriority(priority, child.PendingWorkPriority)
		}
	}

	f.PendingWorkPriority = priority
}
