package internal

// rootRegistry is a singly-linked chain of roots with pending work. It is
// owned by exactly one Scheduler value — never process-wide state.
type rootRegistry struct {
	head *FiberRoot
	tail *FiberRoot
}

// enqueue adds root to the registry if it isn't already a member, and
// always tightens root's pending priority — it never deprioritizes work
// that's already scheduled more urgently.
func (r *rootRegistry) enqueue(root *FiberRoot, priority PriorityLevel) {
	if !root.IsScheduled {
		root.IsScheduled = true
		root.NextScheduled = nil

		if r.tail != nil {
			r.tail.NextScheduled = root
		} else {
			r.head = root
		}
		r.tail = root
	}

	if root.Current != nil {
		root.Current.PendingWorkPriority = minPriority(root.Current.PendingWorkPriority, priority)
	}
}

// pickHighestPriorityRoot scans the chain: it first drops any leading roots
// that have gone idle (detaching them and clearing their scheduled flag),
// then returns the remaining root with the most urgent pending priority,
// first-registered wins on ties. Returns nil if nothing has work.
func (r *rootRegistry) pickHighestPriorityRoot() *FiberRoot {
	for r.head != nil && r.head.Current.PendingWorkPriority == NoWork {
		stale := r.head
		r.head = stale.NextScheduled
		if r.head == nil {
			r.tail = nil
		}

		stale.IsScheduled = false
		stale.NextScheduled = nil
	}

	if r.head == nil {
		return nil
	}

	best := r.head
	for cur := r.head.NextScheduled; cur != nil; cur = cur.NextScheduled {
		if cur.Current.PendingWorkPriority < best.Current.PendingWorkPriority {
			best = cur
		}
	}

	return best
}

// clear detaches every root from the registry without touching their
// IsScheduled or NextScheduled fields — used by the error pipeline's lossy
// uncaught-error recovery. A root detached this way still reports
// IsScheduled, so a later enqueue of it only tightens its priority and does
// not link it back into the chain.
func (r *rootRegistry) clear() {
	r.head = nil
	r.tail = nil
}
