package internal

// Reconciler is the set of black-box collaborators the scheduler invokes to
// decide child diffing, commit host mutations, and locate error boundaries.
// None of its semantics are assumed beyond what each method's contract says;
// the scheduler never inspects a Fiber's Tag beyond HostContainerTag.
type Reconciler interface {
	// BeginWork returns the first child to work on next, or nil if this
	// subtree is done or bailed out.
	BeginWork(current, workInProgress *Fiber, priority PriorityLevel) (*Fiber, error)

	// CompleteWork finalizes a node; it may rarely spawn a new fiber of
	// host-effect work, in which case that fiber is returned.
	CompleteWork(current, workInProgress *Fiber) (*Fiber, error)

	CommitInsertion(f *Fiber) error
	CommitWork(current, f *Fiber) error
	CommitDeletion(f *Fiber) ([]TrappedError, error)
	CommitLifeCycles(current, f *Fiber) (*TrappedError, error)

	// TrapError locates the nearest ancestor error boundary for a fiber
	// that failed during begin/complete-work. A nil Boundary means none
	// exists.
	TrapError(failedFiber *Fiber, err error) TrappedError

	// AcknowledgeErrorInBoundary records an error against a boundary fiber
	// so its next BeginWork renders recovery state instead of its normal
	// children. It may itself error, in which case the new error is
	// trapped against the same boundary by the caller.
	AcknowledgeErrorInBoundary(boundary *Fiber, err error) error

	// CloneFiber allocates or reuses fiber's alternate for the next work
	// pass at the given priority.
	CloneFiber(fiber *Fiber, priority PriorityLevel) *Fiber
}
