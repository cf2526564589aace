package internal

import (
	"errors"
	"fmt"
)

// ViolationKind discriminates the structural invariants the scheduler
// itself enforces. These are bugs in the embedding runtime or reconciler,
// never user-code errors, so they panic rather than flow through the error
// pipeline.
type ViolationKind int

const (
	ViolationDoubleCommit ViolationKind = iota
	ViolationNonContainerRoot
	ViolationWrongGoroutine
)

// ErrWrongGoroutine is the sentinel a caller can match with errors.Is
// against a SchedulerError raised by an affinity assertion.
var ErrWrongGoroutine = errors.New("loom: scheduler entry point called from a different goroutine than its constructor")

var errDoubleCommit = errors.New("loom: root.current committed twice for the same work-in-progress tree")
var errNonContainerRoot = errors.New("loom: scheduleUpdate reached a fiber whose root is not a HostContainer")

// SchedulerError wraps a structural invariant violation. It supports
// errors.Is/errors.As via Unwrap so callers can distinguish, e.g.,
// ErrWrongGoroutine from other invariant failures.
type SchedulerError struct {
	Kind ViolationKind
	err  error
}

func (e *SchedulerError) Error() string { return e.err.Error() }
func (e *SchedulerError) Unwrap() error { return e.err }

func newSchedulerError(kind ViolationKind, err error) *SchedulerError {
	return &SchedulerError{Kind: kind, err: err}
}

// panicInvariant raises a structural invariant violation. Unlike
// recoverTrapped, this is never caught by the work loop's own panic
// recovery — it is fatal and meant to surface immediately.
func panicInvariant(kind ViolationKind, err error) {
	panic(newSchedulerError(kind, err))
}

// toError normalizes an arbitrary recovered panic value into an error,
// wrapping non-error values the way fmt.Errorf("%v") would.
func toError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}

// recoverTrapped runs fn, converting any panic raised by it into a trapped
// error for failedFiber via the reconciler's TrapError. It never recovers a
// *SchedulerError — those are structural and must keep propagating.
func (s *Scheduler) recoverTrapped(failedFiber *Fiber, fn func() error) (trapped *TrappedError, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if se, isSchedulerErr := r.(*SchedulerError); isSchedulerErr {
				panic(se)
			}

			te := s.reconciler.TrapError(failedFiber, toError(r))
			trapped = &te
		}
	}()

	if err := fn(); err != nil {
		te := s.reconciler.TrapError(failedFiber, err)
		return &te, true
	}

	return nil, true
}

// handleErrors is the fixed-point error pipeline. It drives re-renders of
// affected error boundaries, ignoring unmount errors during that recovery
// pass, until no trapped errors remain or an uncaught error (nil boundary)
// surfaces.
func (s *Scheduler) handleErrors(initial []TrappedError) error {
	pending := initial

	for len(pending) > 0 {
		var firstUncaught error
		acknowledgedThisRound := map[*Fiber]bool{}
		var affectedBoundaries []*Fiber
		var next []TrappedError

		for _, te := range pending {
			if te.Boundary == nil {
				if firstUncaught == nil {
					firstUncaught = te.Err
				}
				continue
			}

			if acknowledgedThisRound[te.Boundary] {
				continue
			}
			acknowledgedThisRound[te.Boundary] = true
			affectedBoundaries = append(affectedBoundaries, te.Boundary)

			if err := s.reconciler.AcknowledgeErrorInBoundary(te.Boundary, te.Err); err != nil {
				next = append(next, s.reconciler.TrapError(te.Boundary, err))
			}
		}

		if firstUncaught != nil {
			s.registry.clear()
			return firstUncaught
		}

		for _, boundary := range affectedBoundaries {
			s.logger.Infof("error boundary recovering: %p", boundary)

			root := s.scheduleAncestorsAtPriority(boundary, s.priorityContext)

			wip := s.reconciler.CloneFiber(root.Current, root.Current.PendingWorkPriority)
			wip.Return = nil

			// Drive performUnitOfWork directly against root rather than
			// through the Scheduler's nextUnitOfWork cursor, and never call
			// handleErrors from inside this loop — only hand trapped errors
			// back to the outer fixed-point loop (next). This loop stays
			// iterative, not recursive.
			unit := wip
			for unit != nil {
				var committed []TrappedError
				trapped, _ := s.recoverTrapped(unit, func() error {
					nextUnit, fromCommit, err := s.performUnitOfWork(unit, true, root)
					unit = nextUnit
					committed = fromCommit
					return err
				})
				if trapped != nil {
					next = append(next, *trapped)
					break
				}
				next = append(next, committed...)
			}
		}

		pending = next
	}

	return nil
}
