package internal

// commitRoot atomically applies finishedWork's effect list in two passes —
// mutation then lifecycle — and finally the root fiber's own effect, if it
// carries one (it isn't on its own effect list). Errors raised or returned
// during commit are collected, never raised, to keep the whole sequence
// uninterruptible; the caller feeds the result to handleErrors once commit
// is done. When ignoreUnmountingErrors is set (an error-boundary recovery
// commit), CommitDeletion errors are swallowed instead of collected, to
// avoid an unmount failure re-triggering the same boundary forever.
func (s *Scheduler) commitRoot(finishedWork *Fiber, root *FiberRoot, ignoreUnmountingErrors bool) []TrappedError {
	var trapped []TrappedError
	effects := 0

	// collect runs one commit step for f and records a panic raised inside
	// it as a trapped error against f, so the remaining effects still
	// commit. A panic while deleting is dropped under ignoreUnmountingErrors,
	// like a returned deletion error.
	collect := func(f *Fiber, step func()) {
		drop := ignoreUnmountingErrors && f.EffectTag.Has(Deletion)
		if te, _ := s.recoverTrapped(f, func() error { step(); return nil }); te != nil && !drop {
			trapped = append(trapped, *te)
		}
	}

	// Pass 1: mutation.
	for f := finishedWork.FirstEffect; f != nil; f = f.NextEffect {
		collect(f, func() { s.commitMutationEffect(f, ignoreUnmountingErrors, &trapped) })
	}

	// Pass 2: lifecycle. Unlink NextEffect as we go so none survive past
	// commit.
	unlinkEffectList(finishedWork.FirstEffect, func(f *Fiber) {
		effects++
		collect(f, func() { s.commitLifecycleEffect(f, &trapped) })
	})
	finishedWork.FirstEffect = nil
	finishedWork.LastEffect = nil

	// Root handling: the root isn't on its own effect list.
	if finishedWork.EffectTag != NoEffect {
		collect(finishedWork, func() { s.commitMutationEffect(finishedWork, ignoreUnmountingErrors, &trapped) })
		collect(finishedWork, func() { s.commitLifecycleEffect(finishedWork, &trapped) })
	}

	s.logger.Debugf("committed root=%s effects=%d trapped=%d", root.ID, effects, len(trapped))

	return trapped
}

func (s *Scheduler) commitMutationEffect(f *Fiber, ignoreUnmountingErrors bool, trapped *[]TrappedError) {
	tag := f.EffectTag

	switch {
	case tag.Has(Placement) && tag.Has(Update):
		if err := s.reconciler.CommitInsertion(f); err != nil {
			*trapped = append(*trapped, s.reconciler.TrapError(f, err))
		}
		f.EffectTag &^= Placement
		if err := s.reconciler.CommitWork(f.Alternate, f); err != nil {
			*trapped = append(*trapped, s.reconciler.TrapError(f, err))
		}

	case tag.Has(Placement):
		if err := s.reconciler.CommitInsertion(f); err != nil {
			*trapped = append(*trapped, s.reconciler.TrapError(f, err))
		}
		f.EffectTag &^= Placement

	case tag.Has(Update):
		if err := s.reconciler.CommitWork(f.Alternate, f); err != nil {
			*trapped = append(*trapped, s.reconciler.TrapError(f, err))
		}
	}

	if tag.Has(Deletion) {
		unmountErrors, err := s.reconciler.CommitDeletion(f)
		if !ignoreUnmountingErrors {
			if err != nil {
				*trapped = append(*trapped, s.reconciler.TrapError(f, err))
			}
			*trapped = append(*trapped, unmountErrors...)
		}
	}
}

func (s *Scheduler) commitLifecycleEffect(f *Fiber, trapped *[]TrappedError) {
	tag := f.EffectTag
	defer func() { f.EffectTag = NoEffect }()

	if !tag.Has(Update) && !tag.Has(Callback) {
		return
	}

	te, err := s.reconciler.CommitLifeCycles(f.Alternate, f)
	if err != nil {
		*trapped = append(*trapped, s.reconciler.TrapError(f, err))
		return
	}
	if te != nil {
		*trapped = append(*trapped, *te)
	}
}
