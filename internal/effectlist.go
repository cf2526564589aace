package internal

// spliceEffectList merges child's effect list onto the end of parent's,
// bottom-up, as completeUnitOfWork ascends. Children always appear before
// their parent, preserving the post-order invariant.
func spliceEffectList(parent, child *Fiber) {
	if child.FirstEffect == nil {
		return
	}

	if parent.FirstEffect == nil {
		parent.FirstEffect = child.FirstEffect
	} else {
		parent.LastEffect.NextEffect = child.FirstEffect
	}
	parent.LastEffect = child.LastEffect
}

// appendSelfEffect appends fiber itself to parent's effect list, after any
// effects already spliced in from its children, if it carries a pending
// effect of its own.
func appendSelfEffect(parent, fiber *Fiber) {
	if fiber.EffectTag == NoEffect {
		return
	}

	if parent.LastEffect != nil {
		parent.LastEffect.NextEffect = fiber
	} else {
		parent.FirstEffect = fiber
	}
	parent.LastEffect = fiber
}

// unlinkEffectList walks the finished root's effect list, detaching
// NextEffect as it goes so no stale effect-list edges survive past commit.
// commitRoot uses it for the lifecycle pass, the last walk over the list.
func unlinkEffectList(head *Fiber, visit func(*Fiber)) {
	fiber := head
	for fiber != nil {
		next := fiber.NextEffect
		fiber.NextEffect = nil
		visit(fiber)
		fiber = next
	}
}
