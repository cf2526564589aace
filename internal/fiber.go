package internal

import "github.com/google/uuid"

// EffectTag is a bitset over the side effects pending on a fiber.
type EffectTag int

const NoEffect EffectTag = 0

const (
	Placement EffectTag = 1 << iota
	Update
	Deletion
	Callback
)

func (e EffectTag) Has(bit EffectTag) bool { return e&bit != 0 }

// FiberTag discriminates what a Fiber represents. The scheduler only ever
// inspects HostContainerTag (root.return == nil iff tag == HostContainerTag);
// every other tag value is opaque to it and owned by the reconciler.
type FiberTag int

const HostContainerTag FiberTag = 0

// Fiber is one unit of reconciliation work: a node in the double-buffered
// tree. Cross-references (return/child/sibling/alternate/nextEffect) are
// plain pointers, not arena indices — Go's GC reclaims the resulting
// reference cycles on its own, unlike the non-GC targets the arena strategy
// in the design notes is written for.
type Fiber struct {
	Tag       FiberTag
	StateNode any // host instance, or *FiberRoot when Tag == HostContainerTag

	Return  *Fiber // parent in the work-in-progress tree (non-owning back-edge)
	Child   *Fiber // first child
	Sibling *Fiber // next sibling

	Alternate *Fiber // paired fiber in the other buffer; bidirectional when set

	PendingProps any
	UpdateQueue  any

	ProgressedChild *Fiber // first child of the most recently progressed child set

	PendingWorkPriority PriorityLevel

	EffectTag EffectTag

	FirstEffect *Fiber
	LastEffect  *Fiber
	NextEffect  *Fiber
}

// FiberRoot is the host container descriptor: one per mounted tree.
type FiberRoot struct {
	ID uuid.UUID

	Current       *Fiber
	IsScheduled   bool
	NextScheduled *FiberRoot

	ContainerInfo any
}

// NewFiberRoot allocates a root and its initial, childless HostContainer
// fiber. The container fiber has no alternate until the first work pass
// clones it.
func NewFiberRoot(containerInfo any) *FiberRoot {
	root := &FiberRoot{
		ID:            uuid.New(),
		ContainerInfo: containerInfo,
	}

	root.Current = &Fiber{
		Tag:                 HostContainerTag,
		StateNode:           root,
		PendingWorkPriority: NoWork,
	}

	return root
}

// TrappedError pairs an error with the nearest ancestor error boundary that
// should handle it. A nil Boundary means no ancestor boundary exists and the
// error will surface to the host.
type TrappedError struct {
	Boundary *Fiber
	Err      error
}
