package hostmem

import (
	"fmt"

	"github.com/kaelanwillis/loom/internal"
)

// Fiber tags this reconciler assigns. HostContainerTag (0) belongs to the
// scheduler; everything else is ours.
const (
	HostComponentTag internal.FiberTag = iota + 1
	ErrorBoundaryTag
)

// nodeState is a fiber's StateNode for HostComponentTag/ErrorBoundaryTag
// fibers. Unlike PendingProps and UpdateQueue, which the scheduler clears
// at the end of every completed unit of work, StateNode survives commit —
// so it is where this reconciler keeps everything it needs across frames:
// the diffing key, the host instance once created, and the props/callbacks
// captured at complete-work time for the commit pass to use.
type nodeState struct {
	key   string
	path  string
	index int
	node  *HostNode

	pendingTag   string
	pendingProps map[string]any
	onCommit     func()
	onUnmount    func()

	boundary *boundaryState
}

type boundaryState struct {
	degraded bool
	err      error
}

// ReferenceReconciler diffs Element trees against a committed HostNode
// tree, keyed by Element.Key (falling back to positional index), and
// recovers subtrees under an Element.Boundary fiber.
//
// inFlight carries a boundary's recovery state across retries of the error
// pipeline's fixed-point loop when nothing has ever committed for it yet:
// reconcileChildren's normal "old children" lookup only sees
// parentWIP.Alternate.Child, which is nil the first time a boundary's
// subtree fails (root.Current has no children at all), so without this a
// freshly allocated, non-degraded boundaryState would replace the one
// AcknowledgeErrorInBoundary just marked degraded, and the boundary would
// re-render its still-failing children forever. Keyed by the owning root
// plus the boundary's position in the tree, since that position is stable
// across retries even though the fiber object itself is reallocated each
// time.
type ReferenceReconciler struct {
	inFlight map[*internal.FiberRoot]map[string]*boundaryState
}

func NewReferenceReconciler() *ReferenceReconciler {
	return &ReferenceReconciler{inFlight: map[*internal.FiberRoot]map[string]*boundaryState{}}
}

// takeInFlightBoundary removes and returns the boundary state stashed for
// path under root, or nil if none is pending.
func (r *ReferenceReconciler) takeInFlightBoundary(root *internal.FiberRoot, path string) *boundaryState {
	byPath := r.inFlight[root]
	if byPath == nil {
		return nil
	}
	bs := byPath[path]
	delete(byPath, path)
	return bs
}

func (r *ReferenceReconciler) rememberInFlightBoundary(root *internal.FiberRoot, path string, bs *boundaryState) {
	byPath := r.inFlight[root]
	if byPath == nil {
		byPath = map[string]*boundaryState{}
		r.inFlight[root] = byPath
	}
	byPath[path] = bs
}

func (r *ReferenceReconciler) forgetInFlightBoundary(root *internal.FiberRoot, path string) {
	if byPath, ok := r.inFlight[root]; ok {
		delete(byPath, path)
	}
}

// rootOfFiber walks Return pointers up to the HostContainer fiber and
// returns its owning FiberRoot. Reimplemented locally (the scheduler's own
// version is unexported) since it's only needed to key the in-flight
// boundary table.
func rootOfFiber(f *internal.Fiber) *internal.FiberRoot {
	cur := f
	for cur.Return != nil {
		cur = cur.Return
	}
	root, _ := cur.StateNode.(*internal.FiberRoot)
	return root
}

// pathOf returns the key-path identifying fiber's position in the tree:
// empty for the HostContainer fiber itself, else the path captured on its
// nodeState at creation time.
func pathOf(f *internal.Fiber) string {
	if f.Tag == internal.HostContainerTag {
		return ""
	}
	if ns, ok := f.StateNode.(*nodeState); ok {
		return ns.path
	}
	return ""
}

func (r *ReferenceReconciler) BeginWork(current, wip *internal.Fiber, priority internal.PriorityLevel) (*internal.Fiber, error) {
	if wip.Tag == internal.HostContainerTag {
		children, _ := wip.PendingProps.([]Element)
		return r.reconcileChildren(wip, children, priority)
	}

	el, ok := wip.PendingProps.(*Element)
	if !ok {
		return nil, fmt.Errorf("hostmem: fiber carries no pending element")
	}
	ns, ok := wip.StateNode.(*nodeState)
	if !ok {
		return nil, fmt.Errorf("hostmem: fiber has no reconciler state")
	}

	var children []Element
	switch {
	case wip.Tag == ErrorBoundaryTag && ns.boundary != nil && ns.boundary.degraded:
		children = el.Fallback
	case el.Render != nil:
		rendered, err := renderSafely(el)
		if err != nil {
			return nil, err
		}
		children = rendered
	default:
		children = el.Children
	}

	return r.reconcileChildren(wip, children, priority)
}

func renderSafely(el *Element) (result []Element, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = toErr(rec)
		}
	}()
	result = el.Render(el.Children)
	return result, nil
}

// reconcileChildren diffs children against parentWIP.Alternate's committed
// child fibers by key, reusing/updating matched fibers, placing new ones,
// and marking unmatched former children for deletion. Deletions are
// spliced directly onto parentWIP's effect list here, since they will
// never be visited by the normal child walk.
func (r *ReferenceReconciler) reconcileChildren(parentWIP *internal.Fiber, children []Element, priority internal.PriorityLevel) (*internal.Fiber, error) {
	root := rootOfFiber(parentWIP)
	parentPath := pathOf(parentWIP)

	old := map[string]*internal.Fiber{}
	var oldOrder []*internal.Fiber
	if parentWIP.Alternate != nil {
		for c := parentWIP.Alternate.Child; c != nil; c = c.Sibling {
			if ns, ok := c.StateNode.(*nodeState); ok {
				old[ns.key] = c
				oldOrder = append(oldOrder, c)
			}
		}
	}

	matched := map[string]bool{}
	var first, last *internal.Fiber

	for i := range children {
		el := &children[i]

		key := el.Key
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		path := parentPath + "/" + key

		tag := HostComponentTag
		if el.Boundary {
			tag = ErrorBoundaryTag
		}

		var fiber *internal.Fiber
		if oldChild, ok := old[key]; ok && oldChild.Tag == tag {
			matched[key] = true
			fiber = r.CloneFiber(oldChild, priority)
			fiber.EffectTag |= internal.Update
		} else {
			ns := &nodeState{key: key, path: path}
			if tag == ErrorBoundaryTag {
				if bs := r.takeInFlightBoundary(root, path); bs != nil {
					ns.boundary = bs
				} else {
					ns.boundary = &boundaryState{}
				}
			}
			fiber = &internal.Fiber{
				Tag:                 tag,
				StateNode:           ns,
				PendingWorkPriority: priority,
			}
			fiber.EffectTag |= internal.Placement
			// commitLifecycleEffect only fires on Update or Callback, so a
			// freshly mounted element needs Callback to get its OnCommit.
			if el.OnCommit != nil {
				fiber.EffectTag |= internal.Callback
			}
		}

		fiber.PendingProps = el
		fiber.Return = parentWIP

		if first == nil {
			first = fiber
		} else {
			last.Sibling = fiber
		}
		last = fiber
	}

	for _, oldChild := range oldOrder {
		ns := oldChild.StateNode.(*nodeState)
		if matched[ns.key] {
			continue
		}
		oldChild.Sibling = nil
		oldChild.EffectTag = internal.Deletion
		appendEffect(parentWIP, oldChild)
	}

	parentWIP.Child = first
	parentWIP.ProgressedChild = first

	return first, nil
}

func appendEffect(parent, f *internal.Fiber) {
	if parent.LastEffect != nil {
		parent.LastEffect.NextEffect = f
	} else {
		parent.FirstEffect = f
	}
	parent.LastEffect = f
}

// CompleteWork captures the commit-time data (tag, props, callbacks) off
// the fiber's Element before the scheduler clears PendingProps, and
// records this fiber's position among its siblings for CommitInsertion.
func (r *ReferenceReconciler) CompleteWork(current, wip *internal.Fiber) (*internal.Fiber, error) {
	ns, ok := wip.StateNode.(*nodeState)
	if !ok {
		return nil, nil // HostContainer fiber: nothing to finalize.
	}

	if el, ok := wip.PendingProps.(*Element); ok {
		ns.pendingTag = el.Tag
		ns.pendingProps = el.Props
		ns.onCommit = el.OnCommit
		ns.onUnmount = el.OnUnmount
	}

	// The host instance is created here, during the render phase, rather
	// than lazily inside CommitInsertion: the mutation pass walks the
	// effect list child-before-parent (see spliceEffectList), so a newly
	// placed child whose parent was placed in this very same commit would
	// find no parent instance yet if creation waited for commit. Every
	// fiber's CompleteWork has already run by the time commit starts, so
	// creating it here guarantees a parent's instance exists before any
	// child looks it up.
	if ns.node == nil {
		ns.node = &HostNode{Tag: ns.pendingTag, Props: cloneProps(ns.pendingProps)}
	}

	// Reaching CompleteWork means this boundary's subtree finished this
	// attempt without failing again, so whatever continuity the in-flight
	// table was holding for it is no longer needed: the committed tree
	// itself now carries it forward for the normal by-key lookup above.
	if ns.boundary != nil {
		r.forgetInFlightBoundary(rootOfFiber(wip), ns.path)
	}

	if wip.Return != nil {
		idx := 0
		for sib := wip.Return.Child; sib != nil && sib != wip; sib = sib.Sibling {
			idx++
		}
		ns.index = idx
	}

	return nil, nil
}

func (r *ReferenceReconciler) CommitInsertion(f *internal.Fiber) error {
	ns, ok := f.StateNode.(*nodeState)
	if !ok || ns.node == nil {
		return fmt.Errorf("hostmem: commitInsertion on a fiber with no host instance")
	}

	parentNode, err := hostNodeOf(f.Return)
	if err != nil {
		return err
	}
	parentNode.Children = insertAt(parentNode.Children, ns.index, ns.node)
	return nil
}

func (r *ReferenceReconciler) CommitWork(current, f *internal.Fiber) error {
	ns, ok := f.StateNode.(*nodeState)
	if !ok || ns.node == nil {
		return fmt.Errorf("hostmem: commitWork on a fiber with no host instance")
	}
	applyPropsDiff(ns.node, ns.pendingProps)

	// A matched child keeps its host node but may have moved among its
	// siblings; put the node back at the index CompleteWork recorded.
	parentNode, err := hostNodeOf(f.Return)
	if err != nil {
		return err
	}
	parentNode.Children = insertAt(removeNode(parentNode.Children, ns.node), ns.index, ns.node)
	return nil
}

func (r *ReferenceReconciler) CommitDeletion(f *internal.Fiber) ([]internal.TrappedError, error) {
	ns, ok := f.StateNode.(*nodeState)
	if !ok || ns.node == nil {
		return nil, fmt.Errorf("hostmem: commitDeletion on a fiber with no host instance")
	}

	parentNode, err := hostNodeOf(f.Return)
	if err != nil {
		return nil, err
	}
	parentNode.Children = removeNode(parentNode.Children, ns.node)

	if ns.onUnmount == nil {
		return nil, nil
	}

	var trapped []internal.TrappedError
	if err := callSafely(ns.onUnmount); err != nil {
		trapped = append(trapped, r.TrapError(f, err))
	}
	return trapped, nil
}

func (r *ReferenceReconciler) CommitLifeCycles(current, f *internal.Fiber) (*internal.TrappedError, error) {
	ns, ok := f.StateNode.(*nodeState)
	if !ok || ns.onCommit == nil {
		return nil, nil
	}

	if err := callSafely(ns.onCommit); err != nil {
		te := r.TrapError(f, err)
		return &te, nil
	}
	return nil, nil
}

// TrapError walks Return pointers to the nearest ancestor tagged
// ErrorBoundaryTag. A nil Boundary means the error is uncaught.
func (r *ReferenceReconciler) TrapError(failedFiber *internal.Fiber, err error) internal.TrappedError {
	for f := failedFiber.Return; f != nil; f = f.Return {
		if f.Tag == ErrorBoundaryTag {
			return internal.TrappedError{Boundary: f, Err: err}
		}
	}
	return internal.TrappedError{Boundary: nil, Err: err}
}

// AcknowledgeErrorInBoundary marks boundary degraded so its next BeginWork
// renders its Fallback children instead of its normal ones.
func (r *ReferenceReconciler) AcknowledgeErrorInBoundary(boundary *internal.Fiber, err error) error {
	ns, ok := boundary.StateNode.(*nodeState)
	if !ok || ns.boundary == nil {
		return fmt.Errorf("hostmem: fiber is not an error boundary")
	}
	ns.boundary.degraded = true
	ns.boundary.err = err

	// This boundary fiber may never have committed (its very first mount
	// can be what's failing), in which case the recovery retry's
	// reconcileChildren call won't find it via the normal by-key lookup off
	// root.Current. Stash it so that retry can pick the degraded state back
	// up instead of allocating a fresh, non-degraded one.
	r.rememberInFlightBoundary(rootOfFiber(boundary), ns.path, ns.boundary)
	return nil
}

// CloneFiber reuses fiber's alternate if one exists, else allocates a new
// fiber of the same tag, and resets every field the next work pass owns.
// The host instance (via StateNode) is preserved across renders.
func (r *ReferenceReconciler) CloneFiber(fiber *internal.Fiber, priority internal.PriorityLevel) *internal.Fiber {
	alt := fiber.Alternate
	if alt == nil {
		alt = &internal.Fiber{Tag: fiber.Tag}
	}

	alt.Alternate = fiber
	fiber.Alternate = alt

	alt.StateNode = fiber.StateNode
	alt.PendingProps = fiber.PendingProps
	alt.UpdateQueue = fiber.UpdateQueue
	alt.PendingWorkPriority = priority
	alt.EffectTag = internal.NoEffect
	alt.Child = nil
	alt.Sibling = nil
	alt.ProgressedChild = nil
	alt.FirstEffect = nil
	alt.LastEffect = nil
	alt.NextEffect = nil

	return alt
}

func hostNodeOf(parent *internal.Fiber) (*HostNode, error) {
	if parent.Tag == internal.HostContainerTag {
		root, ok := parent.StateNode.(*internal.FiberRoot)
		if !ok {
			return nil, fmt.Errorf("hostmem: host container fiber has no FiberRoot")
		}
		node, ok := root.ContainerInfo.(*HostNode)
		if !ok {
			return nil, fmt.Errorf("hostmem: root container info is not a *HostNode")
		}
		return node, nil
	}

	ns, ok := parent.StateNode.(*nodeState)
	if !ok || ns.node == nil {
		return nil, fmt.Errorf("hostmem: parent fiber has no host instance yet")
	}
	return ns.node, nil
}

func insertAt(children []*HostNode, index int, node *HostNode) []*HostNode {
	if index < 0 || index > len(children) {
		return append(children, node)
	}
	children = append(children, nil)
	copy(children[index+1:], children[index:])
	children[index] = node
	return children
}

func removeNode(children []*HostNode, node *HostNode) []*HostNode {
	for i, c := range children {
		if c == node {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	cloned := make(map[string]any, len(props))
	for k, v := range props {
		cloned[k] = v
	}
	return cloned
}

func applyPropsDiff(node *HostNode, next map[string]any) {
	if node.Props == nil {
		node.Props = map[string]any{}
	}
	for k := range node.Props {
		if _, ok := next[k]; !ok {
			delete(node.Props, k)
		}
	}
	for k, v := range next {
		node.Props[k] = v
	}
}

func callSafely(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = toErr(rec)
		}
	}()
	fn()
	return nil
}

func toErr(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
