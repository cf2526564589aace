package hostmem

// Element is the reconciler's input shape: a description of what a fiber
// should render next. A Fiber's pending Element is held as its
// PendingProps.
type Element struct {
	Key      string
	Tag      string
	Props    map[string]any
	Children []Element

	// Boundary marks this element as an error boundary: a failure
	// anywhere in Children (or a descendant's Render panic) is trapped
	// here instead of propagating further up.
	Boundary bool
	// Fallback is rendered in place of Children once this boundary has
	// recorded an error, until the tree is remounted.
	Fallback []Element

	// OnCommit fires after this element's host node is inserted or
	// updated. OnUnmount fires when it is removed.
	OnCommit  func()
	OnUnmount func()

	// Render, if set, replaces Children as the source of this element's
	// children, computed once per reconciliation pass. A panic inside
	// Render is recovered and surfaced as a trappable error.
	Render func([]Element) []Element
}
