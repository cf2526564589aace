package hostmem_test

import (
	"testing"

	"github.com/kaelanwillis/loom"
	"github.com/kaelanwillis/loom/hostmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *loom.Scheduler {
	return loom.NewScheduler(hostmem.NewInMemoryHostConfig(), hostmem.NewReferenceReconciler())
}

func tagsOf(nodes []*hostmem.HostNode) []string {
	tags := make([]string, len(nodes))
	for i, n := range nodes {
		tags[i] = n.Tag
	}
	return tags
}

func TestMountBuildsHostTree(t *testing.T) {
	s := newTestScheduler()
	root := hostmem.NewRoot(s, "root")

	hostmem.Mount(s, root, []hostmem.Element{
		{Key: "a", Tag: "div", Props: map[string]any{"class": "one"}},
		{Key: "b", Tag: "span"},
	})

	children := hostmem.Container(root).Children
	require.Len(t, children, 2)
	assert.Equal(t, []string{"div", "span"}, tagsOf(children))
	assert.Equal(t, "one", children[0].Props["class"])
}

func TestUpdateReordersAndReusesMatchedKeys(t *testing.T) {
	s := newTestScheduler()
	root := hostmem.NewRoot(s, "root")

	hostmem.Mount(s, root, []hostmem.Element{
		{Key: "a", Tag: "div"},
		{Key: "b", Tag: "span"},
	})

	before := hostmem.Container(root).Children
	require.Len(t, before, 2)
	nodeA, nodeB := before[0], before[1]

	hostmem.Update(s, root, []hostmem.Element{
		{Key: "b", Tag: "span"},
		{Key: "a", Tag: "div"},
		{Key: "c", Tag: "p"},
	})

	after := hostmem.Container(root).Children
	require.Len(t, after, 3)
	assert.Equal(t, []string{"span", "div", "p"}, tagsOf(after))
	assert.Same(t, nodeB, after[0], "reused keys keep their HostNode identity")
	assert.Same(t, nodeA, after[1], "reused keys keep their HostNode identity")
}

func TestUpdateAppliesPropDiffAddAndRemove(t *testing.T) {
	s := newTestScheduler()
	root := hostmem.NewRoot(s, "root")

	hostmem.Mount(s, root, []hostmem.Element{
		{Key: "a", Tag: "div", Props: map[string]any{"keep": 1, "drop": 2}},
	})

	hostmem.Update(s, root, []hostmem.Element{
		{Key: "a", Tag: "div", Props: map[string]any{"keep": 1, "added": 3}},
	})

	props := hostmem.Container(root).Children[0].Props
	assert.Equal(t, 1, props["keep"])
	assert.Equal(t, 3, props["added"])
	_, hadDrop := props["drop"]
	assert.False(t, hadDrop, "a prop absent from the next render must be removed, not merely left stale")
}

func TestUpdateRemovesUnmatchedChildAndFiresOnUnmount(t *testing.T) {
	s := newTestScheduler()
	root := hostmem.NewRoot(s, "root")

	unmounted := false
	hostmem.Mount(s, root, []hostmem.Element{
		{Key: "x", Tag: "div", OnUnmount: func() { unmounted = true }},
	})
	require.Len(t, hostmem.Container(root).Children, 1)

	hostmem.Update(s, root, nil)

	assert.Empty(t, hostmem.Container(root).Children)
	assert.True(t, unmounted)
}

func TestOnCommitFiresAfterMountAndUpdate(t *testing.T) {
	s := newTestScheduler()
	root := hostmem.NewRoot(s, "root")

	commits := 0
	hostmem.Mount(s, root, []hostmem.Element{
		{Key: "a", Tag: "div", OnCommit: func() { commits++ }},
	})
	assert.Equal(t, 1, commits)

	hostmem.Update(s, root, []hostmem.Element{
		{Key: "a", Tag: "div", Props: map[string]any{"x": 1}, OnCommit: func() { commits++ }},
	})
	assert.Equal(t, 2, commits)
}

func TestErrorBoundaryRendersFallbackAfterChildRenderPanics(t *testing.T) {
	s := newTestScheduler()
	root := hostmem.NewRoot(s, "root")

	boom := func([]hostmem.Element) []hostmem.Element { panic("boom") }

	hostmem.Mount(s, root, []hostmem.Element{
		{
			Key:      "boundary",
			Tag:      "boundary-node",
			Boundary: true,
			Children: []hostmem.Element{{Key: "child", Tag: "will-panic", Render: boom}},
			Fallback: []hostmem.Element{{Key: "fallback", Tag: "fallback-node"}},
		},
	})

	boundaryNode := hostmem.Container(root).Children[0]
	require.Len(t, boundaryNode.Children, 1)
	assert.Equal(t, "fallback-node", boundaryNode.Children[0].Tag)
}
