package hostmem

import "github.com/kaelanwillis/loom"

// NewRoot creates a root over a fresh, empty HostNode container.
func NewRoot(s *loom.Scheduler, containerTag string) *loom.FiberRoot {
	return s.CreateRoot(&HostNode{Tag: containerTag})
}

// Mount sets root's children for the first time and schedules work to
// render them at the scheduler's current priority context.
func Mount(s *loom.Scheduler, root *loom.FiberRoot, children []Element) {
	root.Current.PendingProps = children
	s.ScheduleWork(root)
}

// Update re-renders root with a new children set, bubbling priority up
// from root's own fiber.
func Update(s *loom.Scheduler, root *loom.FiberRoot, children []Element) {
	root.Current.PendingProps = children
	s.ScheduleUpdate(root.Current)
}

// Container returns the root's committed host tree.
func Container(root *loom.FiberRoot) *HostNode {
	return root.ContainerInfo.(*HostNode)
}
