package internal

import (
	"fmt"

	"github.com/petermattis/goid"
)

// assertAffinity panics with a SchedulerError wrapping ErrWrongGoroutine if
// the calling goroutine isn't the one that constructed s. Every entry point
// into the scheduler must run on the same logical agent as the work loop;
// this turns a violation into an immediate, diagnosable panic instead of a
// silent data race on the fiber tree.
func (s *Scheduler) assertAffinity() {
	if gid := goid.Get(); gid != s.ownerGID {
		panicInvariant(ViolationWrongGoroutine, fmt.Errorf("%w: owner=%d caller=%d", ErrWrongGoroutine, s.ownerGID, gid))
	}
}
