package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleWorkInvalidatesLessUrgentCursor(t *testing.T) {
	hc := &stubHostConfig{
		scheduleAnimation: func(cb func()) {},
		scheduleDeferred:  func(cb func(Deadline)) {},
	}
	s := NewScheduler(hc, &stubReconciler{beginWork: listBeginWork})

	root := s.CreateRoot(nil)
	root.Current.PendingProps = []string{"a"}

	s.ScheduleDeferredWork(root, LowPriority)

	// Pretend a Low-priority unit is mid-flight.
	s.nextUnitOfWork = &Fiber{Tag: testLeafTag}
	s.nextPriorityLevel = LowPriority

	s.ScheduleDeferredWork(root, SynchronousPriority)

	assert.Nil(t, s.nextUnitOfWork, "a more urgent update invalidates the in-flight cursor")
}

func TestScheduleWorkLeavesMoreUrgentCursorAlone(t *testing.T) {
	hc := &stubHostConfig{
		scheduleAnimation: func(cb func()) {},
		scheduleDeferred:  func(cb func(Deadline)) {},
	}
	s := NewScheduler(hc, &stubReconciler{beginWork: listBeginWork})

	root := s.CreateRoot(nil)
	root.Current.PendingProps = []string{"a"}
	s.ScheduleDeferredWork(root, SynchronousPriority)

	inFlight := &Fiber{Tag: testLeafTag}
	s.nextUnitOfWork = inFlight
	s.nextPriorityLevel = SynchronousPriority

	s.ScheduleDeferredWork(root, LowPriority)

	assert.Same(t, inFlight, s.nextUnitOfWork, "a less urgent update must not preempt in-flight sync work")
}

func TestPerformWithPriorityRestoresEvenOnPanic(t *testing.T) {
	s := NewScheduler(&stubHostConfig{}, &stubReconciler{})

	assert.Equal(t, SynchronousPriority, s.priorityContext)

	func() {
		defer func() { recover() }()
		s.PerformWithPriority(LowPriority, func() {
			assert.Equal(t, LowPriority, s.priorityContext)
			panic("boom")
		})
	}()

	assert.Equal(t, SynchronousPriority, s.priorityContext, "priorityContext must unwind even when fn panics")
}

func TestSyncUpdatesPinsPriorityForTheDurationOfFn(t *testing.T) {
	s := NewScheduler(&stubHostConfig{}, &stubReconciler{})
	s.priorityContext = LowPriority

	var observed PriorityLevel
	s.SyncUpdates(func() { observed = s.priorityContext })

	assert.Equal(t, SynchronousPriority, observed)
	assert.Equal(t, LowPriority, s.priorityContext, "restored to whatever was active before")
}

// countdownDeadline reports a large remaining budget for its first
// exhaustAfter calls, then zero — simulating a deferred callback whose
// slice runs out partway through a drain.
type countdownDeadline struct {
	calls        int
	exhaustAfter int
}

func (d *countdownDeadline) TimeRemaining() float64 {
	d.calls++
	if d.calls > d.exhaustAfter {
		return 0
	}
	return 1000
}

func TestPerformDeferredWorkReregistersWhenSliceRunsOut(t *testing.T) {
	var registrations int
	var captured func(Deadline)
	hc := &stubHostConfig{
		scheduleDeferred: func(cb func(Deadline)) {
			registrations++
			captured = cb
		},
	}

	s := NewScheduler(hc, &stubReconciler{beginWork: listBeginWork})
	root := s.CreateRoot(nil)
	root.Current.PendingProps = []string{"a", "b"}

	s.ScheduleDeferredWork(root, LowPriority)
	require.Equal(t, 1, registrations)
	require.NotNil(t, captured)

	// The slice has budget for exactly one shouldContinue check before it
	// runs out, so runLoop performs the container's beginWork (discovering
	// two pending leaves) and then stops before finishing either one.
	captured(&countdownDeadline{exhaustAfter: 1})

	assert.Equal(t, 2, registrations, "work left over when the slice runs out must re-register a deferred callback")
	assert.NotNil(t, s.nextUnitOfWork, "the cursor must survive to resume the unfinished tree on the next callback")
}
