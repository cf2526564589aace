package internal

// Deadline reports remaining idle budget for a deferred work slice.
type Deadline interface {
	TimeRemaining() float64 // milliseconds
}

// HostConfig is the embedding runtime's callback-scheduling surface. The
// scheduler is generic over it; element-mutation primitives live on the
// Reconciler instead (see reconciler.go), since the scheduler never touches
// host instances directly.
type HostConfig interface {
	ScheduleAnimationCallback(cb func())
	ScheduleDeferredCallback(cb func(Deadline))
	UseSyncScheduling() bool
}
