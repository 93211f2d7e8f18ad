package scheduler

import "sync"

var (
	activeScheduler Scheduler
	schedulerMu     sync.RWMutex
)

// SetActiveScheduler sets the scheduler that submit uses for this process.
// The root command sets it once configuration is loaded; nil clears it.
func SetActiveScheduler(s Scheduler) {
	schedulerMu.Lock()
	defer schedulerMu.Unlock()
	activeScheduler = s
}

// ActiveScheduler returns the scheduler set by SetActiveScheduler, or nil when
// submission is disabled or no scheduler was found.
func ActiveScheduler() Scheduler {
	schedulerMu.RLock()
	defer schedulerMu.RUnlock()
	return activeScheduler
}

// ClearActiveScheduler resets the active scheduler reference.
func ClearActiveScheduler() {
	SetActiveScheduler(nil)
}
