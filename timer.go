package canvas

import (
	"sync"
	"time"
)

// Timer is a single-slot cancellable timer: scheduling replaces any
// pending callback, so a burst of dirty mutations within the quiet period
// collapses to one fire. Implementations must be safe for concurrent
// use.
type Timer interface {
	// Schedule cancels any pending callback and arms fn to run after d.
	Schedule(d time.Duration, fn func())

	// Stop cancels the pending callback if one is armed and reports
	// whether it did.
	Stop() bool
}

// afterFuncTimer is the default Timer, backed by time.AfterFunc.
type afterFuncTimer struct {
	mu sync.Mutex
	t  *time.Timer
}

func newAfterFuncTimer() *afterFuncTimer { return &afterFuncTimer{} }

// Schedule implements Timer.
func (a *afterFuncTimer) Schedule(d time.Duration, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
	}
	a.t = time.AfterFunc(d, fn)
}

// Stop implements Timer.
func (a *afterFuncTimer) Stop() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t == nil {
		return false
	}
	stopped := a.t.Stop()
	a.t = nil
	return stopped
}
