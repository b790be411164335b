// Package pool keeps reusable timers for the bounded waits on the message send path.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer for the given duration d from the pool.
//
// Return back the timer to the pool with PutTimer.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		if t.Reset(d) {
			// still active: drop a value that may already be buffered
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	return time.NewTimer(d)
}

// PutTimer returns timer to the pool.
//
// t cannot be accessed after returning to the pool.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}

// WaitSignal blocks until ch yields a value or is closed, or until d elapses.
// It reports whether ch fired before the deadline. A non-positive d polls ch once.
func WaitSignal(ch <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}

	timer := GetTimer(d)
	defer PutTimer(timer)

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
