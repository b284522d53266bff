package boxk

import "sync/atomic"

var sessionCounter int64

// GetSessionID a process wide driver session ID
func GetSessionID() int64 {
	return atomic.AddInt64(&sessionCounter, 1)
}
