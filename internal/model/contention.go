package model

import "strconv"

// Column headers for the contention aggregate.
const (
	ColumnBlockedCount  = "blockedCount"
	ColumnBlockedTimeMs = "blockedTimeMs"
)

// ContentionSample is the sum over all threads of the remote endpoint of the
// monitor-blocking counters, taken during one sampling pass.
type ContentionSample struct {
	BlockedCount  int64 // Total times threads blocked to enter or re-enter a monitor
	BlockedTimeMs int64 // Total time spent blocked, in milliseconds
}

// Add accumulates one thread's counters.
func (s *ContentionSample) Add(count, timeMs int64) {
	s.BlockedCount += count
	s.BlockedTimeMs += timeMs
}

// Values returns the two totals rendered in column order.
func (s ContentionSample) Values() []string {
	return []string{
		strconv.FormatInt(s.BlockedCount, 10),
		strconv.FormatInt(s.BlockedTimeMs, 10),
	}
}
