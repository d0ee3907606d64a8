package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational metrics of the refresh loop.
type Metrics struct {
	TicksStarted          uint64 `json:"ticks_started"`
	TicksCompleted        uint64 `json:"ticks_completed"`
	TicksFailed           uint64 `json:"ticks_failed"`
	MergeRequestsRendered uint64 `json:"merge_requests_rendered"`
	LastTickDurationMs    uint64 `json:"last_tick_duration_ms"`
	LastTickUnix          int64  `json:"last_tick_unix"`
}

var global = &Metrics{}

// TickStarted increments the count of refresh ticks started.
func TickStarted() { atomic.AddUint64(&global.TicksStarted, 1) }

// TickCompleted records a successful tick that rendered n merge requests.
func TickCompleted(n int, took time.Duration) {
	atomic.AddUint64(&global.TicksCompleted, 1)
	atomic.StoreUint64(&global.MergeRequestsRendered, uint64(n))
	atomic.StoreUint64(&global.LastTickDurationMs, uint64(took.Milliseconds()))
	atomic.StoreInt64(&global.LastTickUnix, time.Now().Unix())
}

// TickFailed increments the count of ticks whose refresh failed.
func TickFailed() { atomic.AddUint64(&global.TicksFailed, 1) }

// Get returns a snapshot of the current metrics.
func Get() Metrics {
	return Metrics{
		TicksStarted:          atomic.LoadUint64(&global.TicksStarted),
		TicksCompleted:        atomic.LoadUint64(&global.TicksCompleted),
		TicksFailed:           atomic.LoadUint64(&global.TicksFailed),
		MergeRequestsRendered: atomic.LoadUint64(&global.MergeRequestsRendered),
		LastTickDurationMs:    atomic.LoadUint64(&global.LastTickDurationMs),
		LastTickUnix:          atomic.LoadInt64(&global.LastTickUnix),
	}
}

// Reset resets all metrics to zero (useful for testing).
func Reset() {
	atomic.StoreUint64(&global.TicksStarted, 0)
	atomic.StoreUint64(&global.TicksCompleted, 0)
	atomic.StoreUint64(&global.TicksFailed, 0)
	atomic.StoreUint64(&global.MergeRequestsRendered, 0)
	atomic.StoreUint64(&global.LastTickDurationMs, 0)
	atomic.StoreInt64(&global.LastTickUnix, 0)
}
