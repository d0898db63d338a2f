package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	cyclesCompleted atomic.Uint64
	cycleFaults     atomic.Uint64
	symbolFaults    atomic.Uint64
	ordersExecuted  atomic.Uint64
	errorsTotal     atomic.Uint64

	// Cycle duration tracking
	cycleDurSumNs atomic.Int64
	cycleDurCount atomic.Uint64

	// Gauges
	running atomic.Int32 // 1 = RUNNING, 0 = STOPPED
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCycle records a completed trading cycle with its duration.
func (m *Metrics) RecordCycle(dur time.Duration) {
	m.cyclesCompleted.Add(1)
	m.cycleDurSumNs.Add(dur.Nanoseconds())
	m.cycleDurCount.Add(1)
}

// RecordCycleFault records a cycle-level fault (triggers backoff).
func (m *Metrics) RecordCycleFault() {
	m.cycleFaults.Add(1)
	m.errorsTotal.Add(1)
}

// RecordSymbolFault records a fault isolated to a single symbol.
func (m *Metrics) RecordSymbolFault() {
	m.symbolFaults.Add(1)
	m.errorsTotal.Add(1)
}

// RecordOrderExecuted records a submitted and acknowledged order.
func (m *Metrics) RecordOrderExecuted() {
	m.ordersExecuted.Add(1)
}

// SetRunning sets the controller run gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.running.Store(1)
	} else {
		m.running.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	CyclesCompleted uint64    `json:"cycles_completed"`
	CycleFaults     uint64    `json:"cycle_faults"`
	SymbolFaults    uint64    `json:"symbol_faults"`
	OrdersExecuted  uint64    `json:"orders_executed"`
	ErrorsTotal     uint64    `json:"errors_total"`
	AvgCycleNs      int64     `json:"avg_cycle_ns"`
	Running         bool      `json:"running"`
	Timestamp       time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avg int64
	count := m.cycleDurCount.Load()
	if count > 0 {
		avg = m.cycleDurSumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		CyclesCompleted: m.cyclesCompleted.Load(),
		CycleFaults:     m.cycleFaults.Load(),
		SymbolFaults:    m.symbolFaults.Load(),
		OrdersExecuted:  m.ordersExecuted.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		AvgCycleNs:      avg,
		Running:         m.running.Load() == 1,
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.cyclesCompleted.Store(0)
	m.cycleFaults.Store(0)
	m.symbolFaults.Store(0)
	m.ordersExecuted.Store(0)
	m.errorsTotal.Store(0)
	m.cycleDurSumNs.Store(0)
	m.cycleDurCount.Store(0)
	m.running.Store(0)
}
