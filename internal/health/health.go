// Package health tracks process liveness and readiness state exposed by the
// HTTP health endpoints. The monitor is safe for concurrent use; writers are
// the startup sequence and the AI connectivity probe, readers are the HTTP
// handlers and the /status command.
package health

import (
	"sync"
	"time"
)

// Monitor holds the current health state of the process.
type Monitor struct {
	startTime time.Time

	mu          sync.RWMutex
	ready       bool
	aiConnected bool
	aiCheckedAt time.Time
}

// NewMonitor creates a Monitor with the start time set to now.
// The process is not ready until SetReady is called.
func NewMonitor() *Monitor {
	return &Monitor{startTime: time.Now()}
}

// SetReady marks the process as ready to serve traffic. Called once startup
// (bot registration, webhook setup) has completed.
func (m *Monitor) SetReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = true
}

// Ready reports whether startup has completed.
func (m *Monitor) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// RecordAIProbe stores the result of the latest AI connectivity check.
// Readiness is not gated on it; health endpoints stay green regardless of
// AI-call failures.
func (m *Monitor) RecordAIProbe(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aiConnected = connected
	m.aiCheckedAt = time.Now()
}

// AIStatus returns the latest AI probe result and when it was taken.
// The zero time means no probe has run yet.
func (m *Monitor) AIStatus() (connected bool, checkedAt time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.aiConnected, m.aiCheckedAt
}

// Uptime returns how long the process has been running.
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}
