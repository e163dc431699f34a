package telemetry

import (
	"sort"
	"sync"
)

const (
	healthOK       = "ok"
	healthStarting = "starting"
	healthDegraded = "degraded"
)

// HealthReport is the /healthz payload.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthTracker aggregates named readiness checks. The process is healthy
// when every registered check is ready.
type HealthTracker struct {
	mu     sync.RWMutex
	checks map[string]string
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{checks: make(map[string]string)}
}

// Register adds a check in the not-ready state.
func (h *HealthTracker) Register(name string) {
	h.set(name, healthStarting)
}

func (h *HealthTracker) MarkReady(name string) {
	h.set(name, healthOK)
}

func (h *HealthTracker) MarkFailed(name, reason string) {
	if reason == "" {
		reason = "failed"
	}
	h.set(name, reason)
}

func (h *HealthTracker) set(name, state string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = state
}

func (h *HealthTracker) Report() HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	report := HealthReport{Status: healthOK}
	if len(h.checks) == 0 {
		return report
	}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		state := h.checks[name]
		report.Checks[name] = state
		if state != healthOK {
			report.Status = healthDegraded
		}
	}
	return report
}
