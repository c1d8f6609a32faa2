package loopguard

import "sync/atomic"

// Metrics tracks guard decision outcomes. Only loop-goroutine calls are
// counted: the off-loop fast path stays a bare identity comparison.
//
// All methods are safe for concurrent use.
type Metrics struct {
	exempted atomic.Uint64
	warned   atomic.Uint64
	denied   atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of the gateway's counters.
type MetricsSnapshot struct {
	// Exempted counts loop-goroutine calls an allow predicate let through.
	Exempted uint64
	// Warned counts advisory violations (warn + execute).
	Warned uint64
	// Denied counts fatal violations (the original never ran).
	Denied uint64
}

// Snapshot returns a copy of the current counter values. The counters are
// read individually; a snapshot taken during concurrent calls is not a
// single atomic cut.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Exempted: m.exempted.Load(),
		Warned:   m.warned.Load(),
		Denied:   m.denied.Load(),
	}
}

func (m *Metrics) incExempted() {
	if m != nil {
		m.exempted.Add(1)
	}
}

func (m *Metrics) incWarned() {
	if m != nil {
		m.warned.Add(1)
	}
}

func (m *Metrics) incDenied() {
	if m != nil {
		m.denied.Add(1)
	}
}
