package observability

import "recipebook/application/ports"

// MultiMetrics fans every call out to several recorders.
type MultiMetrics []ports.Metrics

// Increment implements ports.Metrics
func (m MultiMetrics) Increment(metric, label string) {
	for _, r := range m {
		r.Increment(metric, label)
	}
}

// StartTimer implements ports.Metrics
func (m MultiMetrics) StartTimer(metric, label string) ports.Timer {
	timers := make([]ports.Timer, len(m))
	for i, r := range m {
		timers[i] = r.StartTimer(metric, label)
	}
	return timerFunc(func() {
		for _, t := range timers {
			t.Stop()
		}
	})
}
