package models

import "time"

// HealthEntry records one fetch attempt against one source tier.
type HealthEntry struct {
	MetricName string     `json:"metric_name"`
	Source     SourceTier `json:"source"`
	Success    bool       `json:"success"`
	LatencyMs  float64    `json:"latency_ms"`
	Timestamp  time.Time  `json:"timestamp"`
	Error      string     `json:"error,omitempty"`
}

// SourceStatus is the last observed state of one metric's acquisition.
type SourceStatus struct {
	LastSource  SourceTier `json:"last_source"`
	LastSuccess bool       `json:"last_success"`
	LastLatency float64    `json:"last_latency_ms"`
	LastError   string     `json:"last_error,omitempty"`
}
