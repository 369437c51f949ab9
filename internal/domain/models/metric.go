package models

import "time"

// SourceTier is the rank of the data source a value was obtained from.
type SourceTier string

const (
	TierPrimary SourceTier = "primary"
	TierBackup  SourceTier = "backup"
	TierFailed  SourceTier = "failed"
)

// Confidence is the qualitative reliability of a reading or verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// MetricData is a single observation of a market indicator.
type MetricData struct {
	MetricName string     `json:"metric_name"`
	Value      float64    `json:"value"`
	Timestamp  time.Time  `json:"timestamp"`
	Source     SourceTier `json:"source"`
}

// ScoredMetric is a MetricData after threshold scoring and weighting.
type ScoredMetric struct {
	MetricName string     `json:"metric_name"`
	Score      float64    `json:"score"`
	RawValue   float64    `json:"raw_value"`
	Confidence Confidence `json:"confidence"`
	IsFallback bool       `json:"is_fallback"`
	Reason     string     `json:"reason,omitempty"` // source_failed | missing_config
	Timestamp  time.Time  `json:"timestamp"`
}
