package models

// EngineVersion is stamped on every verdict the engine produces.
const EngineVersion = "1.0.0"

// Regime labels.
const (
	LabelBull        = "BULL"
	LabelBear        = "BEAR"
	LabelSideways    = "SIDEWAYS/TRANSITIONAL"
	LabelUnavailable = "DATA UNAVAILABLE"
)

// MetricSummary is one row of a verdict breakdown.
type MetricSummary struct {
	Metric     string     `json:"metric"`
	Score      float64    `json:"score"`
	RawValue   float64    `json:"raw_value"`
	Confidence Confidence `json:"confidence"`
	IsFallback bool       `json:"is_fallback"`
}

// AnomalyAlert flags a metric vector that deviates sharply from the recent
// baseline. The analyzer threads it through verbatim.
type AnomalyAlert struct {
	IsAnomaly    bool    `json:"is_anomaly"`
	AnomalyScore float64 `json:"anomaly_score"`
	Severity     string  `json:"severity"`
}

// Verdict is the aggregate market regime for one set of scored metrics.
type Verdict struct {
	EngineVersion string          `json:"engine_version"`
	Timestamp     string          `json:"timestamp"`
	TotalScore    float64         `json:"total_score"`
	Label         string          `json:"label"`
	Confidence    Confidence      `json:"confidence"`
	Breakdown     []MetricSummary `json:"breakdown"`
	Reasoning     []string        `json:"reasoning"`
	AnomalyAlert  *AnomalyAlert   `json:"anomaly_alert,omitempty"`
}

// MTFResult is the multi-timeframe confluence output.
type MTFResult struct {
	Daily           Verdict `json:"daily"`
	Weekly          Verdict `json:"weekly"`
	Monthly         Verdict `json:"monthly"`
	MacroThesis     string  `json:"macro_thesis"`
	ConfluenceScore int     `json:"confluence_score"`
}
