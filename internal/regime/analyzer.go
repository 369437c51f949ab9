package regime

import (
	"RegimePulse/internal/domain/models"
)

// Analyzer binds each metric name to a scoring strategy and its threshold
// block, and turns raw observations into weighted scored metrics.
type Analyzer struct {
	thresholds map[string]ThresholdConfig
	strategies map[string]Scorer
}

// NewAnalyzer creates an analyzer over the given threshold configuration.
func NewAnalyzer(thresholds map[string]ThresholdConfig) *Analyzer {
	return &Analyzer{
		thresholds: thresholds,
		strategies: map[string]Scorer{
			"fear_greed_index":        ThresholdScorer{},
			"perpetual_funding_rates": ThresholdScorer{},
			"mvrv_ratio":              InverseThresholdScorer{},
			"rsi":                     InverseThresholdScorer{},
			"hash_rate":               MultiplierScorer{},
			"exchange_net_flows":      MultiplierScorer{},
			"active_addresses":        MomentumScorer{},
			"open_interest":           MomentumScorer{},
		},
	}
}

// ScoreMetric scores one observation. Failed readings and metrics with no
// threshold block degrade to zero-score LOW confidence rather than erroring.
func (a *Analyzer) ScoreMetric(data models.MetricData) models.ScoredMetric {
	name := data.MetricName

	// The price feed is scored against the RSI threshold block.
	thresholdKey := name
	if name == "price_data" {
		thresholdKey = "rsi"
	}

	if data.Source == models.TierFailed {
		return models.ScoredMetric{
			MetricName: name,
			Score:      0.0,
			RawValue:   0.0,
			Confidence: models.ConfidenceLow,
			Reason:     "source_failed",
			Timestamp:  data.Timestamp,
		}
	}

	t, okT := a.thresholds[thresholdKey]
	strategy, okS := a.strategies[thresholdKey]
	if !okT || !okS {
		return models.ScoredMetric{
			MetricName: name,
			Score:      0.0,
			RawValue:   data.Value,
			Confidence: models.ConfidenceLow,
			Reason:     "missing_config",
			Timestamp:  data.Timestamp,
		}
	}

	confidence := models.ConfidenceHigh
	if data.Source != models.TierPrimary {
		confidence = models.ConfidenceMedium
	}

	return models.ScoredMetric{
		MetricName: name,
		Score:      strategy.Score(data.Value, t) * t.Weight(),
		RawValue:   data.Value,
		Confidence: confidence,
		IsFallback: data.Source == models.TierBackup,
		Timestamp:  data.Timestamp,
	}
}
