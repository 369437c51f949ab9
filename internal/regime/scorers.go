package regime

import "math"

// ThresholdConfig is one metric's threshold block from thresholds config.
// Recognized keys depend on the scorer (bull/bear, bull_multiplier/
// bear_multiplier, bull_mom/bear_mom) plus the shared "weight".
type ThresholdConfig map[string]float64

func (t ThresholdConfig) get(key string, def float64) float64 {
	if v, ok := t[key]; ok {
		return v
	}
	return def
}

// Weight returns the metric weight, defaulting to 1.0.
func (t ThresholdConfig) Weight() float64 {
	return t.get("weight", 1.0)
}

// Scorer maps a raw indicator value to a directional score in {-1, 0, +1}.
// Missing threshold keys disable that side of the condition.
type Scorer interface {
	Score(value float64, t ThresholdConfig) float64
}

// ThresholdScorer signals on absolute thresholds, high value bullish
// (fear & greed, funding rates).
type ThresholdScorer struct{}

func (ThresholdScorer) Score(value float64, t ThresholdConfig) float64 {
	if value > t.get("bull", math.Inf(1)) {
		return 1.0
	}
	if value < t.get("bear", math.Inf(-1)) {
		return -1.0
	}
	return 0.0
}

// InverseThresholdScorer signals on absolute thresholds, low value bullish
// (MVRV, RSI).
type InverseThresholdScorer struct{}

func (InverseThresholdScorer) Score(value float64, t ThresholdConfig) float64 {
	if value < t.get("bull", math.Inf(-1)) {
		return 1.0
	}
	if value > t.get("bear", math.Inf(1)) {
		return -1.0
	}
	return 0.0
}

// MultiplierScorer signals on historical multipliers (hash rate, net flows).
type MultiplierScorer struct{}

func (MultiplierScorer) Score(value float64, t ThresholdConfig) float64 {
	if value > t.get("bull_multiplier", math.Inf(1)) {
		return 1.0
	}
	if value < t.get("bear_multiplier", math.Inf(-1)) {
		return -1.0
	}
	return 0.0
}

// MomentumScorer signals on trend momentum (active addresses, open interest).
type MomentumScorer struct{}

func (MomentumScorer) Score(value float64, t ThresholdConfig) float64 {
	if value > t.get("bull_mom", math.Inf(1)) {
		return 1.0
	}
	if value < t.get("bear_mom", math.Inf(-1)) {
		return -1.0
	}
	return 0.0
}
