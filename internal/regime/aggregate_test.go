package regime

import (
	"strings"
	"testing"
	"time"

	"RegimePulse/internal/domain/models"
)

func sm(name string, score, raw float64, conf models.Confidence) models.ScoredMetric {
	return models.ScoredMetric{
		MetricName: name,
		Score:      score,
		RawValue:   raw,
		Confidence: conf,
		Timestamp:  time.Now(),
	}
}

func TestEmptyInputSentinel(t *testing.T) {
	v := CalculateRegime(nil, nil)

	if v.Label != models.LabelUnavailable {
		t.Fatalf("expected sentinel label, got %s", v.Label)
	}
	if v.TotalScore != 0 {
		t.Fatalf("expected zero score, got %v", v.TotalScore)
	}
	if len(v.Reasoning) == 0 || !strings.Contains(v.Reasoning[0], "No data") {
		t.Fatalf("expected no-data reasoning, got %v", v.Reasoning)
	}
}

func TestLabelThresholds(t *testing.T) {
	bull := CalculateRegime([]models.ScoredMetric{sm("hash_rate", 4, 1.2, models.ConfidenceHigh)}, nil)
	if bull.Label != models.LabelBull {
		t.Fatalf("score +4 should be BULL, got %s", bull.Label)
	}

	bear := CalculateRegime([]models.ScoredMetric{sm("hash_rate", -4, 0.8, models.ConfidenceHigh)}, nil)
	if bear.Label != models.LabelBear {
		t.Fatalf("score -4 should be BEAR, got %s", bear.Label)
	}

	side := CalculateRegime([]models.ScoredMetric{sm("hash_rate", 1, 1.0, models.ConfidenceHigh)}, nil)
	if side.Label != models.LabelSideways {
		t.Fatalf("score +1 should be SIDEWAYS, got %s", side.Label)
	}
}

func TestConfidenceRollup(t *testing.T) {
	metrics := []models.ScoredMetric{
		sm("a", 1, 0, models.ConfidenceLow),
		sm("b", 1, 0, models.ConfidenceLow),
		sm("c", 1, 0, models.ConfidenceHigh),
	}
	v := CalculateRegime(metrics, nil)
	// 2/3 LOW inputs is above the 0.6 cutoff.
	if v.Confidence != models.ConfidenceLow {
		t.Fatalf("expected LOW rollup, got %s", v.Confidence)
	}

	allHigh := []models.ScoredMetric{
		sm("a", 1, 0, models.ConfidenceHigh),
		sm("b", 1, 0, models.ConfidenceHigh),
		sm("c", 1, 0, models.ConfidenceHigh),
	}
	if got := CalculateRegime(allHigh, nil).Confidence; got != models.ConfidenceHigh {
		t.Fatalf("expected HIGH rollup, got %s", got)
	}
}

func TestReasoningTopDrivers(t *testing.T) {
	metrics := []models.ScoredMetric{
		sm("fear_greed_index", 0.1, 51, models.ConfidenceHigh),
		sm("hash_rate", -2.0, 450, models.ConfidenceHigh),
		sm("rsi", 0.2, 55, models.ConfidenceHigh),
		sm("mvrv_ratio", 0.05, 1.8, models.ConfidenceHigh),
	}

	v := CalculateRegime(metrics, nil)
	if len(v.Reasoning) != 3 {
		t.Fatalf("expected 3 reasons, got %d", len(v.Reasoning))
	}
	// Highest magnitude driver narrated first.
	if !strings.Contains(v.Reasoning[0], "Hash Rate") {
		t.Fatalf("hash rate should lead reasoning: %v", v.Reasoning)
	}
	if !strings.Contains(v.Reasoning[0], "Bearish") {
		t.Fatalf("expected bearish phrasing: %v", v.Reasoning[0])
	}
}

func TestReasoningAdjectiveTiers(t *testing.T) {
	extreme := CalculateRegime([]models.ScoredMetric{sm("hash_rate", 1.6, 1.3, models.ConfidenceHigh)}, nil)
	if !strings.Contains(extreme.Reasoning[0], "Extreme") {
		t.Fatalf("score 1.6 should read Extreme: %v", extreme.Reasoning)
	}

	strong := CalculateRegime([]models.ScoredMetric{sm("hash_rate", 1.0, 1.2, models.ConfidenceHigh)}, nil)
	if !strings.Contains(strong.Reasoning[0], "Strong") {
		t.Fatalf("score 1.0 should read Strong: %v", strong.Reasoning)
	}

	moderate := CalculateRegime([]models.ScoredMetric{sm("hash_rate", 0.5, 1.1, models.ConfidenceHigh)}, nil)
	if !strings.Contains(moderate.Reasoning[0], "Moderate") {
		t.Fatalf("score 0.5 should read Moderate: %v", moderate.Reasoning)
	}
}

func TestFearGreedAndRSIZonePhrasing(t *testing.T) {
	fng := CalculateRegime([]models.ScoredMetric{sm("fear_greed_index", -1.5, 22, models.ConfidenceHigh)}, nil)
	if !strings.Contains(fng.Reasoning[0], "Fear zone") {
		t.Fatalf("expected Fear zone phrasing: %v", fng.Reasoning)
	}

	rsi := CalculateRegime([]models.ScoredMetric{sm("rsi", 1.0, 25, models.ConfidenceHigh)}, nil)
	if !strings.Contains(rsi.Reasoning[0], "Oversold") {
		t.Fatalf("expected Oversold phrasing: %v", rsi.Reasoning)
	}
}

func TestAnomalyThreadedThrough(t *testing.T) {
	alert := &models.AnomalyAlert{IsAnomaly: true, AnomalyScore: 4.2, Severity: "critical"}
	v := CalculateRegime([]models.ScoredMetric{sm("hash_rate", 1, 1.1, models.ConfidenceHigh)}, alert)

	if v.AnomalyAlert == nil || v.AnomalyAlert.AnomalyScore != 4.2 {
		t.Fatalf("anomaly alert not attached verbatim: %+v", v.AnomalyAlert)
	}

	plain := CalculateRegime([]models.ScoredMetric{sm("hash_rate", 1, 1.1, models.ConfidenceHigh)}, nil)
	if plain.AnomalyAlert != nil {
		t.Fatalf("anomaly alert should be absent when not supplied")
	}
}

func TestBreakdownRounding(t *testing.T) {
	v := CalculateRegime([]models.ScoredMetric{sm("mvrv_ratio", 1.23456, 2.345678, models.ConfidenceHigh)}, nil)
	if v.Breakdown[0].Score != 1.23 {
		t.Fatalf("score rounded to 2dp, got %v", v.Breakdown[0].Score)
	}
	if v.Breakdown[0].RawValue != 2.3457 {
		t.Fatalf("raw rounded to 4dp, got %v", v.Breakdown[0].RawValue)
	}
	if v.EngineVersion != models.EngineVersion {
		t.Fatalf("engine version missing")
	}
}
