package regime

import "testing"

func TestThresholdScorer(t *testing.T) {
	s := ThresholdScorer{}
	cfg := ThresholdConfig{"bull": 70, "bear": 30}

	if got := s.Score(80, cfg); got != 1.0 {
		t.Fatalf("expected +1, got %v", got)
	}
	if got := s.Score(20, cfg); got != -1.0 {
		t.Fatalf("expected -1, got %v", got)
	}
	if got := s.Score(50, cfg); got != 0.0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestThresholdScorerMonotonic(t *testing.T) {
	s := ThresholdScorer{}
	cfg := ThresholdConfig{"bull": 70, "bear": 30}
	// Any two values above the bull threshold score identically.
	if s.Score(71, cfg) != s.Score(999, cfg) {
		t.Fatalf("scorer not monotonic above bull threshold")
	}
}

func TestMissingKeysNeverTrigger(t *testing.T) {
	s := ThresholdScorer{}
	if got := s.Score(1e12, ThresholdConfig{}); got != 0.0 {
		t.Fatalf("missing bull key triggered: %v", got)
	}
	if got := s.Score(-1e12, ThresholdConfig{}); got != 0.0 {
		t.Fatalf("missing bear key triggered: %v", got)
	}
}

func TestInverseThresholdScorer(t *testing.T) {
	s := InverseThresholdScorer{}
	cfg := ThresholdConfig{"bull": 1.0, "bear": 3.0}

	if got := s.Score(0.8, cfg); got != 1.0 {
		t.Fatalf("low value should be bullish, got %v", got)
	}
	if got := s.Score(3.5, cfg); got != -1.0 {
		t.Fatalf("high value should be bearish, got %v", got)
	}
	if got := s.Score(2.0, cfg); got != 0.0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestMultiplierScorer(t *testing.T) {
	s := MultiplierScorer{}
	cfg := ThresholdConfig{"bull_multiplier": 1.1, "bear_multiplier": 0.9}

	if got := s.Score(1.2, cfg); got != 1.0 {
		t.Fatalf("expected +1, got %v", got)
	}
	if got := s.Score(0.8, cfg); got != -1.0 {
		t.Fatalf("expected -1, got %v", got)
	}
}

func TestMomentumScorer(t *testing.T) {
	s := MomentumScorer{}
	cfg := ThresholdConfig{"bull_mom": 0.05, "bear_mom": -0.05}

	if got := s.Score(0.1, cfg); got != 1.0 {
		t.Fatalf("expected +1, got %v", got)
	}
	if got := s.Score(-0.1, cfg); got != -1.0 {
		t.Fatalf("expected -1, got %v", got)
	}
	if got := s.Score(0.0, cfg); got != 0.0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestWeightDefault(t *testing.T) {
	if w := (ThresholdConfig{}).Weight(); w != 1.0 {
		t.Fatalf("expected default weight 1.0, got %v", w)
	}
	if w := (ThresholdConfig{"weight": 2.5}).Weight(); w != 2.5 {
		t.Fatalf("expected weight 2.5, got %v", w)
	}
}
