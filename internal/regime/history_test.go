package regime

import (
	"testing"
	"time"

	"RegimePulse/internal/domain/models"
)

func TestAnalyzeHistoryBinsByDay(t *testing.T) {
	a := NewAnalyzer(testThresholds())
	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	metricsMap := map[string][]models.MetricData{
		"fear_greed_index": {
			{MetricName: "fear_greed_index", Value: 80, Timestamp: day1, Source: models.TierPrimary},
			{MetricName: "fear_greed_index", Value: 20, Timestamp: day2, Source: models.TierPrimary},
		},
		"mvrv_ratio": {
			{MetricName: "mvrv_ratio", Value: 0.9, Timestamp: day1, Source: models.TierPrimary},
		},
	}

	history := AnalyzeHistory(metricsMap, a)
	if len(history) != 2 {
		t.Fatalf("expected 2 daily verdicts, got %d", len(history))
	}
	if history[0].Timestamp != "2025-06-01" || history[1].Timestamp != "2025-06-02" {
		t.Fatalf("verdicts not chronological: %s, %s", history[0].Timestamp, history[1].Timestamp)
	}
	// Day 1 mixes both metrics: fng 80 (+1.5) and mvrv 0.9 (+2.0).
	if history[0].TotalScore != 3.5 {
		t.Fatalf("expected day1 score 3.5, got %v", history[0].TotalScore)
	}
	// Day 2 has only the bearish fng reading.
	if history[1].TotalScore != -1.5 {
		t.Fatalf("expected day2 score -1.5, got %v", history[1].TotalScore)
	}
}

func TestAnalyzeHistoryEmptyInput(t *testing.T) {
	history := AnalyzeHistory(map[string][]models.MetricData{}, NewAnalyzer(testThresholds()))
	if len(history) != 0 {
		t.Fatalf("expected no verdicts, got %d", len(history))
	}
}
