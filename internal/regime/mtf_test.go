package regime

import (
	"strings"
	"testing"
	"time"

	"RegimePulse/internal/domain/models"
)

// uniformSeries builds daysBack days of identical readings ending at now.
func uniformSeries(name string, value float64, daysBack int, now time.Time) []models.MetricData {
	points := make([]models.MetricData, 0, daysBack)
	for i := 0; i < daysBack; i++ {
		points = append(points, models.MetricData{
			MetricName: name,
			Value:      value,
			Timestamp:  now.AddDate(0, 0, -i),
			Source:     models.TierPrimary,
		})
	}
	return points
}

func TestFullBullishConfluence(t *testing.T) {
	now := time.Now()
	a := NewAnalyzer(map[string]ThresholdConfig{
		"fear_greed_index": {"bull": 70, "bear": 30, "weight": 2.0},
		"mvrv_ratio":       {"bull": 1.0, "bear": 3.0, "weight": 2.0},
	})

	metricsMap := map[string][]models.MetricData{
		"fear_greed_index": uniformSeries("fear_greed_index", 85, 31, now),
		"mvrv_ratio":       uniformSeries("mvrv_ratio", 0.8, 31, now),
	}

	res := AnalyzeMTFAt(metricsMap, a, now)

	for horizon, v := range map[string]models.Verdict{"daily": res.Daily, "weekly": res.Weekly, "monthly": res.Monthly} {
		if v.Label != models.LabelBull {
			t.Fatalf("%s horizon not BULL: %s (score %v)", horizon, v.Label, v.TotalScore)
		}
	}
	if !strings.Contains(res.MacroThesis, "FULL BULLISH CONFLUENCE") {
		t.Fatalf("unexpected thesis: %s", res.MacroThesis)
	}
	if res.ConfluenceScore != 100 {
		t.Fatalf("expected confluence 100, got %d", res.ConfluenceScore)
	}
}

func TestReliefRallyThesis(t *testing.T) {
	labels := []string{models.LabelBull, models.LabelBear, models.LabelSideways}
	if got := macroThesis(labels); !strings.Contains(got, "RELIEF RALLY") {
		t.Fatalf("unexpected thesis: %s", got)
	}
}

func TestMacroCorrectionThesis(t *testing.T) {
	labels := []string{models.LabelBear, models.LabelSideways, models.LabelBull}
	if got := macroThesis(labels); !strings.Contains(got, "MACRO CORRECTION") {
		t.Fatalf("unexpected thesis: %s", got)
	}
}

func TestMixedSignalsThesis(t *testing.T) {
	labels := []string{models.LabelSideways, models.LabelBull, models.LabelBear}
	if got := macroThesis(labels); !strings.Contains(got, "MIXED SIGNALS") {
		t.Fatalf("unexpected thesis: %s", got)
	}
}

func TestConfluenceScoreTiers(t *testing.T) {
	if got := confluenceScore([]string{"BULL", "BULL", "BULL"}); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := confluenceScore([]string{"BULL", "BULL", "BEAR"}); got != 66 {
		t.Fatalf("expected 66, got %d", got)
	}
	if got := confluenceScore([]string{"BULL", "BEAR", "SIDEWAYS/TRANSITIONAL"}); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
}

func TestWindowExcludesOldPoints(t *testing.T) {
	now := time.Now()
	a := NewAnalyzer(map[string]ThresholdConfig{
		"fear_greed_index": {"bull": 70, "bear": 30, "weight": 4.0},
	})

	// Bearish readings in the last day, bullish before that.
	series := []models.MetricData{
		{MetricName: "fear_greed_index", Value: 10, Timestamp: now.Add(-2 * time.Hour), Source: models.TierPrimary},
		{MetricName: "fear_greed_index", Value: 90, Timestamp: now.AddDate(0, 0, -5), Source: models.TierPrimary},
		{MetricName: "fear_greed_index", Value: 90, Timestamp: now.AddDate(0, 0, -6), Source: models.TierPrimary},
	}
	res := AnalyzeMTFAt(map[string][]models.MetricData{"fear_greed_index": series}, a, now)

	if res.Daily.Label != models.LabelBear {
		t.Fatalf("daily window should only see the fresh bearish point, got %s", res.Daily.Label)
	}
	// Weekly average (10+90+90)/3 = 63.3 is neutral territory.
	if res.Weekly.Label != models.LabelSideways {
		t.Fatalf("weekly window should average to sideways, got %s", res.Weekly.Label)
	}
}

func TestEmptyWindowIsUnavailable(t *testing.T) {
	a := NewAnalyzer(testThresholds())
	res := AnalyzeMTFAt(map[string][]models.MetricData{}, a, time.Now())
	if res.Daily.Label != models.LabelUnavailable {
		t.Fatalf("empty input should be DATA UNAVAILABLE, got %s", res.Daily.Label)
	}
}
