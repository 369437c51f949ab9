package regime

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"RegimePulse/internal/domain/models"
)

// CalculateRegime aggregates scored metrics into a regime verdict. An empty
// input yields the DATA UNAVAILABLE sentinel rather than an error. The
// optional anomaly signal, computed elsewhere, is attached verbatim.
func CalculateRegime(scored []models.ScoredMetric, anomaly *models.AnomalyAlert) models.Verdict {
	if len(scored) == 0 {
		return models.Verdict{
			EngineVersion: models.EngineVersion,
			Timestamp:     time.Now().Format(time.RFC3339),
			TotalScore:    0.0,
			Label:         models.LabelUnavailable,
			Confidence:    models.ConfidenceLow,
			Breakdown:     []models.MetricSummary{},
			Reasoning:     []string{"No data available to form a market thesis."},
		}
	}

	var totalScore float64
	lowCount := 0
	breakdown := make([]models.MetricSummary, 0, len(scored))
	for _, m := range scored {
		totalScore += m.Score
		if m.Confidence == models.ConfidenceLow {
			lowCount++
		}
		breakdown = append(breakdown, models.MetricSummary{
			Metric:     m.MetricName,
			Score:      round2(m.Score),
			RawValue:   round4(m.RawValue),
			Confidence: m.Confidence,
			IsFallback: m.IsFallback,
		})
	}

	lowPct := float64(lowCount) / float64(len(scored))
	confidence := models.ConfidenceHigh
	if lowPct >= 0.3 {
		confidence = models.ConfidenceMedium
	}
	if lowPct > 0.6 {
		confidence = models.ConfidenceLow
	}

	label := models.LabelSideways
	switch {
	case totalScore > 3:
		label = models.LabelBull
	case totalScore < -3:
		label = models.LabelBear
	}

	return models.Verdict{
		EngineVersion: models.EngineVersion,
		Timestamp:     time.Now().Format(time.RFC3339),
		TotalScore:    round2(totalScore),
		Label:         label,
		Confidence:    confidence,
		Breakdown:     breakdown,
		Reasoning:     buildReasoning(scored),
		AnomalyAlert:  anomaly,
	}
}

// buildReasoning narrates the three strongest drivers of the verdict.
func buildReasoning(scored []models.ScoredMetric) []string {
	ranked := make([]models.ScoredMetric, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Score) > math.Abs(ranked[j].Score)
	})

	n := 3
	if len(ranked) < n {
		n = len(ranked)
	}

	reasons := make([]string, 0, n)
	for _, m := range ranked[:n] {
		reasons = append(reasons, narrate(m))
	}
	return reasons
}

func narrate(m models.ScoredMetric) string {
	display := displayName(m.MetricName)
	if m.Score == 0 {
		return fmt.Sprintf("%s is neutral at %.4g, not tipping the balance either way.", display, m.RawValue)
	}

	adjective := "Moderate"
	switch abs := math.Abs(m.Score); {
	case abs >= 1.5:
		adjective = "Extreme"
	case abs >= 1.0:
		adjective = "Strong"
	}

	bullish := m.Score > 0

	switch m.MetricName {
	case "fear_greed_index":
		if bullish {
			return fmt.Sprintf("%s bullish sentiment: Fear & Greed at %.0f sits in the Greed zone.", adjective, m.RawValue)
		}
		return fmt.Sprintf("%s bearish sentiment: Fear & Greed at %.0f sits in the Fear zone.", adjective, m.RawValue)
	case "rsi", "price_data":
		if bullish {
			return fmt.Sprintf("%s bullish setup: RSI at %.1f is in the Oversold zone, favoring mean reversion upward.", adjective, m.RawValue)
		}
		return fmt.Sprintf("%s bearish setup: RSI at %.1f is in the Overbought zone, price running hot.", adjective, m.RawValue)
	}

	direction := "Bearish"
	if bullish {
		direction = "Bullish"
	}
	return fmt.Sprintf("%s %s pressure from %s (score %+.2f at %.4g).", adjective, direction, display, m.Score, m.RawValue)
}

func displayName(metric string) string {
	parts := strings.Split(metric, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if p == "rsi" || p == "mvrv" {
			parts[i] = strings.ToUpper(p)
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
