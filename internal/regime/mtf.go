package regime

import (
	"time"

	"RegimePulse/internal/domain/models"
)

// Macro theses, evaluated in priority order.
const (
	ThesisFullBull   = "FULL BULLISH CONFLUENCE: High-conviction uptrend across all horizons."
	ThesisFullBear   = "FULL BEARISH CONFLUENCE: Systemic downtrend. Extreme caution advised."
	ThesisRelief     = "RELIEF RALLY: Daily bullishness fighting against macro bearish pressure."
	ThesisCorrection = "MACRO CORRECTION: Near-term pull-back in a larger bullish trend."
	ThesisMixed      = "MIXED SIGNALS: Market is in a transitional state without clear timeframe alignment."
)

// AnalyzeMTF produces daily/weekly/monthly verdicts by averaging each metric
// over 1/7/30 day windows, plus a macro thesis and confluence score.
func AnalyzeMTF(metricsMap map[string][]models.MetricData, analyzer *Analyzer) models.MTFResult {
	return AnalyzeMTFAt(metricsMap, analyzer, time.Now())
}

// AnalyzeMTFAt is AnalyzeMTF with an explicit reference time.
func AnalyzeMTFAt(metricsMap map[string][]models.MetricData, analyzer *Analyzer, now time.Time) models.MTFResult {
	daily := regimeForWindow(metricsMap, analyzer, now, 1)
	weekly := regimeForWindow(metricsMap, analyzer, now, 7)
	monthly := regimeForWindow(metricsMap, analyzer, now, 30)

	labels := []string{daily.Label, weekly.Label, monthly.Label}

	return models.MTFResult{
		Daily:           daily,
		Weekly:          weekly,
		Monthly:         monthly,
		MacroThesis:     macroThesis(labels),
		ConfluenceScore: confluenceScore(labels),
	}
}

func regimeForWindow(metricsMap map[string][]models.MetricData, analyzer *Analyzer, now time.Time, days int) models.Verdict {
	cutoff := now.UTC().AddDate(0, 0, -days)

	scored := make([]models.ScoredMetric, 0, len(metricsMap))
	for name, points := range metricsMap {
		var sum float64
		var count int
		for _, p := range points {
			// Compare in UTC so mixed-zone sources line up.
			if !p.Timestamp.UTC().Before(cutoff) {
				sum += p.Value
				count++
			}
		}
		if count == 0 {
			continue
		}

		proxy := models.MetricData{
			MetricName: name,
			Value:      sum / float64(count),
			Timestamp:  now,
			Source:     models.TierPrimary,
		}
		scored = append(scored, analyzer.ScoreMetric(proxy))
	}
	return CalculateRegime(scored, nil)
}

func macroThesis(labels []string) string {
	allBull, allBear := true, true
	anyBull, anyBear := false, false
	for _, l := range labels {
		if l != models.LabelBull {
			allBull = false
		} else {
			anyBull = true
		}
		if l != models.LabelBear {
			allBear = false
		} else {
			anyBear = true
		}
	}

	switch {
	case allBull:
		return ThesisFullBull
	case allBear:
		return ThesisFullBear
	case labels[0] == models.LabelBull && anyBear:
		return ThesisRelief
	case labels[0] == models.LabelBear && anyBull:
		return ThesisCorrection
	default:
		return ThesisMixed
	}
}

// confluenceScore is the share of horizons agreeing with the most frequent
// label: 100 when all three agree, 66 when two do, 33 otherwise. Ties break
// toward the first-seen label in daily/weekly/monthly order.
func confluenceScore(labels []string) int {
	counts := make(map[string]int, 3)
	best := 0
	for _, l := range labels {
		counts[l]++
		if counts[l] > best {
			best = counts[l]
		}
	}
	return 100 * best / 3
}
