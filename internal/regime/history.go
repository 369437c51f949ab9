package regime

import (
	"sort"

	"RegimePulse/internal/domain/models"
)

// AnalyzeHistory aligns multi-source time series by calendar day and
// produces one verdict per distinct date observed, chronologically ordered.
// Each point is binned by its own timestamp; no timezone normalization is
// applied.
func AnalyzeHistory(metricsMap map[string][]models.MetricData, analyzer *Analyzer) []models.Verdict {
	dateBins := make(map[string][]models.MetricData)
	for _, points := range metricsMap {
		for _, p := range points {
			date := p.Timestamp.Format("2006-01-02")
			dateBins[date] = append(dateBins[date], p)
		}
	}

	dates := make([]string, 0, len(dateBins))
	for d := range dateBins {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	results := make([]models.Verdict, 0, len(dates))
	for _, date := range dates {
		daily := dateBins[date]
		scored := make([]models.ScoredMetric, 0, len(daily))
		for _, m := range daily {
			scored = append(scored, analyzer.ScoreMetric(m))
		}

		verdict := CalculateRegime(scored, nil)
		verdict.Timestamp = date
		results = append(results, verdict)
	}
	return results
}
