package regime

import (
	"fmt"
	"math"
	"sort"

	"RegimePulse/internal/domain/models"
)

// minFitSamples is the smallest history that gives a usable baseline.
const minFitSamples = 10

// AnomalyDetector flags indicator score vectors that sit far outside the
// historical distribution. It uses per-feature robust z-scores (median and
// MAD) so a single wild day in the training window cannot shift the
// baseline.
type AnomalyDetector struct {
	medians []float64
	scales  []float64
	fitted  bool
}

// NewAnomalyDetector creates an unfitted detector.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{}
}

// Fit learns the baseline from historical score vectors. Rows shorter than
// the first row are ignored. Fewer than minFitSamples rows leaves the
// detector unfitted.
func (d *AnomalyDetector) Fit(history [][]float64) {
	if len(history) < minFitSamples {
		return
	}
	width := len(history[0])
	if width == 0 {
		return
	}

	d.medians = make([]float64, width)
	d.scales = make([]float64, width)
	column := make([]float64, 0, len(history))

	for j := 0; j < width; j++ {
		column = column[:0]
		for _, row := range history {
			if len(row) < width {
				continue
			}
			column = append(column, row[j])
		}
		d.medians[j] = median(column)

		deviations := make([]float64, len(column))
		for i, v := range column {
			deviations[i] = math.Abs(v - d.medians[j])
		}
		// 1.4826 rescales MAD to the standard deviation of a normal
		// distribution.
		scale := 1.4826 * median(deviations)
		if scale < 1e-9 {
			scale = 1e-9
		}
		d.scales[j] = scale
	}
	d.fitted = true
}

// IsFitted reports whether Fit has seen enough history.
func (d *AnomalyDetector) IsFitted() bool { return d.fitted }

// Detect scores the current vector against the baseline. The decision
// score mirrors isolation-style detectors: lower is more anomalous, with
// zero as the boundary.
func (d *AnomalyDetector) Detect(current []float64) (*models.AnomalyAlert, error) {
	if !d.fitted {
		return nil, fmt.Errorf("anomaly detector not fitted")
	}
	if len(current) < len(d.medians) {
		return nil, fmt.Errorf("score vector has %d features, baseline has %d", len(current), len(d.medians))
	}

	var sum float64
	for j := range d.medians {
		sum += math.Abs(current[j]-d.medians[j]) / d.scales[j]
	}
	avgZ := sum / float64(len(d.medians))

	// Vectors within 2.5 robust standard deviations are normal.
	decision := (2.5 - avgZ) / 10.0
	isAnomaly := decision < 0

	severity := "LOW"
	if isAnomaly {
		if decision < -0.2 {
			severity = "HIGH"
		} else {
			severity = "MEDIUM"
		}
	}

	return &models.AnomalyAlert{
		IsAnomaly:    isAnomaly,
		AnomalyScore: round4(decision),
		Severity:     severity,
	}, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
