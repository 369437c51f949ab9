package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"RegimePulse/internal/domain/models"
)

// maxRecentAttempts bounds the in-memory attempt log served on the
// health endpoint.
const maxRecentAttempts = 500

// Recorder implements repository.HealthSink on Prometheus, with an
// in-memory tail of recent attempts for the health endpoint.
type Recorder struct {
	attemptsTotal *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	lastValue     *prometheus.GaugeVec
	regimeScore   prometheus.Gauge

	mu     sync.RWMutex
	recent []models.HealthEntry
	status map[string]models.SourceStatus
}

// New creates a Prometheus-backed health recorder.
func New() *Recorder {
	return &Recorder{
		attemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regimepulse_fetch_attempts_total",
				Help: "Fetch attempts by metric, source tier and outcome",
			},
			[]string{"metric", "tier", "outcome"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regimepulse_fetch_duration_seconds",
				Help:    "Fetch attempt duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric", "tier"},
		),
		lastValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "regimepulse_metric_value",
				Help: "Last observed raw value per indicator",
			},
			[]string{"metric"},
		),
		regimeScore: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "regimepulse_regime_score",
				Help: "Last computed aggregate regime score",
			},
		),
		status: make(map[string]models.SourceStatus),
	}
}

// LogAttempt records the outcome of one fetch attempt.
func (r *Recorder) LogAttempt(metric string, tier models.SourceTier, success bool, latencyMs float64, errMsg string) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.attemptsTotal.WithLabelValues(metric, string(tier), outcome).Inc()
	r.fetchLatency.WithLabelValues(metric, string(tier)).Observe(latencyMs / 1000.0)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = append(r.recent, models.HealthEntry{
		MetricName: metric,
		Source:     tier,
		Success:    success,
		LatencyMs:  latencyMs,
		Timestamp:  time.Now().UTC(),
		Error:      errMsg,
	})
	if len(r.recent) > maxRecentAttempts {
		r.recent = r.recent[len(r.recent)-maxRecentAttempts:]
	}
	r.status[metric] = models.SourceStatus{
		LastSource:  tier,
		LastSuccess: success,
		LastLatency: latencyMs,
		LastError:   errMsg,
	}
}

// RecordMetricValue exposes the latest raw indicator value.
func (r *Recorder) RecordMetricValue(metric string, value float64) {
	r.lastValue.WithLabelValues(metric).Set(value)
}

// RecordRegimeScore exposes the latest aggregate score.
func (r *Recorder) RecordRegimeScore(score float64) {
	r.regimeScore.Set(score)
}

// LatestStatus returns the last observed state per metric.
func (r *Recorder) LatestStatus() map[string]models.SourceStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.SourceStatus, len(r.status))
	for k, v := range r.status {
		out[k] = v
	}
	return out
}

// RecentAttempts returns a copy of the recent attempt tail, newest last.
func (r *Recorder) RecentAttempts() []models.HealthEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.HealthEntry, len(r.recent))
	copy(out, r.recent)
	return out
}
