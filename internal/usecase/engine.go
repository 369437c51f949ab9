package usecase

import (
	"context"
	"sort"
	"sync"

	"RegimePulse/internal/domain/models"
	drepo "RegimePulse/internal/domain/repository"
	"RegimePulse/internal/fetch"
	"RegimePulse/internal/regime"
	applogger "RegimePulse/pkg/logger"
	"RegimePulse/pkg/metrics"
)

// Engine orchestrates acquisition and analysis: it fans fetches out across
// all indicators, scores the readings, and aggregates them into a verdict.
type Engine struct {
	fetchers []*fetch.Fetcher
	analyzer *regime.Analyzer
	detector *regime.AnomalyDetector

	history  drepo.HistoryStore
	stream   drepo.PriceStream
	recorder *metrics.Recorder
	log      *applogger.Logger

	mu           sync.Mutex
	scoreHistory [][]float64
}

// NewEngine creates the analysis engine. history, stream and recorder may
// be nil when the corresponding backends are disabled.
func NewEngine(
	fetchers []*fetch.Fetcher,
	analyzer *regime.Analyzer,
	history drepo.HistoryStore,
	stream drepo.PriceStream,
	recorder *metrics.Recorder,
	log *applogger.Logger,
) *Engine {
	sorted := make([]*fetch.Fetcher, len(fetchers))
	copy(sorted, fetchers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MetricName() < sorted[j].MetricName()
	})
	return &Engine{
		fetchers: sorted,
		analyzer: analyzer,
		detector: regime.NewAnomalyDetector(),
		history:  history,
		stream:   stream,
		recorder: recorder,
		log:      log,
	}
}

// Snapshot fetches every indicator concurrently and aggregates the scored
// readings into a verdict.
func (e *Engine) Snapshot(ctx context.Context) models.Verdict {
	readings := e.fetchAll(ctx)

	scored := make([]models.ScoredMetric, 0, len(readings))
	for _, data := range readings {
		s := e.analyzer.ScoreMetric(data)
		scored = append(scored, s)
		if e.recorder != nil {
			e.recorder.RecordMetricValue(data.MetricName, data.Value)
		}
	}

	alert := e.trackAnomalies(scored)
	verdict := regime.CalculateRegime(scored, alert)
	if e.recorder != nil {
		e.recorder.RecordRegimeScore(verdict.TotalScore)
	}

	if e.history != nil {
		if err := e.history.StoreMetrics(ctx, readings); err != nil {
			e.log.Warn("history store write failed", applogger.Error(err))
		}
		if err := e.history.StoreVerdict(ctx, &verdict); err != nil {
			e.log.Warn("verdict store write failed", applogger.Error(err))
		}
	}
	return verdict
}

// History fetches a day-binned historical series per indicator and computes
// one verdict per calendar day, oldest first.
func (e *Engine) History(ctx context.Context, days int) []models.Verdict {
	metricsMap := e.fetchAllHistory(ctx, days)
	verdicts := regime.AnalyzeHistory(metricsMap, e.analyzer)

	if e.history != nil {
		for _, points := range metricsMap {
			if err := e.history.StoreMetrics(ctx, points); err != nil {
				e.log.Warn("history store write failed", applogger.Error(err))
				break
			}
		}
	}
	return verdicts
}

// MTF computes the daily, weekly and monthly confluence view. The window
// never shrinks below the monthly horizon.
func (e *Engine) MTF(ctx context.Context, days int) models.MTFResult {
	if days < 30 {
		days = 30
	}
	metricsMap := e.fetchAllHistory(ctx, days)
	return regime.AnalyzeMTF(metricsMap, e.analyzer)
}

// Invalidate drops every cached latest reading, forcing the next snapshot
// to hit the sources again.
func (e *Engine) Invalidate(ctx context.Context) {
	for _, f := range e.fetchers {
		if err := f.Invalidate(ctx); err != nil {
			e.log.Warn("cache invalidation failed",
				applogger.String("metric", f.MetricName()), applogger.Error(err))
		}
	}
}

// LastPrice exposes the most recent streamed trade, if the stream is up.
func (e *Engine) LastPrice() (float64, bool) {
	if e.stream == nil {
		return 0, false
	}
	price, _, ok := e.stream.LastPrice()
	return price, ok
}

// StreamConnected reports whether the live price feed is attached.
func (e *Engine) StreamConnected() bool {
	return e.stream != nil && e.stream.IsConnected()
}

func (e *Engine) fetchAll(ctx context.Context) []models.MetricData {
	readings := make([]models.MetricData, len(e.fetchers))
	var wg sync.WaitGroup
	for i, f := range e.fetchers {
		wg.Add(1)
		go func(i int, f *fetch.Fetcher) {
			defer wg.Done()
			readings[i] = f.Fetch(ctx)
		}(i, f)
	}
	wg.Wait()
	return readings
}

func (e *Engine) fetchAllHistory(ctx context.Context, days int) map[string][]models.MetricData {
	metricsMap := make(map[string][]models.MetricData, len(e.fetchers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, f := range e.fetchers {
		wg.Add(1)
		go func(f *fetch.Fetcher) {
			defer wg.Done()
			series := f.FetchHistory(ctx, days)
			mu.Lock()
			metricsMap[f.MetricName()] = series
			mu.Unlock()
		}(f)
	}
	wg.Wait()
	return metricsMap
}

// trackAnomalies folds the current score vector into the baseline and, once
// the detector has enough history, checks the vector against it.
func (e *Engine) trackAnomalies(scored []models.ScoredMetric) *models.AnomalyAlert {
	vector := make([]float64, len(scored))
	for i, s := range scored {
		vector[i] = s.Score
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var alert *models.AnomalyAlert
	if e.detector.IsFitted() {
		a, err := e.detector.Detect(vector)
		if err != nil {
			e.log.Warn("anomaly detection failed", applogger.Error(err))
		} else {
			alert = a
		}
	}

	e.scoreHistory = append(e.scoreHistory, vector)
	if len(e.scoreHistory) > 500 {
		e.scoreHistory = e.scoreHistory[len(e.scoreHistory)-500:]
	}
	e.detector.Fit(e.scoreHistory)
	return alert
}
