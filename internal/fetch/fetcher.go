package fetch

import (
	"context"
	"time"

	"RegimePulse/internal/breaker"
	"RegimePulse/internal/domain/models"
	"RegimePulse/internal/domain/repository"
	"RegimePulse/pkg/cache"
	applogger "RegimePulse/pkg/logger"
)

// Source is the indicator-specific part of a fetcher: parsing for the
// primary endpoint and the tier-2 fallback.
type Source interface {
	Name() string
	PrimaryURL() string
	// HistoryURL builds the bulk historical query for the primary endpoint.
	HistoryURL(days int) string
	ParsePrimary(raw []byte) (float64, error)
	ParseHistory(raw []byte) ([]models.MetricData, error)
	Backup(ctx context.Context, c *Client) (float64, error)
}

// Resilience bundles the shared acquisition state every fetcher borrows.
// Fetchers never own or copy breaker/cache state.
type Resilience struct {
	Breaker *breaker.Breaker
	Cache   *cache.Cache
}

// Fetcher runs the graduated fallback protocol (primary -> backup ->
// neutral) for one indicator. Its public methods never return an error:
// total failure degrades to a zero-value reading tagged "failed".
type Fetcher struct {
	source Source
	client *Client
	res    Resilience
	health repository.HealthSink
	ttl    time.Duration
	log    *applogger.Logger
	now    func() time.Time
}

// NewFetcher creates a fetcher for one indicator.
func NewFetcher(source Source, client *Client, res Resilience, health repository.HealthSink, ttl time.Duration, log *applogger.Logger) *Fetcher {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Fetcher{
		source: source,
		client: client,
		res:    res,
		health: health,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// MetricName returns the indicator this fetcher serves.
func (f *Fetcher) MetricName() string { return f.source.Name() }

// Invalidate drops the cached latest reading so the next Fetch re-runs the
// tier protocol.
func (f *Fetcher) Invalidate(ctx context.Context) error {
	return f.res.Cache.Delete(ctx, cache.LatestKey(f.source.Name()))
}

// Fetch returns the latest reading for the indicator. It consults the cache,
// then the primary tier (gated by the circuit breaker), then the backup
// tier; both tiers failing yields a zero-value reading tagged failed, which
// is returned but never cached.
func (f *Fetcher) Fetch(ctx context.Context) models.MetricData {
	name := f.source.Name()
	cacheKey := cache.LatestKey(name)

	var cached models.MetricData
	if found, err := f.res.Cache.Get(ctx, cacheKey, &cached, f.ttl); err == nil && found {
		return cached
	}

	breakerKey := "primary_" + name
	if f.res.Breaker.IsAvailable(breakerKey) {
		start := f.now()
		f.log.Debug("tier 1: attempting primary", applogger.String("metric", name))

		value, err := f.fetchPrimary(ctx)
		latency := f.latencyMs(start)
		if err == nil {
			f.res.Breaker.ReportSuccess(breakerKey)
			f.health.LogAttempt(name, models.TierPrimary, true, latency, "")

			result := models.MetricData{
				MetricName: name,
				Value:      value,
				Timestamp:  f.now(),
				Source:     models.TierPrimary,
			}
			f.cacheResult(ctx, cacheKey, result)
			return result
		}

		f.health.LogAttempt(name, models.TierPrimary, false, latency, err.Error())
		f.log.Warn("primary failed", applogger.String("metric", name), applogger.Error(err))
		f.res.Breaker.ReportFailure(breakerKey)
	}

	start := f.now()
	f.log.Debug("tier 2: attempting backup", applogger.String("metric", name))

	value, err := f.source.Backup(ctx, f.client)
	latency := f.latencyMs(start)
	if err == nil {
		f.health.LogAttempt(name, models.TierBackup, true, latency, "")

		result := models.MetricData{
			MetricName: name,
			Value:      value,
			Timestamp:  f.now(),
			Source:     models.TierBackup,
		}
		f.cacheResult(ctx, cacheKey, result)
		return result
	}

	f.health.LogAttempt(name, models.TierBackup, false, latency, err.Error())
	f.log.Error("all sources failed", applogger.String("metric", name), applogger.Error(err))

	// A failed reading is returned but never cached, so the cache cannot
	// start serving zeros.
	return models.MetricData{
		MetricName: name,
		Value:      0.0,
		Timestamp:  f.now(),
		Source:     models.TierFailed,
	}
}

// FetchHistory returns a historical series for the indicator. If the bulk
// query fails, the latest reading is wrapped into a one-element series so
// history is never silently empty unless even the latest fetch failed.
func (f *Fetcher) FetchHistory(ctx context.Context, days int) []models.MetricData {
	name := f.source.Name()
	cacheKey := cache.HistoryKey(name, days)

	var cached []models.MetricData
	if found, err := f.res.Cache.Get(ctx, cacheKey, &cached, f.ttl); err == nil && found {
		return cached
	}

	start := f.now()
	f.log.Debug("tier 1: fetching history", applogger.String("metric", name), applogger.Int("days", days))

	series, err := f.fetchHistoryPrimary(ctx, days)
	latency := f.latencyMs(start)
	if err == nil {
		if len(series) > 0 {
			f.health.LogAttempt(name, models.TierPrimary, true, latency, "")
			f.cacheResult(ctx, cacheKey, series)
		}
		return series
	}

	f.health.LogAttempt(name, models.TierPrimary, false, latency, err.Error())
	f.log.Warn("historical fetch failed, providing latest as proxy",
		applogger.String("metric", name), applogger.Error(err))

	latest := f.Fetch(ctx)
	return []models.MetricData{latest}
}

func (f *Fetcher) fetchPrimary(ctx context.Context) (float64, error) {
	raw, err := f.client.Get(ctx, f.source.PrimaryURL(), nil)
	if err != nil {
		return 0, err
	}
	value, err := f.source.ParsePrimary(raw)
	if err != nil {
		return 0, &ParseError{Metric: f.source.Name(), Err: err}
	}
	return value, nil
}

func (f *Fetcher) fetchHistoryPrimary(ctx context.Context, days int) ([]models.MetricData, error) {
	raw, err := f.client.Get(ctx, f.source.HistoryURL(days), nil)
	if err != nil {
		return nil, err
	}
	series, err := f.source.ParseHistory(raw)
	if err != nil {
		return nil, &ParseError{Metric: f.source.Name(), Err: err}
	}
	return series, nil
}

func (f *Fetcher) cacheResult(ctx context.Context, key string, value interface{}) {
	if err := f.res.Cache.Set(ctx, key, value); err != nil {
		f.log.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (f *Fetcher) latencyMs(start time.Time) float64 {
	return float64(f.now().Sub(start)) / float64(time.Millisecond)
}
