package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"RegimePulse/internal/breaker"
	"RegimePulse/internal/domain/models"
	"RegimePulse/pkg/cache"
	applogger "RegimePulse/pkg/logger"
)

type recordedAttempt struct {
	metric  string
	tier    models.SourceTier
	success bool
}

type fakeHealthSink struct {
	attempts []recordedAttempt
}

func (s *fakeHealthSink) LogAttempt(metric string, tier models.SourceTier, success bool, latencyMs float64, errMsg string) {
	s.attempts = append(s.attempts, recordedAttempt{metric: metric, tier: tier, success: success})
}

func newTestFetcher(t *testing.T, source Source) (*Fetcher, *fakeHealthSink) {
	t.Helper()
	sink := &fakeHealthSink{}
	res := Resilience{
		Breaker: breaker.New(),
		Cache:   cache.New(cache.NewMemoryStore(), cache.WithDefaultTTL(time.Minute)),
	}
	return NewFetcher(source, NewClient(), res, sink, time.Minute, applogger.Nop()), sink
}

func TestFetchBackupAfterPrimaryFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"values":[{"x":1700000000,"y":42.0}]}`))
	}))
	defer backend.Close()

	source := &MVRVSource{baseSource: baseSource{
		name:    "mvrv_ratio",
		primary: "http://127.0.0.1:1/unreachable",
		backup:  backend.URL,
	}}
	fetcher, sink := newTestFetcher(t, source)

	got := fetcher.Fetch(context.Background())
	if got.Value != 42.0 {
		t.Fatalf("value = %v, want 42.0", got.Value)
	}
	if got.Source != models.TierBackup {
		t.Fatalf("source = %q, want %q", got.Source, models.TierBackup)
	}
	if len(sink.attempts) != 2 {
		t.Fatalf("logged %d attempts, want 2", len(sink.attempts))
	}
	if sink.attempts[0].success || sink.attempts[0].tier != models.TierPrimary {
		t.Fatalf("first attempt = %+v, want failed primary", sink.attempts[0])
	}
	if !sink.attempts[1].success || sink.attempts[1].tier != models.TierBackup {
		t.Fatalf("second attempt = %+v, want successful backup", sink.attempts[1])
	}
}

func TestFetchSecondCallServedFromCache(t *testing.T) {
	var calls int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"data":[{"value":"61","timestamp":"1700000000"}]}`))
	}))
	defer backend.Close()

	source := &FearGreedSource{baseSource: baseSource{
		name:    "fear_greed_index",
		primary: backend.URL,
	}}
	fetcher, _ := newTestFetcher(t, source)

	ctx := context.Background()
	first := fetcher.Fetch(ctx)
	second := fetcher.Fetch(ctx)

	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("backend saw %d calls, want 1", n)
	}
	if first.Value != 61 || second.Value != 61 {
		t.Fatalf("values = %v, %v, want 61 both times", first.Value, second.Value)
	}
	if second.Source != models.TierPrimary {
		t.Fatalf("cached source = %q, want %q", second.Source, models.TierPrimary)
	}
}

func TestFetchTotalFailureNotCached(t *testing.T) {
	source := &MVRVSource{baseSource: baseSource{
		name:    "mvrv_ratio",
		primary: "http://127.0.0.1:1/unreachable",
		backup:  "http://127.0.0.1:1/also-unreachable",
	}}
	fetcher, _ := newTestFetcher(t, source)

	ctx := context.Background()
	got := fetcher.Fetch(ctx)
	if got.Source != models.TierFailed {
		t.Fatalf("source = %q, want %q", got.Source, models.TierFailed)
	}
	if got.Value != 0 {
		t.Fatalf("value = %v, want 0", got.Value)
	}

	var cached models.MetricData
	found, err := fetcher.res.Cache.Get(ctx, cache.LatestKey("mvrv_ratio"), &cached, time.Minute)
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if found {
		t.Fatal("failed reading was cached")
	}
}

func TestFetchStaticBackupNeverFails(t *testing.T) {
	source := &FearGreedSource{baseSource: baseSource{
		name:    "fear_greed_index",
		primary: "http://127.0.0.1:1/unreachable",
	}}
	fetcher, _ := newTestFetcher(t, source)

	got := fetcher.Fetch(context.Background())
	if got.Source != models.TierBackup || got.Value != 50.0 {
		t.Fatalf("got %+v, want neutral 50 from backup", got)
	}
}

func TestFetchHistoryProxyFallback(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The latest-value endpoint works, history query does not exist.
		w.Write([]byte(`{"netflow":-120.5}`))
	}))
	defer backend.Close()

	source := &NetFlowsSource{baseSource: baseSource{
		name:    "exchange_net_flows",
		primary: backend.URL,
	}}
	fetcher, _ := newTestFetcher(t, source)

	series := fetcher.FetchHistory(context.Background(), 30)
	if len(series) != 1 {
		t.Fatalf("series length = %d, want 1 proxy point", len(series))
	}
	if series[0].Value != -120.5 || series[0].Source != models.TierPrimary {
		t.Fatalf("proxy point = %+v", series[0])
	}
}

func TestFetchHistoryBulkSeries(t *testing.T) {
	var calls int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		if r.URL.Query().Get("timespan") != "7days" {
			t.Errorf("timespan = %q, want 7days", r.URL.Query().Get("timespan"))
		}
		w.Write([]byte(`{"values":[{"x":1700000000,"y":1.0},{"x":1700086400,"y":2.0}]}`))
	}))
	defer backend.Close()

	source := &HashRateSource{baseSource: baseSource{
		name:    "hash_rate",
		primary: backend.URL,
	}}
	fetcher, _ := newTestFetcher(t, source)

	ctx := context.Background()
	series := fetcher.FetchHistory(ctx, 7)
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}

	// Second call inside the TTL window hits the cache.
	again := fetcher.FetchHistory(ctx, 7)
	if len(again) != 2 {
		t.Fatalf("cached series length = %d, want 2", len(again))
	}
	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("backend saw %d calls, want 1", n)
	}
}

func TestBreakerSkipsPrimaryWhenOpen(t *testing.T) {
	var primaryCalls int64
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&primaryCalls, 1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer primary.Close()

	source := &FearGreedSource{baseSource: baseSource{
		name:    "fear_greed_index",
		primary: primary.URL,
	}}
	fetcher, _ := newTestFetcher(t, source)

	ctx := context.Background()
	for i := 0; i < breaker.DefaultFailureThreshold; i++ {
		got := fetcher.Fetch(ctx)
		if got.Source != models.TierBackup {
			t.Fatalf("fetch %d source = %q, want backup", i, got.Source)
		}
		// Backup results are cached; clear so the next call re-runs tiers.
		if err := fetcher.res.Cache.Delete(ctx, cache.LatestKey("fear_greed_index")); err != nil {
			t.Fatalf("cache delete: %v", err)
		}
	}

	before := atomic.LoadInt64(&primaryCalls)
	got := fetcher.Fetch(ctx)
	if got.Source != models.TierBackup {
		t.Fatalf("source = %q, want backup while circuit is open", got.Source)
	}
	if after := atomic.LoadInt64(&primaryCalls); after != before {
		t.Fatalf("primary was called with an open circuit (%d -> %d)", before, after)
	}
}
