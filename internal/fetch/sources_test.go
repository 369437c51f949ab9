package fetch

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestFearGreedParsePrimary(t *testing.T) {
	s := &FearGreedSource{baseSource: baseSource{name: "fear_greed_index"}}
	value, err := s.ParsePrimary([]byte(`{"data":[{"value":"74","timestamp":"1700000000"},{"value":"70","timestamp":"1699913600"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != 74 {
		t.Fatalf("value = %v, want 74 (most recent entry)", value)
	}

	if _, err := s.ParsePrimary([]byte(`{"data":[]}`)); err == nil {
		t.Fatal("empty data array should not parse")
	}
}

func TestFearGreedHistoryURL(t *testing.T) {
	s := &FearGreedSource{baseSource: baseSource{name: "fear_greed_index", primary: "https://example.test/fng/"}}
	if got := s.HistoryURL(30); !strings.HasSuffix(got, "?limit=30") {
		t.Fatalf("history url = %q", got)
	}
}

func TestChartSourcesUseLastPoint(t *testing.T) {
	body := []byte(`{"values":[{"x":1699900000,"y":100.0},{"x":1700000000,"y":725.3}]}`)

	hash := &HashRateSource{baseSource: baseSource{name: "hash_rate"}}
	value, err := hash.ParsePrimary(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != 725.3 {
		t.Fatalf("value = %v, want last point 725.3", value)
	}

	addr := &ActiveAddressSource{baseSource: baseSource{name: "active_addresses"}}
	series, err := addr.ParseHistory(body)
	if err != nil {
		t.Fatalf("parse history: %v", err)
	}
	if len(series) != 2 || series[0].Value != 100.0 {
		t.Fatalf("series = %+v", series)
	}
}

func TestFundingRateParsesStringRates(t *testing.T) {
	s := &FundingRateSource{baseSource: baseSource{name: "perpetual_funding_rates"}}
	body := []byte(`[{"lastFundingRate":"0.00010000","time":1699900000000},{"lastFundingRate":"-0.00025000","time":1700000000000}]`)
	value, err := s.ParsePrimary(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != -0.00025 {
		t.Fatalf("value = %v, want latest -0.00025", value)
	}
}

func TestOpenInterestAggregatesBTCOnly(t *testing.T) {
	s := &OpenInterestSource{baseSource: baseSource{name: "open_interest"}}
	body := []byte(`[
		{"index_id":"BTC","open_interest":50000.0,"price":"50000"},
		{"index_id":"ETH","open_interest":99999.0,"price":"3000"},
		{"index_id":"BTC","open_interest":25000.0,"price":"50000"},
		{"index_id":"BTC","open_interest":1000.0,"price":"0"}
	]`)
	value, err := s.ParsePrimary(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// 50000/50000 + 25000/50000; the zero-price row is skipped.
	if math.Abs(value-1.5) > 1e-9 {
		t.Fatalf("value = %v, want 1.5 BTC", value)
	}

	if _, err := s.ParsePrimary([]byte(`[{"index_id":"ETH","open_interest":1,"price":"1"}]`)); err == nil {
		t.Fatal("listing without BTC rows should not parse")
	}
}

func TestMVRVParsesStringValues(t *testing.T) {
	s := &MVRVSource{baseSource: baseSource{name: "mvrv_ratio"}}
	value, err := s.ParsePrimary([]byte(`{"data":[{"time":"2026-08-30T00:00:00.000Z","CapMVRVCur":"2.31"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != 2.31 {
		t.Fatalf("value = %v, want 2.31", value)
	}
}

func TestComputeRSI(t *testing.T) {
	short := []float64{100, 101, 102}
	if got := computeRSI(short); got != 50.0 {
		t.Fatalf("short series rsi = %v, want neutral 50", got)
	}

	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	if got := computeRSI(rising); got != 100.0 {
		t.Fatalf("monotonic rise rsi = %v, want 100", got)
	}

	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = 200 - float64(i)
	}
	if got := computeRSI(falling); got != 0.0 {
		t.Fatalf("monotonic fall rsi = %v, want 0", got)
	}

	mixed := []float64{100, 102, 101, 103, 102, 104, 103, 105, 104, 106, 105, 107, 106, 108, 107, 109}
	got := computeRSI(mixed)
	if got <= 50 || got >= 100 {
		t.Fatalf("mixed up-trend rsi = %v, want between 50 and 100", got)
	}
}

func TestNewSourceFactory(t *testing.T) {
	metrics := []string{
		"fear_greed_index", "hash_rate", "exchange_net_flows", "active_addresses",
		"perpetual_funding_rates", "open_interest", "mvrv_ratio", "price_data",
	}
	for _, metric := range metrics {
		source, err := NewSource(metric, SourceConfig{Primary: "https://example.test/" + metric})
		if err != nil {
			t.Fatalf("%s: %v", metric, err)
		}
		if source.Name() != metric {
			t.Fatalf("%s: name = %q", metric, source.Name())
		}
	}

	if _, err := NewSource("social_volume", SourceConfig{}); err == nil {
		t.Fatal("unknown metric should not construct")
	}
}

func TestRSIParsePrimaryFromPriceChart(t *testing.T) {
	s := &RSISource{baseSource: baseSource{name: "price_data"}}

	var b strings.Builder
	b.WriteString(`{"prices":[`)
	for i := 0; i < 20; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "[%d,%d]", 1700000000000+int64(i)*86400000, 100+i)
	}
	b.WriteString(`]}`)

	value, err := s.ParsePrimary([]byte(b.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != 100.0 {
		t.Fatalf("rsi = %v, want 100 for monotonic rise", value)
	}
}

func TestActiveAddressParsePrimaryIsDayOverDayChange(t *testing.T) {
	s := &ActiveAddressSource{baseSource: baseSource{name: "active_addresses"}}

	body := []byte(`{"values":[{"x":1699900000,"y":900000},{"x":1700000000,"y":954000}]}`)
	value, err := s.ParsePrimary(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if math.Abs(value-0.06) > 1e-9 {
		t.Fatalf("momentum = %v, want 0.06 for a 6%% rise", value)
	}

	// A single point has no trend and must score neutral.
	value, err = s.ParsePrimary([]byte(`{"values":[{"x":1700000000,"y":954000}]}`))
	if err != nil {
		t.Fatalf("parse single point: %v", err)
	}
	if value != 0.0 {
		t.Fatalf("momentum = %v, want 0 for a single point", value)
	}

	if _, err := s.ParsePrimary([]byte(`{"values":[]}`)); err == nil {
		t.Fatal("empty values array should not parse")
	}
}

type staticFeed struct {
	price float64
	at    time.Time
	ok    bool
}

func (f staticFeed) LastPrice() (float64, time.Time, bool) { return f.price, f.at, f.ok }

func TestRSIBackupExtendsSeriesWithLiveTrade(t *testing.T) {
	s := &RSISource{baseSource: baseSource{name: "price_data"}}

	var b strings.Builder
	b.WriteString(`{"prices":[`)
	for i := 0; i < 20; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "[%d,%d]", 1700000000000+int64(i)*86400000, 100+i)
	}
	b.WriteString(`]}`)
	if _, err := s.ParsePrimary([]byte(b.String())); err != nil {
		t.Fatalf("parse: %v", err)
	}

	// No feed attached: neutral.
	value, err := s.Backup(context.Background(), nil)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if value != 50.0 {
		t.Fatalf("rsi = %v, want neutral 50 without a feed", value)
	}

	// A fresh trade continues the monotonic rise.
	s.UseLiveFeed(staticFeed{price: 125, at: time.Now(), ok: true})
	value, err = s.Backup(context.Background(), nil)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if value != 100.0 {
		t.Fatalf("rsi = %v, want 100 with a fresh rising trade", value)
	}

	// A stale trade must not be trusted.
	s.UseLiveFeed(staticFeed{price: 125, at: time.Now().Add(-10 * time.Minute), ok: true})
	value, err = s.Backup(context.Background(), nil)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if value != 50.0 {
		t.Fatalf("rsi = %v, want neutral 50 for a stale trade", value)
	}
}
