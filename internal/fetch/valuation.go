package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"RegimePulse/internal/domain/models"
)

// mvrvPayload is the CoinMetrics community API envelope. Metric values
// arrive as decimal strings.
type mvrvPayload struct {
	Data []struct {
		Time       string `json:"time"`
		CapMVRVCur string `json:"CapMVRVCur"`
	} `json:"data"`
}

// MVRVSource reads the market-to-realized value ratio, with a market
// cap chart as reachability backup.
type MVRVSource struct {
	baseSource
}

func (s *MVRVSource) ParsePrimary(body []byte) (float64, error) {
	var payload mvrvPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	if len(payload.Data) == 0 {
		return 0, &ParseError{Metric: s.name, Err: fmt.Errorf("empty data array")}
	}
	value, err := strconv.ParseFloat(payload.Data[0].CapMVRVCur, 64)
	if err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	return value, nil
}

func (s *MVRVSource) ParseHistory(body []byte) ([]models.MetricData, error) {
	var payload mvrvPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Metric: s.name, Err: err}
	}
	points := make([]models.MetricData, 0, len(payload.Data))
	for _, item := range payload.Data {
		value, err := strconv.ParseFloat(item.CapMVRVCur, 64)
		if err != nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339, item.Time)
		if err != nil {
			continue
		}
		points = append(points, models.MetricData{
			MetricName: s.name,
			Value:      value,
			Timestamp:  ts.UTC(),
			Source:     models.TierPrimary,
		})
	}
	if len(points) == 0 {
		return nil, &ParseError{Metric: s.name, Err: fmt.Errorf("no usable points")}
	}
	return points, nil
}

func (s *MVRVSource) Backup(ctx context.Context, client *Client) (float64, error) {
	body, err := client.Get(ctx, s.backup, nil)
	if err != nil {
		return 0, err
	}
	var payload chartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	value, err := payload.latest()
	if err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	return value, nil
}

// PriceFeed supplies the most recent streamed trade.
type PriceFeed interface {
	LastPrice() (float64, time.Time, bool)
}

// RSISource derives a 14-period RSI from the aggregator's price chart.
// Series too short for a full window read as the neutral 50. It retains
// the last parsed series so that a live trade feed can extend it when
// the chart endpoint is down.
type RSISource struct {
	baseSource
	feed PriceFeed

	mu     sync.Mutex
	prices []float64
}

const (
	rsiPeriod = 14

	// liveTradeMaxAge bounds how old a streamed trade may be before the
	// backup tier stops trusting it.
	liveTradeMaxAge = 5 * time.Minute
)

// UseLiveFeed attaches a trade feed for the backup tier.
func (s *RSISource) UseLiveFeed(feed PriceFeed) { s.feed = feed }

func (s *RSISource) ParsePrimary(body []byte) (float64, error) {
	var payload struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	prices := make([]float64, 0, len(payload.Prices))
	for _, pair := range payload.Prices {
		if len(pair) >= 2 {
			prices = append(prices, pair[1])
		}
	}

	s.mu.Lock()
	s.prices = prices
	s.mu.Unlock()

	return computeRSI(prices), nil
}

// computeRSI averages gains and losses over the trailing window. Fewer
// than period+1 prices cannot form a window and read as neutral.
func computeRSI(prices []float64) float64 {
	if len(prices) < rsiPeriod+1 {
		return 50.0
	}
	var gain, loss float64
	for i := len(prices) - rsiPeriod; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss += -delta
		}
	}
	gain /= rsiPeriod
	loss /= rsiPeriod
	if loss == 0 {
		if gain > 0 {
			return 100.0
		}
		return 50.0
	}
	rs := gain / loss
	return 100 - (100 / (1 + rs))
}

// ParseHistory is unsupported; each RSI point needs its own trailing
// window, so history degrades to the latest reading.
func (s *RSISource) ParseHistory([]byte) ([]models.MetricData, error) {
	return nil, fmt.Errorf("%s: history series not provided by source", s.name)
}

// Backup extends the retained price series with the latest streamed
// trade and recomputes the RSI. Without a feed, a fresh trade, or a
// retained window it reads as neutral.
func (s *RSISource) Backup(context.Context, *Client) (float64, error) {
	if s.feed == nil {
		return 50.0, nil
	}
	price, at, ok := s.feed.LastPrice()
	if !ok || time.Since(at) > liveTradeMaxAge {
		return 50.0, nil
	}

	s.mu.Lock()
	series := make([]float64, 0, len(s.prices)+1)
	series = append(series, s.prices...)
	s.mu.Unlock()
	series = append(series, price)

	return computeRSI(series), nil
}
