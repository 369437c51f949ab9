package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RegimePulse/internal/domain/models"
)

// chartPayload is the blockchain.info charts envelope shared by the
// hash rate and active address endpoints.
type chartPayload struct {
	Values []struct {
		X int64   `json:"x"`
		Y float64 `json:"y"`
	} `json:"values"`
}

func (p chartPayload) latest() (float64, error) {
	if len(p.Values) == 0 {
		return 0, fmt.Errorf("empty values array")
	}
	return p.Values[len(p.Values)-1].Y, nil
}

func (p chartPayload) points(metric string) []models.MetricData {
	points := make([]models.MetricData, 0, len(p.Values))
	for _, item := range p.Values {
		points = append(points, models.MetricData{
			MetricName: metric,
			Value:      item.Y,
			Timestamp:  time.Unix(item.X, 0).UTC(),
			Source:     models.TierPrimary,
		})
	}
	return points
}

// HashRateSource reads network hash rate from the charts API.
type HashRateSource struct {
	baseSource
}

func (s *HashRateSource) HistoryURL(days int) string {
	return fmt.Sprintf("%s?timespan=%ddays&format=json", s.primary, days)
}

func (s *HashRateSource) ParsePrimary(body []byte) (float64, error) {
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

func (s *HashRateSource) ParseHistory(body []byte) ([]models.MetricData, error) {
	var payload chartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Metric: s.name, Err: err}
	}
	points := payload.points(s.name)
	if len(points) == 0 {
		return nil, &ParseError{Metric: s.name, Err: fmt.Errorf("no usable points")}
	}
	return points, nil
}

// Backup probes the secondary endpoint for reachability and reports a
// progress proxy value when the chain is advancing.
func (s *HashRateSource) Backup(ctx context.Context, client *Client) (float64, error) {
	if _, err := client.Get(ctx, s.backup, nil); err != nil {
		return 0, err
	}
	return 1.0, nil
}

// NetFlowsSource reads net exchange flows. The provider exposes a
// single scalar and no historical series.
type NetFlowsSource struct {
	baseSource
}

func (s *NetFlowsSource) ParsePrimary(body []byte) (float64, error) {
	var payload struct {
		NetFlow float64 `json:"netflow"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	return payload.NetFlow, nil
}

func (s *NetFlowsSource) ParseHistory([]byte) ([]models.MetricData, error) {
	return nil, fmt.Errorf("%s: history series not provided by source", s.name)
}

// Backup degrades to a zero flow reading.
func (s *NetFlowsSource) Backup(context.Context, *Client) (float64, error) {
	return 0.0, nil
}

// ActiveAddressSource reads the daily active address series and reduces
// it to a day-over-day momentum, the fractional change between the two
// most recent points. The momentum scorer compares that change against
// its thresholds; a raw address count would sit orders of magnitude
// above them.
type ActiveAddressSource struct {
	baseSource
}

func (s *ActiveAddressSource) HistoryURL(days int) string {
	return fmt.Sprintf("%s?timespan=%ddays&format=json", s.primary, days)
}

func (s *ActiveAddressSource) ParsePrimary(body []byte) (float64, error) {
	var payload chartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	if len(payload.Values) == 0 {
		return 0, &ParseError{Metric: s.name, Err: fmt.Errorf("empty values array")}
	}
	if len(payload.Values) < 2 {
		// A single point carries no trend.
		return 0.0, nil
	}
	last := payload.Values[len(payload.Values)-1].Y
	prev := payload.Values[len(payload.Values)-2].Y
	if prev == 0 {
		return 0.0, nil
	}
	return (last - prev) / prev, nil
}

func (s *ActiveAddressSource) ParseHistory(body []byte) ([]models.MetricData, error) {
	var payload chartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Metric: s.name, Err: err}
	}
	points := payload.points(s.name)
	if len(points) == 0 {
		return nil, &ParseError{Metric: s.name, Err: fmt.Errorf("no usable points")}
	}
	return points, nil
}

// Backup confirms on-chain activity via the block explorer's 24h
// transaction count and degrades to a neutral momentum. A single
// snapshot has no previous point to diff against.
func (s *ActiveAddressSource) Backup(ctx context.Context, client *Client) (float64, error) {
	body, err := client.Get(ctx, s.backup, nil)
	if err != nil {
		return 0, err
	}
	var payload struct {
		Data struct {
			Transactions24h float64 `json:"transactions_24h"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	if payload.Data.Transactions24h <= 0 {
		return 0, &ParseError{Metric: s.name, Err: fmt.Errorf("no transaction activity reported")}
	}
	return 0.0, nil
}
