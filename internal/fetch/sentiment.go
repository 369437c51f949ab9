package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"RegimePulse/internal/domain/models"
)

// FearGreedSource reads the crowd sentiment index. The provider encodes
// numeric values as strings, so parsing goes through strconv.
type FearGreedSource struct {
	baseSource
}

type fearGreedPayload struct {
	Data []struct {
		Value     string `json:"value"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
}

func (s *FearGreedSource) HistoryURL(days int) string {
	return fmt.Sprintf("%s?limit=%d", s.primary, days)
}

func (s *FearGreedSource) ParsePrimary(body []byte) (float64, error) {
	var payload fearGreedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	if len(payload.Data) == 0 {
		return 0, &ParseError{Metric: s.name, Err: fmt.Errorf("empty data array")}
	}
	value, err := strconv.ParseFloat(payload.Data[0].Value, 64)
	if err != nil {
		return 0, &ParseError{Metric: s.name, Err: err}
	}
	return value, nil
}

func (s *FearGreedSource) ParseHistory(body []byte) ([]models.MetricData, error) {
	var payload fearGreedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Metric: s.name, Err: err}
	}
	points := make([]models.MetricData, 0, len(payload.Data))
	for _, item := range payload.Data {
		value, err := strconv.ParseFloat(item.Value, 64)
		if err != nil {
			continue
		}
		unix, err := strconv.ParseInt(item.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		points = append(points, models.MetricData{
			MetricName: s.name,
			Value:      value,
			Timestamp:  time.Unix(unix, 0).UTC(),
			Source:     models.TierPrimary,
		})
	}
	if len(points) == 0 {
		return nil, &ParseError{Metric: s.name, Err: fmt.Errorf("no usable points")}
	}
	return points, nil
}

// Backup returns the neutral midpoint. Sentiment has no secondary
// provider, so an unreachable primary degrades to "no signal".
func (s *FearGreedSource) Backup(context.Context, *Client) (float64, error) {
	return 50.0, nil
}
