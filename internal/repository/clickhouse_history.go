package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"RegimePulse/internal/domain/models"
	"RegimePulse/internal/domain/repository"
)

// ClickHouseHistory implements HistoryStore on ClickHouse.
type ClickHouseHistory struct {
	db *sql.DB
}

// NewClickHouseHistory creates the ClickHouse-backed history store.
func NewClickHouseHistory(db *sql.DB) repository.HistoryStore {
	return &ClickHouseHistory{db: db}
}

var historySchema = []string{
	`CREATE TABLE IF NOT EXISTS regime_metrics (
		ts          DateTime,
		metric      LowCardinality(String),
		value       Float64,
		source      LowCardinality(String)
	) ENGINE = MergeTree()
	ORDER BY (metric, ts)
	TTL ts + INTERVAL 2 YEAR`,
	`CREATE TABLE IF NOT EXISTS regime_verdicts (
		ts          DateTime,
		label       LowCardinality(String),
		total_score Float64,
		confidence  LowCardinality(String),
		reasoning   String
	) ENGINE = MergeTree()
	ORDER BY ts
	TTL ts + INTERVAL 2 YEAR`,
}

func (s *ClickHouseHistory) Init(ctx context.Context) error {
	for _, stmt := range historySchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseHistory) StoreMetrics(ctx context.Context, points []models.MetricData) error {
	if len(points) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, p := range points[start:end] {
			if p.MetricName == "" || p.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, p.Timestamp.UTC(), p.MetricName, p.Value, string(p.Source))
		}
		if len(values) == 0 {
			continue
		}
		q := "INSERT INTO regime_metrics (ts, metric, value, source) VALUES " + strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseHistory) StoreVerdict(ctx context.Context, v *models.Verdict) error {
	ts, err := time.Parse(time.RFC3339, v.Timestamp)
	if err != nil {
		// History rows carry a bare date.
		if ts, err = time.Parse("2006-01-02", v.Timestamp); err != nil {
			ts = time.Now().UTC()
		}
	}
	q := "INSERT INTO regime_verdicts (ts, label, total_score, confidence, reasoning) VALUES (?, ?, ?, ?, ?)"
	_, err = s.db.ExecContext(ctx, q,
		ts,
		v.Label,
		v.TotalScore,
		v.Confidence,
		strings.Join(v.Reasoning, "\n"),
	)
	return err
}

func (s *ClickHouseHistory) QueryMetrics(ctx context.Context, metric string, from, to time.Time, limit int) ([]models.MetricData, error) {
	q := "SELECT metric, ts, value, source FROM regime_metrics WHERE metric = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, q, metric, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.MetricData
	for rows.Next() {
		var p models.MetricData
		var source string
		if err := rows.Scan(&p.MetricName, &p.Timestamp, &p.Value, &source); err != nil {
			return nil, err
		}
		p.Source = models.SourceTier(source)
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *ClickHouseHistory) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseHistory) Close() error {
	return nil // Pool managed by pkg
}
