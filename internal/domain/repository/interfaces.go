package repository

import (
	"context"
	"time"

	"RegimePulse/internal/domain/models"
)

// HistoryStore persists raw metric observations and computed verdicts.
type HistoryStore interface {
	Init(ctx context.Context) error
	StoreMetrics(ctx context.Context, points []models.MetricData) error
	StoreVerdict(ctx context.Context, v *models.Verdict) error
	QueryMetrics(ctx context.Context, metric string, from, to time.Time, limit int) ([]models.MetricData, error)
	Health(ctx context.Context) error
	Close() error
}

// HealthSink receives the outcome of every fetch attempt. The engine only
// writes to it, never reads it back.
type HealthSink interface {
	LogAttempt(metric string, tier models.SourceTier, success bool, latencyMs float64, errMsg string)
}

// Publisher delivers regime events to downstream consumers.
type Publisher interface {
	PublishVerdict(ctx context.Context, v *models.Verdict) error
	Close() error
}

// PriceStream is a live trade feed used as an extra backup source for the
// price indicator.
type PriceStream interface {
	Connect(ctx context.Context) error
	LastPrice() (float64, time.Time, bool)
	Close() error
	IsConnected() bool
}
