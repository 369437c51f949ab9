package repository

import (
	"context"

	"RegimePulse/internal/domain/models"
	"RegimePulse/internal/domain/repository"
)

// NopHealthSink drops attempt records. Used when metrics are disabled.
type NopHealthSink struct{}

func (NopHealthSink) LogAttempt(string, models.SourceTier, bool, float64, string) {}

var _ repository.HealthSink = NopHealthSink{}

// NopPublisher drops verdicts. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishVerdict(context.Context, *models.Verdict) error { return nil }
func (NopPublisher) Close() error                                          { return nil }

var _ repository.Publisher = NopPublisher{}
