package usecase

import (
	"context"
	"fmt"
	"time"

	"RegimePulse/internal/domain/models"
	drepo "RegimePulse/internal/domain/repository"
	"RegimePulse/internal/service/telegram"
	applogger "RegimePulse/pkg/logger"
	"RegimePulse/pkg/queue"
)

// Watcher drives the periodic refresh loop: it recomputes the verdict on an
// interval, publishes it, and raises alerts on regime flips and high-severity
// anomalies.
type Watcher struct {
	engine    *Engine
	publisher drepo.Publisher
	notifier  telegram.Notifier
	alerts    queue.QueueService
	interval  time.Duration
	log       *applogger.Logger

	lastLabel string
}

// NewWatcher creates the refresh loop. publisher and notifier may be nil.
func NewWatcher(engine *Engine, publisher drepo.Publisher, notifier telegram.Notifier, interval time.Duration, log *applogger.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		engine:    engine,
		publisher: publisher,
		notifier:  notifier,
		interval:  interval,
		log:       log,
	}
}

// UseAlertQueue routes alerts through a job queue instead of sending them
// inline from the refresh loop.
func (w *Watcher) UseAlertQueue(q queue.QueueService) {
	w.alerts = q
}

// Run blocks until the context is cancelled. The first refresh happens
// immediately.
func (w *Watcher) Run(ctx context.Context) {
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context) {
	verdict := w.engine.Snapshot(ctx)
	w.log.Info("regime refreshed",
		applogger.String("label", verdict.Label),
		applogger.Float64("score", verdict.TotalScore),
		applogger.String("confidence", string(verdict.Confidence)))

	if w.publisher != nil {
		if err := w.publisher.PublishVerdict(ctx, &verdict); err != nil {
			w.log.Error("verdict publish failed", applogger.Error(err))
		}
	}

	w.checkAlerts(ctx, verdict)
}

func (w *Watcher) checkAlerts(ctx context.Context, verdict models.Verdict) {
	defer func() { w.lastLabel = verdict.Label }()

	if w.notifier == nil && w.alerts == nil {
		return
	}

	if w.lastLabel != "" && verdict.Label != w.lastLabel && verdict.Label != models.LabelUnavailable {
		msg := fmt.Sprintf("Regime flip: %s -> %s\nScore: %.2f (%s confidence)",
			w.lastLabel, verdict.Label, verdict.TotalScore, verdict.Confidence)
		w.dispatch(ctx, msg, telegram.LevelAlert)
	}

	if verdict.AnomalyAlert != nil && verdict.AnomalyAlert.IsAnomaly && verdict.AnomalyAlert.Severity == "HIGH" {
		msg := fmt.Sprintf("Anomalous indicator profile detected (score %.4f).\nCurrent regime: %s",
			verdict.AnomalyAlert.AnomalyScore, verdict.Label)
		w.dispatch(ctx, msg, telegram.LevelCritical)
	}
}

func (w *Watcher) dispatch(ctx context.Context, msg string, level telegram.AlertLevel) {
	if w.alerts != nil {
		if err := w.alerts.PublishMessage(ctx, AlertMessageType, AlertPayload{Message: msg, Level: string(level)}); err != nil {
			w.log.Error("alert enqueue failed", applogger.Error(err))
		}
		return
	}
	if err := w.notifier.Send(ctx, msg, level); err != nil {
		w.log.Error("alert send failed", applogger.Error(err))
	}
}
