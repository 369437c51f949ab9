package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"RegimePulse/internal/domain/models"
	"RegimePulse/internal/service/telegram"
	applogger "RegimePulse/pkg/logger"
)

type capturingPublisher struct {
	mu       sync.Mutex
	verdicts []models.Verdict
}

func (p *capturingPublisher) PublishVerdict(_ context.Context, v *models.Verdict) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verdicts = append(p.verdicts, *v)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

type capturingNotifier struct {
	messages []string
	levels   []telegram.AlertLevel
}

func (n *capturingNotifier) Send(_ context.Context, msg string, level telegram.AlertLevel) error {
	n.messages = append(n.messages, msg)
	n.levels = append(n.levels, level)
	return nil
}

func TestWatcherPublishesEachRefresh(t *testing.T) {
	engine := testEngine(t,
		`{"data":[{"value":"90","timestamp":"1700000000"}]}`,
		`{"data":[{"time":"2026-08-30T00:00:00Z","CapMVRVCur":"0.9"}]}`,
	)
	pub := &capturingPublisher{}
	w := NewWatcher(engine, pub, nil, time.Minute, applogger.Nop())

	w.refresh(context.Background())
	w.refresh(context.Background())

	if len(pub.verdicts) != 2 {
		t.Fatalf("published %d verdicts, want 2", len(pub.verdicts))
	}
	if pub.verdicts[0].Label != models.LabelBull {
		t.Fatalf("label = %q, want %q", pub.verdicts[0].Label, models.LabelBull)
	}
}

func TestWatcherAlertsOnRegimeFlip(t *testing.T) {
	engine := testEngine(t,
		`{"data":[{"value":"90","timestamp":"1700000000"}]}`,
		`{"data":[{"time":"2026-08-30T00:00:00Z","CapMVRVCur":"0.9"}]}`,
	)
	notifier := &capturingNotifier{}
	w := NewWatcher(engine, nil, notifier, time.Minute, applogger.Nop())

	// First refresh establishes the label without alerting.
	w.refresh(context.Background())
	if len(notifier.messages) != 0 {
		t.Fatalf("alert on first refresh: %v", notifier.messages)
	}

	// Simulate a previous BEAR state; the next refresh flips to BULL.
	w.lastLabel = models.LabelBear
	w.refresh(context.Background())

	if len(notifier.messages) != 1 {
		t.Fatalf("got %d alerts, want 1", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "Regime flip") {
		t.Fatalf("alert text = %q", notifier.messages[0])
	}
	if notifier.levels[0] != telegram.LevelAlert {
		t.Fatalf("alert level = %q, want %q", notifier.levels[0], telegram.LevelAlert)
	}
}
