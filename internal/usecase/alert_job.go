package usecase

import (
	"context"
	"fmt"

	"RegimePulse/internal/service/telegram"
	"RegimePulse/pkg/queue"
)

// AlertMessageType identifies queued alert messages.
const AlertMessageType = "regime_alert"

// AlertPayload is the queued form of a pending notification.
type AlertPayload struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// AlertJob delivers queued alerts through the notifier. Running delivery on
// queue workers keeps slow Telegram round-trips out of the refresh loop and
// retries transient failures.
type AlertJob struct {
	notifier telegram.Notifier
}

// NewAlertJob creates the alert delivery job.
func NewAlertJob(notifier telegram.Notifier) *AlertJob {
	return &AlertJob{notifier: notifier}
}

func (j *AlertJob) Name() string { return "telegram_alert_delivery" }

func (j *AlertJob) Type() string { return AlertMessageType }

func (j *AlertJob) Handle(ctx context.Context, payload interface{}) error {
	alert, err := queue.ParsePayload[AlertPayload](payload)
	if err != nil {
		return fmt.Errorf("alert payload: %w", err)
	}
	return j.notifier.Send(ctx, alert.Message, telegram.AlertLevel(alert.Level))
}
