package telegram

import (
	"context"
	"fmt"

	"RegimePulse/internal/fetch"
	applogger "RegimePulse/pkg/logger"
)

// AlertLevel ranks notification urgency.
type AlertLevel string

const (
	LevelInfo     AlertLevel = "INFO"
	LevelWarning  AlertLevel = "WARNING"
	LevelAlert    AlertLevel = "ALERT"
	LevelCritical AlertLevel = "CRITICAL"
)

// Notifier is a notification channel for regime events.
type Notifier interface {
	Send(ctx context.Context, message string, level AlertLevel) error
}

// Client posts alerts to the Telegram Bot API.
type Client struct {
	apiURL string
	chatID string
	http   *fetch.Client
	log    *applogger.Logger
}

// New creates a Telegram notifier.
func New(botToken, chatID string, httpClient *fetch.Client, log *applogger.Logger) *Client {
	return &Client{
		apiURL: fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", botToken),
		chatID: chatID,
		http:   httpClient,
		log:    log,
	}
}

// Send posts a message. Urgent levels get the siren prefix.
func (c *Client) Send(ctx context.Context, message string, level AlertLevel) error {
	prefix := "ℹ️"
	if level == LevelAlert || level == LevelCritical {
		prefix = "\U0001F6A8"
	}

	payload := map[string]string{
		"chat_id":    c.chatID,
		"text":       fmt.Sprintf("%s *BTC MARKET ALERT* %s\n\n%s", prefix, prefix, message),
		"parse_mode": "Markdown",
	}

	if _, err := c.http.Post(ctx, c.apiURL, payload); err != nil {
		c.log.Error("telegram delivery failed", applogger.Error(err))
		return err
	}
	c.log.Info("telegram alert sent", applogger.String("level", string(level)))
	return nil
}
