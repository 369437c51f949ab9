package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	drepo "RegimePulse/internal/domain/repository"
	applogger "RegimePulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements PriceStream on the exchange trade WebSocket. It keeps
// only the most recent trade; consumers poll LastPrice.
type Client struct {
	url            string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	lastPrice float64
	lastAt    time.Time
	hasPrice  bool

	cancel context.CancelFunc
}

// New creates the live price stream.
func New(url string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) drepo.PriceStream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		url:            url,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect dials the stream and starts the read and ping loops. The loops
// reconnect on error until Close or context cancellation.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.pingLoop(loopCtx)
	go c.readLoop(loopCtx)
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("price stream connected", applogger.String("url", c.url))
	return nil
}

type tradeFrame struct {
	EventType string `json:"e"`
	Price     string `json:"p"`
	TradeTime int64  `json:"T"` // ms
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			if !c.redial(ctx) {
				return
			}
			continue
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			c.log.Warn("price stream read failed", applogger.Error(err))
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			if !c.redial(ctx) {
				return
			}
			continue
		}

		var frame tradeFrame
		if err := json.Unmarshal(b, &frame); err != nil || frame.EventType != "trade" {
			continue
		}
		price, err := strconv.ParseFloat(frame.Price, 64)
		if err != nil {
			continue
		}

		c.mu.Lock()
		c.lastPrice = price
		c.lastAt = time.UnixMilli(frame.TradeTime).UTC()
		c.hasPrice = true
		c.mu.Unlock()
	}
}

func (c *Client) redial(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.reconnectDelay):
	}
	if err := c.dial(ctx); err != nil {
		c.log.Warn("price stream reconnect failed", applogger.Error(err))
	}
	return true
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()
			if conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

// LastPrice returns the most recent trade price, its timestamp, and
// whether any trade has been seen yet.
func (c *Client) LastPrice() (float64, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPrice, c.lastAt, c.hasPrice
}

// Close stops the loops and closes the connection.
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
