// Package feed consumes the exchange's wager event stream.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Apsteward8/market-scanner/internal/metrics"
	"github.com/Apsteward8/market-scanner/pkg/models"
)

const (
	defaultReconnectDelay = 3 * time.Second
	readLimit             = 1 << 20
)

// WSClient reads wager events from the exchange's websocket feed and forwards
// them on a channel. Delivery is at-least-once; duplicates are handled
// downstream.
type WSClient struct {
	url            string
	log            *zap.Logger
	events         chan models.WagerEvent
	reconnectDelay time.Duration
}

// NewWSClient creates a feed client for the given websocket URL.
func NewWSClient(url string, log *zap.Logger) *WSClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSClient{
		url:            url,
		log:            log,
		events:         make(chan models.WagerEvent, 256),
		reconnectDelay: defaultReconnectDelay,
	}
}

// Events is the stream of decoded wager events. Closed when Start returns.
func (c *WSClient) Events() <-chan models.WagerEvent {
	return c.events
}

// Start runs the connect/read loop until the context is cancelled,
// reconnecting with a fixed backoff on any connection failure.
func (c *WSClient) Start(ctx context.Context) {
	defer close(c.events)

	for {
		select {
		case <-ctx.Done():
			c.log.Info("feed stopped")
			return
		default:
			if err := c.connectAndListen(ctx); err != nil {
				c.log.Warn("feed connection closed", zap.Error(err))
				select {
				case <-ctx.Done():
				case <-time.After(c.reconnectDelay):
				}
			}
		}
	}
}

func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(readLimit)

	c.log.Info("connected to wager feed", zap.String("url", c.url))

	// Unblock ReadMessage when the context ends. The watcher must not
	// outlive this connection, or one goroutine piles up per reconnect.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		var event models.WagerEvent
		if err := json.Unmarshal(message, &event); err != nil {
			c.log.Warn("invalid feed message", zap.Error(err))
			continue
		}
		if event.ObservedAt.IsZero() {
			event.ObservedAt = time.Now().UTC()
		}

		metrics.FeedEventsTotal.Inc()

		select {
		case c.events <- event:
		case <-ctx.Done():
			return nil
		}
	}
}
