package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"restodash/dashboard-svc/internal/cache"
	"restodash/dashboard-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Consumer applies change events from the ordering system and from other
// dashboard instances to the local cache.
type Consumer struct {
	Reader     MessageReader
	Cache      *cache.Cache
	Notifier   Notifier
	InstanceID string
	Log        *zap.Logger
}

func NewConsumer(reader MessageReader, c *cache.Cache, notifier Notifier, instanceID string, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		Reader:     reader,
		Cache:      c,
		Notifier:   notifier,
		InstanceID: instanceID,
		Log:        log.Named("consumer"),
	}
}

// Start reads until ctx is done.
func (c *Consumer) Start(ctx context.Context) {
	c.Log.Info("starting change event consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.Log.Info("change event consumer stopped")
				return
			}
			c.Log.Warn("read message", zap.Error(err))
			continue
		}

		var event domain.ChangeEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.Log.Warn("unmarshal message", zap.Error(err), zap.ByteString("key", message.Key))
			continue
		}
		c.Process(event)
	}
}

func (c *Consumer) Process(event domain.ChangeEvent) {
	if event.Source != "" && event.Source == c.InstanceID {
		return
	}

	switch event.Type {
	case domain.EventOrderCreated:
		c.Cache.Invalidate(KeyOrders)
		c.Notifier.Info(newOrderMessage(event))
	case domain.EventOrderChanged:
		c.Cache.Invalidate(KeyOrders)
	case domain.EventMenuChanged:
		c.Cache.Invalidate(KeyMenus)
	default:
		c.Log.Debug("ignoring event", zap.String("type", string(event.Type)))
		return
	}
	c.Log.Debug("applied event",
		zap.String("type", string(event.Type)),
		zap.String("entity", event.EntityID),
		zap.String("source", event.Source),
	)
}

func newOrderMessage(event domain.ChangeEvent) string {
	if event.RecipientName == "" {
		return fmt.Sprintf("New order %s received", event.EntityID)
	}
	return fmt.Sprintf("New order from %s: %s", event.RecipientName, event.TotalAmount.StringFixed(2))
}
