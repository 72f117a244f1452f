package consumer

import (
	"context"
	"encoding/json"
	"storefront-service/internal/entity"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const retryDelay = time.Second

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type CacheInvalidator interface {
	InvalidateProducts(ctx context.Context, ids ...string) error
}

// Consumer listens for order events and evicts the product cache entries they touch.
type Consumer struct {
	reader MessageReader
	cache  CacheInvalidator
}

func NewConsumer(reader MessageReader, cache CacheInvalidator) *Consumer {
	return &Consumer{reader: reader, cache: cache}
}

// Start reads until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Order event consumer stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		c.processMessage(ctx, msg)
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	var event entity.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}

	// key -> "order.created.<order id>"
	parts := strings.SplitN(string(msg.Key), ".", 3)
	if len(parts) < 2 || parts[0] != "order" {
		log.Error().Msgf("Unexpected message key: %q", msg.Key)
		return
	}

	switch parts[1] {
	case "created", "cancelled":
		ids := make([]string, len(event.Items))
		for i, item := range event.Items {
			ids[i] = item.ProductID
		}
		if err := c.cache.InvalidateProducts(ctx, ids...); err != nil {
			log.Error().Msgf("Error evicting products of order %s: %v", event.OrderID, err)
		}
	default:
		log.Warn().Msgf("Unknown order event: %s", parts[1])
	}
}
