// Package broker publishes audit events leaving the outbox.
package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"garaadka-laundry/internal/config"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
	Close() error
}

// New picks the publisher named by outbox.broker.
func New(cfg config.Config, logger *zap.Logger) (Publisher, error) {
	switch cfg.Outbox.Broker {
	case "", "log":
		return NewLogPublisher(logger), nil
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka.Brokers, logger)
	case "redis":
		return NewRedisPublisher(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return nil, fmt.Errorf("unsupported outbox broker %q", cfg.Outbox.Broker)
	}
}
