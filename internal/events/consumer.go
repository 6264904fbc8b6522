package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

// SettingsApplier receives configuration changes published by other
// instances. The settings service implements it.
type SettingsApplier interface {
	ApplyRemote(key domain.SettingKey, raw json.RawMessage) error
}

// SettingsConsumer subscribes to the settings-events topic so every
// running instance refreshes its configuration cache live. This is the
// realtime-subscription side of the settings store.
type SettingsConsumer struct {
	reader  *kafka.Reader
	applier SettingsApplier
	logger  *zap.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewSettingsConsumer(brokers []string, topic, groupID string, applier SettingsApplier, logger *zap.Logger) *SettingsConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  500 * time.Millisecond,
		Dialer: &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
			KeepAlive: 30 * time.Second,
		},
	})

	return &SettingsConsumer{
		reader:  reader,
		applier: applier,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (c *SettingsConsumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.logger.Info("Settings consumer started")
	go c.consume(ctx)
}

func (c *SettingsConsumer) consume(ctx context.Context) {
	defer close(c.done)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Settings consumer stopped")
				return
			}
			c.logger.Error("Error reading message", zap.Error(err))
			continue
		}

		if err := c.processMessage(msg); err != nil {
			c.logger.Error("Error processing settings event",
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

func (c *SettingsConsumer) processMessage(msg kafka.Message) error {
	var event SettingChangedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if err := c.applier.ApplyRemote(event.Key, event.Value); err != nil {
		return fmt.Errorf("failed to apply setting %s: %w", event.Key, err)
	}

	c.logger.Info("Setting refreshed from event",
		zap.String("key", string(event.Key)),
		zap.String("event_id", event.EventID))
	return nil
}

func (c *SettingsConsumer) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Error closing settings reader", zap.Error(err))
	}
}
