package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

// Producer publishes sale, stock, and settings events. One writer serves
// all topics; each message carries its own.
type Producer struct {
	writer        *kafka.Writer
	saleTopic     string
	settingsTopic string
	logger        *zap.Logger
}

func NewProducer(brokers []string, saleTopic, settingsTopic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer:        writer,
		saleTopic:     saleTopic,
		settingsTopic: settingsTopic,
		logger:        logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, key string, event any) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: eventBytes,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	return nil
}

func (p *Producer) PublishSaleRegistered(ctx context.Context, sale *domain.Sale) error {
	event := SaleRegisteredEvent{
		EventID:   uuid.NewString(),
		SaleID:    sale.SaleID,
		Items:     sale.Items,
		Total:     sale.Total,
		Status:    sale.Status,
		Timestamp: time.Now(),
	}

	if err := p.publish(ctx, p.saleTopic, event.EventID, event); err != nil {
		return err
	}

	p.logger.Info("Sale event published",
		zap.String("event_id", event.EventID),
		zap.String("sale_id", sale.SaleID))
	return nil
}

func (p *Producer) PublishStockDeducted(ctx context.Context, saleID string, product *domain.Product, deducted map[domain.Size]int) error {
	previous := product.Variants.Normalized()
	for size, qty := range deducted {
		previous[size] += qty
	}

	event := StockDeductedEvent{
		EventID:   uuid.NewString(),
		SaleID:    saleID,
		ProductID: product.ProductID,
		Deducted:  deducted,
		Previous:  previous,
		Remaining: product.Variants.Normalized(),
		Timestamp: time.Now(),
	}

	return p.publish(ctx, p.saleTopic, event.EventID, event)
}

func (p *Producer) PublishSettingChanged(ctx context.Context, key domain.SettingKey, value json.RawMessage) error {
	event := SettingChangedEvent{
		EventID:   uuid.NewString(),
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
	}

	return p.publish(ctx, p.settingsTopic, string(key), event)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
