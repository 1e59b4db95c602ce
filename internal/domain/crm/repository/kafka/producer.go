// Package kafka contains Kafka repository implementations
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/consts"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/metrics"
)

// Producer implements deps.LeadEventPublisher
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewPublisher returns a Kafka publisher, or a no-op one when producer is nil
func NewPublisher(producer sarama.SyncProducer, cfg *config.KafkaConfig, m *metrics.Metrics, logger zerolog.Logger) deps.LeadEventPublisher {
	if producer == nil {
		return noopPublisher{}
	}
	return NewProducer(producer, cfg.LeadsCreatedTopic, m, logger)
}

// NewProducer creates a lead event producer on topic
func NewProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics, logger zerolog.Logger) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		metrics:  m,
		logger:   logger.With().Str("component", "lead-producer").Logger(),
	}
}

// PublishLeadCreated sends a lead.created event keyed by lead id
func (p *Producer) PublishLeadCreated(_ context.Context, lead *entities.Lead) error {
	event := dto.LeadCreatedEvent{
		Type:      consts.EventLeadCreated,
		LeadID:    lead.ID,
		Fio:       lead.Fio,
		Phone:     lead.PhoneNormalized,
		District:  lead.District,
		Source:    lead.Source,
		Quantity:  lead.Quantity,
		Amount:    lead.Amount.StringFixed(2),
		CreatedAt: lead.CreatedAt.UTC().Format(time.RFC3339),
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(lead.ID, 10)),
		Value: sarama.ByteEncoder(jsonData),
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.metrics.RecordKafkaError("send_failed")
		p.logger.Error().Err(err).Str("topic", p.topic).Int64("lead_id", lead.ID).Msg("Failed to send Kafka message")
		return fmt.Errorf("%w: %w", crmerrors.ErrEventPublishFailed, err)
	}
	p.metrics.RecordKafkaMessage(time.Since(start).Seconds())

	p.logger.Debug().
		Str("topic", p.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Int64("lead_id", lead.ID).
		Msg("Kafka message sent successfully")

	return nil
}

// Close is a no-op: the sync producer is closed by its fx lifecycle hook
func (p *Producer) Close() error {
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishLeadCreated(context.Context, *entities.Lead) error { return nil }

func (noopPublisher) Close() error { return nil }
