package kafka

import (
	"github.com/segmentio/kafka-go"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

// NewReader creates a consumer group reader for topic
func NewReader(cfg *config.KafkaConfig, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    topic,
		MinBytes: 1,    // return as soon as a message is available
		MaxBytes: 10e6, // 10MB
	})
}
