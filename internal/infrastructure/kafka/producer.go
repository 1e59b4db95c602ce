// Package kafka contains Kafka client infrastructure
package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

// NewSyncProducer creates a sarama sync producer, or nil when Kafka is disabled
func NewSyncProducer(cfg *config.KafkaConfig, logger zerolog.Logger) (sarama.SyncProducer, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Kafka disabled, lead events will not be published")
		return nil, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", cfg.Brokers).Msg("Kafka producer initialized successfully")

	return producer, nil
}
