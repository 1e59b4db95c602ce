package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

// Module provides Kafka clients for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewSyncProducerFx),
)

// NewSyncProducerFx creates the sync producer and closes it on stop
func NewSyncProducerFx(lc fx.Lifecycle, cfg *config.KafkaConfig, logger zerolog.Logger) (sarama.SyncProducer, error) {
	producer, err := NewSyncProducer(cfg, logger)
	if err != nil || producer == nil {
		return producer, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close Kafka producer")
				return err
			}
			logger.Info().Msg("Kafka producer closed successfully")
			return nil
		},
	})

	return producer, nil
}
