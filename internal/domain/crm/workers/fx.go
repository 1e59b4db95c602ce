package workers

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	kafkaHandlers "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/delivery/kafka"
	infraKafka "github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/kafka"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("crm-workers",
	fx.Invoke(registerLeadConsumerLifecycle),
)

// registerLeadConsumerLifecycle starts the lead consumer when Kafka is enabled
func registerLeadConsumerLifecycle(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	handlers *kafkaHandlers.Handlers,
	logger zerolog.Logger,
) {
	if !cfg.Enabled {
		logger.Info().Msg("Kafka disabled, lead consumer not started")
		return
	}

	reader := infraKafka.NewReader(cfg, cfg.LeadsSubmittedTopic)
	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("group_id", cfg.GroupID).
		Str("topic", cfg.LeadsSubmittedTopic).
		Msg("Kafka lead consumer initialized")

	consumer := NewLeadConsumer(reader, handlers, logger.With().Str("component", "lead-consumer").Logger())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			consumer.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return consumer.Stop()
		},
	})
}
