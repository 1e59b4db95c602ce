// Package crm contains the CRM domain module
package crm

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/access"
	httpDelivery "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/delivery/http"
	kafkaDelivery "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/delivery/kafka"
	telegramDelivery "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/delivery/telegram"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
	kafkaRepo "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/repository/kafka"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/repository/memory"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/repository/postgres"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/usecase/business"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/workers"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/http/server"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/telegram"
)

// Module provides CRM domain components for fx dependency injection
var Module = fx.Module("crm",
	// Repository
	fx.Provide(provideStorage),
	fx.Provide(kafkaRepo.NewPublisher),

	// Access and paging
	fx.Provide(access.NewAdmins),
	fx.Provide(pagination.NewSettingsFromConfig),

	// Delivery - Telegram sender (needs raw bot from infrastructure)
	fx.Provide(provideSender),

	// UseCase
	fx.Provide(business.NewBroadcasterFromConfig),
	fx.Provide(business.NewUseCase),

	// Delivery - Telegram
	fx.Provide(telegramDelivery.NewHandlers),
	fx.Provide(telegramDelivery.NewRouter),
	fx.Provide(telegramDelivery.NewDispatcher),

	// Delivery - HTTP
	fx.Provide(httpDelivery.NewLeadHandler),
	fx.Provide(httpDelivery.NewHealthHandler),
	fx.Provide(httpDelivery.NewRouter),

	// Delivery - Kafka
	fx.Provide(kafkaDelivery.NewHandlers),

	// Workers
	workers.Module,

	// Register routes and start the dispatcher
	fx.Invoke(wireAndRegister),
)

// Storage groups the repositories of the selected driver
type Storage struct {
	fx.Out

	Users deps.UserRepository
	Leads deps.LeadRepository
	Probe deps.StorageProbe
}

// provideStorage picks repositories by STORAGE_DRIVER. db is nil for the memory driver.
func provideStorage(cfg *config.DatabaseConfig, db *gorm.DB) Storage {
	if cfg.Driver == config.DriverMemory {
		return Storage{
			Users: memory.NewUserRepository(),
			Leads: memory.NewLeadRepository(),
			Probe: memory.NewProbe(),
		}
	}

	return Storage{
		Users: postgres.NewUserRepository(db),
		Leads: postgres.NewLeadRepository(db),
		Probe: postgres.NewProbe(db),
	}
}

// provideSender creates the Telegram sender with raw bot
func provideSender(bot *telegram.Bot, logger zerolog.Logger) deps.MessageSender {
	return telegramDelivery.NewSender(bot.Raw(), logger.With().Str("component", "telegram-sender").Logger())
}

// wireAndRegister registers Telegram and HTTP routes and manages the dispatcher
func wireAndRegister(
	lc fx.Lifecycle,
	bot *telegram.Bot,
	dispatcher *telegramDelivery.Dispatcher,
	httpRouter *httpDelivery.Router,
	srv *server.Server,
	publisher deps.LeadEventPublisher,
	admins access.Admins,
	logger zerolog.Logger,
) {
	dispatcher.Register(bot.Raw())
	httpRouter.RegisterRoutes(srv.Router)

	if admins.Len() == 0 {
		logger.Warn().Msg("No admins configured, admin commands are disabled")
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := telegramDelivery.RegisterCommands(ctx, bot.Raw()); err != nil {
				logger.Warn().Err(err).Msg("Failed to publish bot command menu")
			}
			dispatcher.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			if err := dispatcher.Stop(); err != nil {
				return err
			}
			return publisher.Close()
		},
	})
}
