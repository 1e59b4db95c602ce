// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, storage, kafka, http, telegram)
		infrastructure.Module,

		// Domain (CRM business logic)
		domain.Module,
	)
}
