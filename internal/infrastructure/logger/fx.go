// Package logger contains logger infrastructure
package logger

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

// Module provides logger for fx dependency injection
var Module = fx.Module("logger",
	fx.Provide(provideLogger),
)

func provideLogger(cfg *config.LoggingConfig) zerolog.Logger {
	return New(cfg.Level).With().Str("service", "crm-bot").Logger()
}
