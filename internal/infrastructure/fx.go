// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/database"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/http"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/kafka"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/logger"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/metrics"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	database.Module,
	kafka.Module,
	http.Module,
	telegram.Module,
)
