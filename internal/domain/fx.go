// Package domain contains all domain modules
package domain

import (
	"go.uber.org/fx"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm"
)

// Module aggregates all domain modules for fx dependency injection
var Module = fx.Module("domain",
	crm.Module,
)
