package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestCreateApp(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ADMIN_IDS", "1,2")

	// Validate fx dependency graph
	require.NoError(t, fx.ValidateApp(CreateApp()))
}

func TestCreateApp_WithKafka(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "localhost:9093")

	require.NoError(t, fx.ValidateApp(CreateApp()))
}
