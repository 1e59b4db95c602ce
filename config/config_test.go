package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "changeme", cfg.Lead.APIKey)
	require.Equal(t, "", cfg.Admin.IDs)
	require.Equal(t, 0, cfg.Pagination.DefaultPage)
	require.Equal(t, 20, cfg.Pagination.DefaultSize)
	require.Equal(t, 100, cfg.Pagination.MaxSize)
	require.Equal(t, 8, cfg.Broadcast.Workers)
	require.Equal(t, 10*time.Second, cfg.Broadcast.SendTimeout)
	require.Equal(t, DriverPostgres, cfg.Database.Driver)
	require.False(t, cfg.Kafka.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("PAGINATION_DEFAULT_SIZE", "5")
	t.Setenv("BROADCAST_SEND_TIMEOUT", "3s")
	t.Setenv("ADMIN_IDS", "1,2")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, DriverMemory, cfg.Database.Driver)
	require.Equal(t, 5, cfg.Pagination.DefaultSize)
	require.Equal(t, 3*time.Second, cfg.Broadcast.SendTimeout)
	require.Equal(t, "1,2", cfg.Admin.IDs)
}

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_UnknownDriver(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	require.ErrorContains(t, err, "STORAGE_DRIVER")
}
