package kafka

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

func TestNewSyncProducer_Disabled(t *testing.T) {
	producer, err := NewSyncProducer(&config.KafkaConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, producer)
}

func TestNewReader_UsesConfig(t *testing.T) {
	cfg := &config.KafkaConfig{Brokers: []string{"localhost:9093"}, GroupID: "crm-test"}

	reader := NewReader(cfg, "leads.submitted")
	defer reader.Close()

	require.Equal(t, "leads.submitted", reader.Config().Topic)
	require.Equal(t, "crm-test", reader.Config().GroupID)
}
