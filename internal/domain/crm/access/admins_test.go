package access

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

func TestParseAdmins(t *testing.T) {
	admins, err := ParseAdmins(" 100, 200 ,,-300")
	require.NoError(t, err)

	assert.Equal(t, 3, admins.Len())
	assert.True(t, admins.IsAdmin(100))
	assert.True(t, admins.IsAdmin(200))
	assert.True(t, admins.IsAdmin(-300))
	assert.False(t, admins.IsAdmin(400))
}

func TestParseAdmins_Empty(t *testing.T) {
	admins, err := ParseAdmins("")
	require.NoError(t, err)
	assert.Equal(t, 0, admins.Len())
	assert.False(t, admins.IsAdmin(0))
}

func TestParseAdmins_Malformed(t *testing.T) {
	_, err := ParseAdmins("100,abc")
	require.Error(t, err)
}

func TestNewAdmins_MalformedDeniesEveryone(t *testing.T) {
	admins := NewAdmins(&config.AdminConfig{IDs: "100,abc"}, zerolog.Nop())

	assert.Equal(t, 0, admins.Len())
	assert.False(t, admins.IsAdmin(100))
}

func TestAdmins_ZeroValueDeniesEveryone(t *testing.T) {
	var admins Admins
	assert.False(t, admins.IsAdmin(1))
}
