// Package access decides which chats may run admin commands
package access

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

// Admins is an immutable allow-list of admin chat ids
type Admins struct {
	ids map[int64]struct{}
}

// ParseAdmins parses a comma separated list of chat ids.
// Blank entries are skipped; any malformed entry fails the whole list.
func ParseAdmins(raw string) (Admins, error) {
	ids := make(map[int64]struct{})

	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return Admins{}, fmt.Errorf("invalid admin id %q: %w", token, err)
		}
		ids[id] = struct{}{}
	}

	return Admins{ids: ids}, nil
}

// NewAdmins builds the admin set from config.
// A malformed list yields an empty set so every gated command is denied.
func NewAdmins(cfg *config.AdminConfig, logger zerolog.Logger) Admins {
	admins, err := ParseAdmins(cfg.IDs)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse ADMIN_IDS, admin commands are disabled")
		return Admins{}
	}

	logger.Info().Int("admins", admins.Len()).Msg("Admin allow-list loaded")
	return admins
}

// IsAdmin reports whether chatID is in the allow-list
func (a Admins) IsAdmin(chatID int64) bool {
	_, ok := a.ids[chatID]
	return ok
}

// Len returns the number of admins
func (a Admins) Len() int {
	return len(a.ids)
}
