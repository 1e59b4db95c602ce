// Package deps contains interface definitions for the CRM domain dependencies
package deps

import (
	"context"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
)

// UserRepository defines data access for the subscriber directory
type UserRepository interface {
	// FindByID returns errors.ErrUserNotFound when there is no such user
	FindByID(ctx context.Context, id int64) (*entities.User, error)

	// FindByChatID returns errors.ErrUserNotFound when the chat is unknown
	FindByChatID(ctx context.Context, chatID int64) (*entities.User, error)

	// FindByNormalizedPhone returns the first user with the given canonical phone
	FindByNormalizedPhone(ctx context.Context, phone string) (*entities.User, error)

	// Create inserts a new user; a taken chat id yields errors.ErrChatAlreadyExists
	Create(ctx context.Context, user *entities.User) error

	// Save updates an existing user
	Save(ctx context.Context, user *entities.User) error

	// DeleteByChatID deletes the user bound to chatID and reports whether one existed
	DeleteByChatID(ctx context.Context, chatID int64) (bool, error)

	// ListOptedIn returns one window of users with notifications on, ordered by id
	ListOptedIn(ctx context.Context, w pagination.Window) ([]entities.User, int64, error)

	// FindByDistrict returns one window of users whose district matches case-insensitively
	FindByDistrict(ctx context.Context, district string, w pagination.Window) ([]entities.User, int64, error)

	// FindBySource returns one window of users whose source matches case-insensitively
	FindBySource(ctx context.Context, source string, w pagination.Window) ([]entities.User, int64, error)

	// ListOptedInChatIDs returns the chat ids of every opted-in user
	ListOptedInChatIDs(ctx context.Context) ([]int64, error)
}

// LeadRepository defines data access for the lead ledger
type LeadRepository interface {
	// Create inserts a lead; a taken normalized phone yields errors.ErrLeadDuplicate
	Create(ctx context.Context, lead *entities.Lead) error

	// ExistsByNormalizedPhone reports whether a lead with the canonical phone exists
	ExistsByNormalizedPhone(ctx context.Context, phone string) (bool, error)

	// FindPage returns one window of leads ordered by id
	FindPage(ctx context.Context, w pagination.Window) ([]entities.Lead, int64, error)
}

// StorageProbe reports storage health
type StorageProbe interface {
	Ping(ctx context.Context) error
}

// MessageSender delivers outbound messages to a chat
type MessageSender interface {
	Send(ctx context.Context, msg dto.OutboundMessage) error
}

// LeadEventPublisher publishes lead lifecycle events
type LeadEventPublisher interface {
	// PublishLeadCreated announces a stored lead
	PublishLeadCreated(ctx context.Context, lead *entities.Lead) error

	// Close releases the publisher
	Close() error
}
