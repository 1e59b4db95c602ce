package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) deps.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByChatID(ctx context.Context, chatID int64) (*entities.User, error) {
	return r.first(ctx, "chat_id = ?", chatID)
}

func (r *userRepository) FindByNormalizedPhone(ctx context.Context, phone string) (*entities.User, error) {
	return r.first(ctx, "phone_normalized = ?", phone)
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return crmerrors.ErrChatAlreadyExists
		}
		return dbError("create user", err)
	}
	return nil
}

func (r *userRepository) Save(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return crmerrors.ErrChatAlreadyExists
		}
		return dbError("save user", err)
	}
	return nil
}

func (r *userRepository) DeleteByChatID(ctx context.Context, chatID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&entities.User{})
	if result.Error != nil {
		return false, dbError("delete user", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) ListOptedIn(ctx context.Context, w pagination.Window) ([]entities.User, int64, error) {
	return r.page(ctx, w, "notify = ?", true)
}

func (r *userRepository) FindByDistrict(ctx context.Context, district string, w pagination.Window) ([]entities.User, int64, error) {
	return r.page(ctx, w, "LOWER(district) = LOWER(?)", district)
}

func (r *userRepository) FindBySource(ctx context.Context, source string, w pagination.Window) ([]entities.User, int64, error) {
	return r.page(ctx, w, "LOWER(source) = LOWER(?)", source)
}

func (r *userRepository) ListOptedInChatIDs(ctx context.Context) ([]int64, error) {
	var chatIDs []int64
	err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("notify = ? AND chat_id IS NOT NULL", true).
		Order(orderBy(pagination.SortKey)).
		Pluck("chat_id", &chatIDs).Error
	if err != nil {
		return nil, dbError("list opted-in chat ids", err)
	}
	return chatIDs, nil
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where(query, args...).Order(orderBy(pagination.SortKey)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, crmerrors.ErrUserNotFound
		}
		return nil, dbError("find user", err)
	}
	return &user, nil
}

func (r *userRepository) page(ctx context.Context, w pagination.Window, query string, args ...interface{}) ([]entities.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Where(query, args...).Count(&total).Error; err != nil {
		return nil, 0, dbError("count users", err)
	}

	var users []entities.User
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order(orderBy(w.SortKey)).
		Offset(w.Offset()).
		Limit(w.Size).
		Find(&users).Error
	if err != nil {
		return nil, 0, dbError("list users", err)
	}

	return users, total, nil
}

func orderBy(column string) clause.OrderByColumn {
	if column == "" {
		column = pagination.SortKey
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}}
}

func dbError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", crmerrors.ErrDatabaseOperation, op, err)
}
