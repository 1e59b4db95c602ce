package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
)

type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) deps.LeadRepository {
	return &leadRepository{db: db}
}

// Create relies on the unique phone_normalized index to reject concurrent duplicates
func (r *leadRepository) Create(ctx context.Context, lead *entities.Lead) error {
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return crmerrors.ErrLeadDuplicate
		}
		return dbError("create lead", err)
	}
	return nil
}

func (r *leadRepository) ExistsByNormalizedPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Lead{}).
		Where("phone_normalized = ?", phone).
		Count(&count).Error
	if err != nil {
		return false, dbError("check lead phone", err)
	}
	return count > 0, nil
}

func (r *leadRepository) FindPage(ctx context.Context, w pagination.Window) ([]entities.Lead, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Lead{}).Count(&total).Error; err != nil {
		return nil, 0, dbError("count leads", err)
	}

	var leads []entities.Lead
	err := r.db.WithContext(ctx).
		Order(orderBy(w.SortKey)).
		Offset(w.Offset()).
		Limit(w.Size).
		Find(&leads).Error
	if err != nil {
		return nil, 0, dbError("list leads", err)
	}

	return leads, total, nil
}

type probe struct {
	db *gorm.DB
}

// NewProbe creates a storage probe pinging the database
func NewProbe(db *gorm.DB) deps.StorageProbe {
	return &probe{db: db}
}

func (p *probe) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return dbError("get sql.DB", err)
	}
	return sqlDB.PingContext(ctx)
}
