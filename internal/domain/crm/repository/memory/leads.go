package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
)

type leadRepository struct {
	mu      sync.RWMutex
	leads   map[int64]entities.Lead
	byPhone map[string]int64
	nextID  int64
}

// NewLeadRepository creates an in-memory lead repository
func NewLeadRepository() deps.LeadRepository {
	return &leadRepository{
		leads:   make(map[int64]entities.Lead),
		byPhone: make(map[string]int64),
	}
}

func (r *leadRepository) Create(_ context.Context, lead *entities.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byPhone[lead.PhoneNormalized]; taken {
		return crmerrors.ErrLeadDuplicate
	}

	r.nextID++
	lead.ID = r.nextID
	lead.CreatedAt = time.Now()

	r.leads[lead.ID] = *lead
	r.byPhone[lead.PhoneNormalized] = lead.ID
	return nil
}

func (r *leadRepository) ExistsByNormalizedPhone(_ context.Context, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byPhone[phone]
	return ok, nil
}

func (r *leadRepository) FindPage(_ context.Context, w pagination.Window) ([]entities.Lead, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	leads := make([]entities.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		leads = append(leads, lead)
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i].ID < leads[j].ID })

	return slice(leads, w), int64(len(leads)), nil
}

// probe always reports healthy in-process storage
type probe struct{}

// NewProbe creates a storage probe for in-memory storage
func NewProbe() deps.StorageProbe {
	return probe{}
}

func (probe) Ping(context.Context) error {
	return nil
}
