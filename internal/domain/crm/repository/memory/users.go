// Package memory contains in-process repositories selected with STORAGE_DRIVER=memory
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
)

type userRepository struct {
	mu     sync.RWMutex
	users  map[int64]entities.User
	byChat map[int64]int64
	nextID int64
}

// NewUserRepository creates an in-memory user repository
func NewUserRepository() deps.UserRepository {
	return &userRepository{
		users:  make(map[int64]entities.User),
		byChat: make(map[int64]int64),
	}
}

func (r *userRepository) FindByID(_ context.Context, id int64) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, crmerrors.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepository) FindByChatID(_ context.Context, chatID int64) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byChat[chatID]
	if !ok {
		return nil, crmerrors.ErrUserNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *userRepository) FindByNormalizedPhone(_ context.Context, phone string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.sortedLocked() {
		if user.PhoneNormalized == phone {
			return cloneUser(user), nil
		}
	}
	return nil, crmerrors.ErrUserNotFound
}

func (r *userRepository) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ChatID != nil {
		if _, taken := r.byChat[*user.ChatID]; taken {
			return crmerrors.ErrChatAlreadyExists
		}
	}

	r.nextID++
	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *cloneUser(*user)
	if user.ChatID != nil {
		r.byChat[*user.ChatID] = user.ID
	}
	return nil
}

func (r *userRepository) Save(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return crmerrors.ErrUserNotFound
	}

	if user.ChatID != nil {
		if owner, taken := r.byChat[*user.ChatID]; taken && owner != user.ID {
			return crmerrors.ErrChatAlreadyExists
		}
	}
	if existing.ChatID != nil {
		delete(r.byChat, *existing.ChatID)
	}

	user.UpdatedAt = time.Now()
	r.users[user.ID] = *cloneUser(*user)
	if user.ChatID != nil {
		r.byChat[*user.ChatID] = user.ID
	}
	return nil
}

func (r *userRepository) DeleteByChatID(_ context.Context, chatID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byChat[chatID]
	if !ok {
		return false, nil
	}
	delete(r.byChat, chatID)
	delete(r.users, id)
	return true, nil
}

func (r *userRepository) ListOptedIn(_ context.Context, w pagination.Window) ([]entities.User, int64, error) {
	return r.window(w, func(u entities.User) bool { return u.Notify })
}

func (r *userRepository) FindByDistrict(_ context.Context, district string, w pagination.Window) ([]entities.User, int64, error) {
	return r.window(w, func(u entities.User) bool { return strings.EqualFold(u.District, district) })
}

func (r *userRepository) FindBySource(_ context.Context, source string, w pagination.Window) ([]entities.User, int64, error) {
	return r.window(w, func(u entities.User) bool { return strings.EqualFold(u.Source, source) })
}

func (r *userRepository) ListOptedInChatIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chatIDs []int64
	for _, user := range r.sortedLocked() {
		if user.Notify && user.ChatID != nil {
			chatIDs = append(chatIDs, *user.ChatID)
		}
	}
	return chatIDs, nil
}

func (r *userRepository) window(w pagination.Window, keep func(entities.User) bool) ([]entities.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []entities.User
	for _, user := range r.sortedLocked() {
		if keep(user) {
			matched = append(matched, *cloneUser(user))
		}
	}
	return slice(matched, w), int64(len(matched)), nil
}

func (r *userRepository) sortedLocked() []entities.User {
	users := make([]entities.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func cloneUser(u entities.User) *entities.User {
	if u.ChatID != nil {
		chatID := *u.ChatID
		u.ChatID = &chatID
	}
	if u.Quantity != nil {
		quantity := *u.Quantity
		u.Quantity = &quantity
	}
	return &u
}

func slice[T any](items []T, w pagination.Window) []T {
	if !w.Valid() {
		return nil
	}
	start := w.Offset()
	if start < 0 || start >= len(items) {
		return nil
	}
	end := min(start+w.Size, len(items))
	return items[start:end]
}
