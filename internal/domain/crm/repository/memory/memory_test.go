package memory

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
)

func chat(id int64) *int64 { return &id }

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &entities.User{ChatID: chat(42), Username: "ivan"}
	require.NoError(t, repo.Create(ctx, user))
	require.Equal(t, int64(1), user.ID)

	found, err := repo.FindByChatID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ivan", found.Username)

	err = repo.Create(ctx, &entities.User{ChatID: chat(42)})
	require.ErrorIs(t, err, crmerrors.ErrChatAlreadyExists)

	_, err = repo.FindByID(ctx, 99)
	require.ErrorIs(t, err, crmerrors.ErrUserNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	require.NoError(t, repo.Create(ctx, &entities.User{ChatID: chat(1)}))

	found, err := repo.FindByChatID(ctx, 1)
	require.NoError(t, err)
	found.Notify = true

	again, err := repo.FindByChatID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, again.Notify)
}

func TestUserRepository_DeleteByChatID(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	require.NoError(t, repo.Create(ctx, &entities.User{ChatID: chat(7)}))

	deleted, err := repo.DeleteByChatID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByChatID(ctx, 7)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserRepository_OptedInAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &entities.User{ChatID: chat(1), Notify: true, District: "Центр"}))
	require.NoError(t, repo.Create(ctx, &entities.User{ChatID: chat(2), Notify: false, District: "центр"}))
	require.NoError(t, repo.Create(ctx, &entities.User{ChatID: chat(3), Notify: true, Source: "Avito"}))
	require.NoError(t, repo.Create(ctx, &entities.User{Notify: true, Fio: "contact without chat"}))

	chatIDs, err := repo.ListOptedInChatIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, chatIDs)

	w := pagination.NewSettings(0, 20, 100).Window(0)

	users, total, err := repo.FindByDistrict(ctx, "ЦЕНТР", w)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	users, total, err = repo.FindBySource(ctx, "avito", w)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(3), users[0].ID)

	_, total, err = repo.ListOptedIn(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestLeadRepository_UniquePhone(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository()

	lead := &entities.Lead{Fio: "Иван", PhoneNormalized: "+79991234567", Amount: decimal.NewFromInt(10)}
	require.NoError(t, repo.Create(ctx, lead))

	exists, err := repo.ExistsByNormalizedPhone(ctx, "+79991234567")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, &entities.Lead{PhoneNormalized: "+79991234567"})
	require.ErrorIs(t, err, crmerrors.ErrLeadDuplicate)

	leads, total, err := repo.FindPage(ctx, pagination.NewSettings(0, 20, 100).Window(0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, leads, 1)
}

func TestFindPage_OverflowingWindow(t *testing.T) {
	ctx := context.Background()
	leads := NewLeadRepository()
	require.NoError(t, leads.Create(ctx, &entities.Lead{Fio: "Иван", PhoneNormalized: "+79991234567"}))

	w := pagination.Window{Number: math.MaxInt/20 + 1, Size: 20, SortKey: pagination.SortKey}

	var (
		items []entities.Lead
		total int64
		err   error
	)
	require.NotPanics(t, func() { items, total, err = leads.FindPage(ctx, w) })
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(1), total)
}
