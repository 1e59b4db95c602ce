package business

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/repository/memory"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/metrics"
)

// blockingSender waits for the context on one chat and counts concurrent sends
type blockingSender struct {
	blockChat int64
	inFlight  atomic.Int32
	peak      atomic.Int32
}

func (s *blockingSender) Send(ctx context.Context, msg dto.OutboundMessage) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if msg.ChatID == s.blockChat {
		<-ctx.Done()
		return ctx.Err()
	}
	time.Sleep(5 * time.Millisecond)
	return nil
}

// failingUsers fails recipient listing
type failingUsers struct {
	deps.UserRepository
}

func (failingUsers) ListOptedInChatIDs(context.Context) ([]int64, error) {
	return nil, errors.New("connection refused")
}

func optedIn(t *testing.T, chatIDs ...int64) deps.UserRepository {
	t.Helper()
	repo := memory.NewUserRepository()
	for _, id := range chatIDs {
		chatID := id
		require.NoError(t, repo.Create(context.Background(), &entities.User{ChatID: &chatID, Notify: true}))
	}
	return repo
}

func TestBroadcast_SendTimeoutIsPerRecipient(t *testing.T) {
	sender := &blockingSender{blockChat: 2}
	b := NewBroadcaster(optedIn(t, 1, 2, 3), sender,
		BroadcastOptions{Workers: 3, SendTimeout: 50 * time.Millisecond}, metrics.GetDefaultMetrics(), zerolog.Nop())

	report, err := b.Broadcast(context.Background(), &entities.Lead{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Delivered())
	require.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Failed()[0].Err, context.DeadlineExceeded)
	assert.NotEmpty(t, report.RunID)
}

func TestBroadcast_BoundedParallelism(t *testing.T) {
	sender := &blockingSender{}
	b := NewBroadcaster(optedIn(t, 1, 2, 3, 4, 5, 6, 7, 8), sender,
		BroadcastOptions{Workers: 2, SendTimeout: time.Second}, metrics.GetDefaultMetrics(), zerolog.Nop())

	report, err := b.Broadcast(context.Background(), &entities.Lead{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, 8, report.Delivered())
	assert.LessOrEqual(t, sender.peak.Load(), int32(2))
}

func TestBroadcast_NoRecipients(t *testing.T) {
	b := NewBroadcaster(optedIn(t), &blockingSender{},
		BroadcastOptions{Workers: 2, RatePerSec: 10}, metrics.GetDefaultMetrics(), zerolog.Nop())

	report, err := b.Broadcast(context.Background(), &entities.Lead{ID: 1})
	require.NoError(t, err)
	assert.Empty(t, report.Deliveries)
}

func TestBroadcast_RecipientListingFails(t *testing.T) {
	b := NewBroadcaster(failingUsers{}, &blockingSender{},
		BroadcastOptions{Workers: 2}, metrics.GetDefaultMetrics(), zerolog.Nop())

	report, err := b.Broadcast(context.Background(), &entities.Lead{ID: 1})
	require.Error(t, err)
	assert.Equal(t, int64(1), report.LeadID)
}
