package business

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/metrics"
)

// BroadcastOptions tunes lead notification fan-out
type BroadcastOptions struct {
	Workers     int
	SendTimeout time.Duration
	RatePerSec  float64
}

// Broadcaster notifies every opted-in subscriber about a new lead
type Broadcaster struct {
	users       deps.UserRepository
	sender      deps.MessageSender
	workers     int
	sendTimeout time.Duration
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewBroadcaster creates a broadcaster. A non-positive rate disables throttling.
func NewBroadcaster(
	users deps.UserRepository,
	sender deps.MessageSender,
	opts BroadcastOptions,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Broadcaster {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), max(1, int(opts.RatePerSec)))
	}

	return &Broadcaster{
		users:       users,
		sender:      sender,
		workers:     opts.Workers,
		sendTimeout: opts.SendTimeout,
		limiter:     limiter,
		metrics:     m,
		logger:      logger.With().Str("component", "broadcaster").Logger(),
	}
}

// NewBroadcasterFromConfig is the fx provider for Broadcaster
func NewBroadcasterFromConfig(
	users deps.UserRepository,
	sender deps.MessageSender,
	cfg *config.BroadcastConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Broadcaster {
	return NewBroadcaster(users, sender, BroadcastOptions{
		Workers:     cfg.Workers,
		SendTimeout: cfg.SendTimeout,
		RatePerSec:  cfg.RatePerSec,
	}, m, logger)
}

// Broadcast sends the lead notification to all opted-in chats.
// A failed send is recorded in the report and never stops the others.
func (b *Broadcaster) Broadcast(ctx context.Context, lead *entities.Lead) (*dto.BroadcastReport, error) {
	start := time.Now()
	report := &dto.BroadcastReport{
		RunID:  uuid.NewString(),
		LeadID: lead.ID,
	}

	chatIDs, err := b.users.ListOptedInChatIDs(ctx)
	if err != nil {
		b.logger.Error().Err(err).Str("run_id", report.RunID).Int64("lead_id", lead.ID).Msg("Failed to list broadcast recipients")
		return report, fmt.Errorf("list recipients: %w", err)
	}

	text := FormatLeadNotification(lead)
	report.Deliveries = make([]dto.Delivery, len(chatIDs))

	var g errgroup.Group
	g.SetLimit(b.workers)

	for i, chatID := range chatIDs {
		g.Go(func() error {
			report.Deliveries[i] = dto.Delivery{ChatID: chatID, Err: b.deliver(ctx, chatID, text)}
			return nil
		})
	}
	_ = g.Wait()

	failed := report.Failed()
	delivered := report.Delivered()
	b.metrics.RecordBroadcast(delivered, len(failed), time.Since(start).Seconds())

	logEvent := b.logger.Info()
	if len(failed) > 0 {
		logEvent = b.logger.Warn()
		failedChats := make([]int64, 0, len(failed))
		for _, d := range failed {
			failedChats = append(failedChats, d.ChatID)
		}
		logEvent = logEvent.Ints64("failed_chat_ids", failedChats).AnErr("first_error", failed[0].Err)
	}
	logEvent.
		Str("run_id", report.RunID).
		Int64("lead_id", lead.ID).
		Int("recipients", len(chatIDs)).
		Int("delivered", delivered).
		Int("failed", len(failed)).
		Dur("duration", time.Since(start)).
		Msg("Lead broadcast finished")

	return report, nil
}

func (b *Broadcaster) deliver(ctx context.Context, chatID int64, text string) error {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
	defer cancel()

	return b.sender.Send(sendCtx, dto.OutboundMessage{ChatID: chatID, Text: text})
}
