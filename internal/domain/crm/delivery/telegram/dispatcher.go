package telegram

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/consts"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
)

const sendTimeout = 30 * time.Second

// callbackAnswerer clears the loading state of a pressed inline button
type callbackAnswerer interface {
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
}

// Dispatcher queues chat events and processes them one at a time in arrival order
type Dispatcher struct {
	router    *Router
	sender    deps.MessageSender
	callbacks callbackAnswerer
	queue     chan dto.InboundEvent
	logger    zerolog.Logger
	started   atomic.Bool
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewDispatcher creates new event dispatcher
func NewDispatcher(router *Router, sender deps.MessageSender, cfg *config.TelegramConfig, logger zerolog.Logger) *Dispatcher {
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		router: router,
		sender: sender,
		queue:  make(chan dto.InboundEvent, size),
		logger: logger,
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register subscribes the dispatcher to text messages and button presses
func (d *Dispatcher) Register(bot *tgbot.Bot) {
	d.callbacks = bot
	bot.RegisterHandlerMatchFunc(matchUpdate, d.onUpdate)
	d.logger.Info().Msg("Telegram update handler registered")
}

func matchUpdate(update *models.Update) bool {
	if update.CallbackQuery != nil {
		return true
	}
	return update.Message != nil && update.Message.Text != ""
}

func (d *Dispatcher) onUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	ev, ok := ToEvent(update)
	if !ok {
		return
	}
	d.Enqueue(ctx, ev)
}

// Enqueue adds ev to the queue, waiting while it is full. It reports false if ev was dropped.
func (d *Dispatcher) Enqueue(ctx context.Context, ev dto.InboundEvent) bool {
	if d.ctx.Err() == nil {
		select {
		case d.queue <- ev:
			return true
		case <-ctx.Done():
		case <-d.ctx.Done():
		}
	}

	d.logger.Warn().Int64("chat_id", ev.ChatID).Msg("Dropping chat event, dispatcher is stopping")
	return false
}

// Start starts processing queued events
func (d *Dispatcher) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	d.logger.Info().Msg("Starting Telegram dispatcher...")

	go func() {
		defer close(d.done)
		for {
			select {
			case <-d.ctx.Done():
				d.logger.Info().Msg("Telegram dispatcher stopped by context cancellation")
				return
			case ev := <-d.queue:
				d.process(d.ctx, ev)
			}
		}
	}()
}

// Stop stops processing and waits for the current event to finish
func (d *Dispatcher) Stop() error {
	d.logger.Info().Msg("Stopping Telegram dispatcher...")
	d.cancel()
	if d.started.Load() {
		<-d.done
	}
	return nil
}

func (d *Dispatcher) process(ctx context.Context, ev dto.InboundEvent) {
	for _, msg := range d.router.Handle(ctx, ev) {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := d.sender.Send(sendCtx, msg)
		cancel()

		if err != nil {
			d.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("Failed to send reply")
		}
	}

	if ev.CallbackID == "" || d.callbacks == nil {
		return
	}
	if _, err := d.callbacks.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{CallbackQueryID: ev.CallbackID}); err != nil {
		d.logger.Warn().Err(err).Str("callback_id", ev.CallbackID).Msg("Failed to answer callback query")
	}
}

// ToEvent converts a Telegram update into a chat event
func ToEvent(update *models.Update) (dto.InboundEvent, bool) {
	if cb := update.CallbackQuery; cb != nil {
		return dto.InboundEvent{
			Kind:       dto.EventCallback,
			ChatID:     callbackChatID(cb),
			Data:       cb.Data,
			CallbackID: cb.ID,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.Text == "" {
		return dto.InboundEvent{}, false
	}

	ev := dto.InboundEvent{
		Kind:   dto.EventText,
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.From != nil {
		ev.Sender = &dto.Profile{
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}
	}
	return ev, true
}

// callbackChatID prefers the chat of the message carrying the button
func callbackChatID(cb *models.CallbackQuery) int64 {
	switch {
	case cb.Message.Message != nil:
		return cb.Message.Message.Chat.ID
	case cb.Message.InaccessibleMessage != nil:
		return cb.Message.InaccessibleMessage.Chat.ID
	default:
		return cb.From.ID
	}
}

// RegisterCommands publishes the command menu shown by Telegram clients
func RegisterCommands(ctx context.Context, bot *tgbot.Bot) error {
	all := []consts.Command{consts.CommandStart, consts.CommandHelp}
	all = append(all, consts.LookupCommands...)
	all = append(all, consts.SubscriptionCommands...)

	commands := make([]models.BotCommand, 0, len(all))
	for _, c := range all {
		commands = append(commands, models.BotCommand{
			Command:     strings.TrimPrefix(c.Name, "/"),
			Description: c.Description,
		})
	}

	_, err := bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: commands})
	return err
}
