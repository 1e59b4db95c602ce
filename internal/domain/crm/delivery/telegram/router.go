// Package telegram contains Telegram delivery layer
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/access"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/consts"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/usecase/business"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/metrics"
)

const (
	unknownCommandText  = "Не знаю такую команду. Напишите /help"
	unknownCallbackText = "Неизвестная команда"
	unknownMetricLabel  = "unknown"
)

// HandlerFunc handles one routed event. args is the text after the command word.
type HandlerFunc func(ctx context.Context, ev dto.InboundEvent, args string) ([]Reply, error)

// route is one table entry. exact routes only match the bare command.
type route struct {
	name   string
	admin  bool
	exact  bool
	handle HandlerFunc
}

// Router maps chat events to handlers and renders their replies
type Router struct {
	uc        *business.UseCase
	admins    access.Admins
	commands  map[string]route
	callbacks map[string]route
	pages     map[string]route
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(
	uc *business.UseCase,
	handlers *Handlers,
	admins access.Admins,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		uc:        uc,
		admins:    admins,
		commands:  make(map[string]route),
		callbacks: make(map[string]route),
		pages:     make(map[string]route),
		metrics:   m,
		logger:    logger,
	}

	r.command(consts.CommandStart, false, handlers.Start)
	r.command(consts.CommandHelp, false, handlers.Start)
	r.command(consts.CommandUserID, false, handlers.UserByID)
	r.command(consts.CommandByPhone, false, handlers.UserByPhone)
	r.command(consts.CommandByDistrict, false, handlers.ByDistrict)
	r.command(consts.CommandBySource, false, handlers.BySource)
	r.command(consts.CommandAdd, false, handlers.AddContact)
	r.command(consts.CommandNotifyMe, false, handlers.NotifyMe)
	r.command(consts.CommandNotifyOff, false, handlers.NotifyOff)
	r.command(consts.CommandNotifyList, true, handlers.NotifyList)
	r.command(consts.CommandRemove, true, handlers.Remove)
	r.command(consts.CommandStop, false, handlers.Stop)
	r.command(consts.CommandLeads, false, handlers.Leads)

	r.callback(consts.CallbackSearchByID, false, handlers.SearchByIDPrompt)
	r.callback(consts.CallbackSearchByPhone, false, handlers.SearchByPhonePrompt)
	r.callback(consts.CallbackListLeads, false, handlers.Leads)
	r.callback(consts.CallbackListUsers, true, handlers.NotifyList)
	r.callback(consts.CallbackStopChat, false, handlers.Stop)

	r.pages[consts.NamespaceLeads] = route{name: consts.NamespaceLeads, handle: handlers.LeadsPage}
	r.pages[consts.NamespaceUsers] = route{name: consts.NamespaceUsers, admin: true, handle: handlers.UsersPage}

	return r
}

func (r *Router) command(c consts.Command, admin bool, h HandlerFunc) {
	r.commands[c.Name] = route{name: c.Name, admin: admin, exact: !c.TakesArgs(), handle: h}
}

func (r *Router) callback(data string, admin bool, h HandlerFunc) {
	r.callbacks[data] = route{name: data, admin: admin, handle: h}
}

// Handle routes a single event and returns the messages to send back.
// Handler errors and panics become an error reply and never escape.
func (r *Router) Handle(ctx context.Context, ev dto.InboundEvent) (out []dto.OutboundMessage) {
	start := time.Now()

	rt, args, ok := r.resolve(ev)
	name := rt.name
	if !ok {
		name = unknownMetricLabel
	}

	var replies []Reply
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Int64("chat_id", ev.ChatID).
				Str("command", name).
				Interface("panic", rec).
				Msg("Command handler panicked")
			replies = one(failureReply(fmt.Sprint(rec)))
			out = r.render(ev.ChatID, replies)
		}
		r.metrics.RecordCommand(name, resultOf(replies), time.Since(start).Seconds())
	}()

	if ev.Kind == dto.EventText {
		r.ensureSubscriber(ctx, ev)
	}

	switch {
	case !ok && ev.Kind == dto.EventCallback:
		replies = one(usageReply(unknownCallbackText))
	case !ok:
		replies = one(usageReply(unknownCommandText))
	case rt.admin && !r.admins.IsAdmin(ev.ChatID):
		r.logger.Warn().Int64("chat_id", ev.ChatID).Str("command", name).Msg("Admin command denied")
		replies = one(deniedReply())
	default:
		var err error
		replies, err = rt.handle(ctx, ev, args)
		if err != nil {
			r.logger.Error().Err(err).Int64("chat_id", ev.ChatID).Str("command", name).Msg("Command failed")
			replies = one(failureReply(err.Error()))
		}
	}

	r.logger.Debug().
		Int64("chat_id", ev.ChatID).
		Str("command", name).
		Str("result", resultOf(replies)).
		Msg("Command handled")

	return r.render(ev.ChatID, replies)
}

// resolve finds the route of an event. Commands may carry a @botname suffix.
func (r *Router) resolve(ev dto.InboundEvent) (route, string, bool) {
	if ev.Kind == dto.EventCallback {
		if rt, ok := r.callbacks[ev.Data]; ok {
			return rt, "", true
		}
		if namespace, _, found := strings.Cut(ev.Data, ":"); found {
			rt, ok := r.pages[namespace]
			return rt, "", ok
		}
		return route{}, "", false
	}

	word, args := strings.TrimSpace(ev.Text), ""
	if i := strings.IndexFunc(word, unicode.IsSpace); i >= 0 {
		word, args = word[:i], word[i:]
	}
	word, _, _ = strings.Cut(word, "@")

	args = strings.TrimSpace(args)
	rt, ok := r.commands[word]
	if !ok || (rt.exact && args != "") {
		return route{}, "", false
	}
	return rt, args, true
}

func (r *Router) ensureSubscriber(ctx context.Context, ev dto.InboundEvent) {
	created, err := r.uc.EnsureSubscriber(ctx, ev.ChatID, ev.Sender)
	if err != nil {
		r.logger.Error().Err(err).Int64("chat_id", ev.ChatID).Msg("Failed to register chat")
		return
	}
	if created {
		r.logger.Info().Int64("chat_id", ev.ChatID).Msg("New chat registered")
	}
}

func (r *Router) render(chatID int64, replies []Reply) []dto.OutboundMessage {
	out := make([]dto.OutboundMessage, 0, len(replies))
	for _, reply := range replies {
		out = append(out, dto.OutboundMessage{
			ChatID:         chatID,
			Text:           reply.Text,
			Buttons:        reply.Buttons,
			RemoveKeyboard: reply.RemoveKeyboard,
		})
	}
	return out
}

// resultOf reports the most significant reply kind
func resultOf(replies []Reply) string {
	if len(replies) == 0 {
		return consts.ResultFailure
	}
	return replies[len(replies)-1].Kind
}
