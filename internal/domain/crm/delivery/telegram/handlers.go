package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/consts"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/usecase/business"
	pkgerrors "github.com/PersifalJun/CRM-Telegram-Bot/pkg/errors"
)

const (
	farewellText = "Мы удалили ваши данные и больше не будем писать ✅\n\nЕсли захотите вернуться — просто отправьте /start."
	deniedText   = "Доступ запрещён."
	notFoundText = "Не найдено"

	addArity = 5
)

// Reply is a handler result rendered by the router into outbound messages
type Reply struct {
	Kind           string
	Text           string
	Buttons        [][]dto.Button
	RemoveKeyboard bool
}

func okReply(text string, buttons [][]dto.Button) Reply {
	return Reply{Kind: consts.ResultOK, Text: text, Buttons: buttons}
}

func usageReply(text string) Reply {
	return Reply{Kind: consts.ResultUsage, Text: text}
}

func notFoundReply(text string) Reply {
	return Reply{Kind: consts.ResultNotFound, Text: text}
}

func deniedReply() Reply {
	return Reply{Kind: consts.ResultDenied, Text: deniedText}
}

func failureReply(msg string) Reply {
	return Reply{Kind: consts.ResultFailure, Text: "Ошибка: " + msg}
}

func one(r Reply) []Reply {
	return []Reply{r}
}

// Handlers implements chat commands on top of the CRM use case
type Handlers struct {
	uc     *business.UseCase
	pages  pagination.Settings
	logger zerolog.Logger
}

// NewHandlers creates new chat command handlers
func NewHandlers(uc *business.UseCase, pages pagination.Settings, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		pages:  pages,
		logger: logger,
	}
}

// Start greets the user, removes any reply keyboard and shows the main menu
func (h *Handlers) Start(_ context.Context, _ dto.InboundEvent, _ string) ([]Reply, error) {
	return []Reply{
		{Kind: consts.ResultOK, Text: "Добро пожаловать!", RemoveKeyboard: true},
		okReply(helpText(), mainMenu()),
	}, nil
}

// UserByID handles /user_id <id>
func (h *Handlers) UserByID(ctx context.Context, _ dto.InboundEvent, args string) ([]Reply, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return one(usageReply("Укажите id: " + consts.CommandUserID.Usage())), nil
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return one(usageReply("id должен быть числом.")), nil
	}

	user, err := h.uc.FindUserByID(ctx, id)
	if errors.Is(err, crmerrors.ErrUserNotFound) {
		return one(notFoundReply(fmt.Sprintf("Не найден пользователь с id=%d", id))), nil
	}
	if err != nil {
		return nil, err
	}

	return one(okReply(formatUser(*user), nil)), nil
}

// UserByPhone handles /by_phone <phone>
func (h *Handlers) UserByPhone(ctx context.Context, _ dto.InboundEvent, args string) ([]Reply, error) {
	if args == "" {
		return one(usageReply("Укажите телефон: /by_phone <phone>")), nil
	}

	user, err := h.uc.FindUserByPhone(ctx, args)
	if errors.Is(err, crmerrors.ErrUserNotFound) {
		return one(notFoundReply(notFoundText)), nil
	}
	if err != nil {
		return nil, err
	}

	return one(okReply(formatUser(*user), nil)), nil
}

// ByDistrict handles /by_district <district>
func (h *Handlers) ByDistrict(ctx context.Context, _ dto.InboundEvent, args string) ([]Reply, error) {
	if args == "" {
		return one(usageReply("Укажите район: " + consts.CommandByDistrict.Usage())), nil
	}

	page, err := h.uc.FindByDistrict(ctx, args, h.pages.Window(0))
	if err != nil {
		return nil, err
	}
	if page.Empty() {
		return one(notFoundReply(notFoundText)), nil
	}

	return one(okReply(formatContacts(fmt.Sprintf("Контакты, район «%s»:", args), page), nil)), nil
}

// BySource handles /by_source <source>
func (h *Handlers) BySource(ctx context.Context, _ dto.InboundEvent, args string) ([]Reply, error) {
	if args == "" {
		return one(usageReply("Укажите источник: " + consts.CommandBySource.Usage())), nil
	}

	page, err := h.uc.FindBySource(ctx, args, h.pages.Window(0))
	if err != nil {
		return nil, err
	}
	if page.Empty() {
		return one(notFoundReply(notFoundText)), nil
	}

	return one(okReply(formatContacts(fmt.Sprintf("Контакты, источник «%s»:", args), page), nil)), nil
}

// AddContact handles /add fio; phone; district; source; quantity
func (h *Handlers) AddContact(ctx context.Context, _ dto.InboundEvent, args string) ([]Reply, error) {
	usage := usageReply("Использование: " + consts.CommandAdd.Usage())

	parts := strings.Split(args, ";")
	if len(parts) != addArity {
		return one(usage), nil
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return one(usage), nil
		}
	}

	quantity, err := strconv.Atoi(parts[4])
	if err != nil || quantity < 0 {
		return one(usageReply("Количество должно быть целым числом >= 0.")), nil
	}

	user, err := h.uc.AddContact(ctx, dto.ContactRequest{
		Fio:      parts[0],
		Phone:    parts[1],
		District: parts[2],
		Source:   parts[3],
		Quantity: quantity,
	})
	if pkgerrors.IsValidationError(err) {
		return one(usageReply(fmt.Sprintf("Некорректные данные: %s\n%s", err, usage.Text))), nil
	}
	if err != nil {
		return nil, err
	}

	return one(okReply("Контакт добавлен ✅\n"+formatUser(*user), nil)), nil
}

// NotifyMe handles /notify_me
func (h *Handlers) NotifyMe(ctx context.Context, ev dto.InboundEvent, _ string) ([]Reply, error) {
	outcome, err := h.uc.Subscribe(ctx, ev.ChatID, ev.Sender)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case dto.SubscribeAlready:
		return one(okReply("Вы уже подписаны ✅", nil)), nil
	case dto.SubscribeEnabled:
		return one(okReply("Подписка включена ✅", nil)), nil
	default:
		return one(okReply("Вы подписаны на рассылку ✅", nil)), nil
	}
}

// NotifyOff handles /notify_off
func (h *Handlers) NotifyOff(ctx context.Context, ev dto.InboundEvent, _ string) ([]Reply, error) {
	outcome, err := h.uc.Unsubscribe(ctx, ev.ChatID)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case dto.UnsubscribeNoRecord:
		return one(okReply("У вас нет активной подписки.", nil)), nil
	case dto.UnsubscribeAlreadyOff:
		return one(okReply("Подписка уже выключена.", nil)), nil
	default:
		return one(okReply("Рассылка отключена ❌", nil)), nil
	}
}

// NotifyList handles /notify_list and the list_users button
func (h *Handlers) NotifyList(ctx context.Context, _ dto.InboundEvent, _ string) ([]Reply, error) {
	return h.usersPage(ctx, h.pages.DefaultPage)
}

// Remove handles /remove <chatId>
func (h *Handlers) Remove(ctx context.Context, _ dto.InboundEvent, args string) ([]Reply, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return one(usageReply("Использование: " + consts.CommandRemove.Usage())), nil
	}

	chatID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return one(usageReply("chatId должен быть числом.")), nil
	}

	deleted, err := h.uc.RemoveSubscriber(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return one(notFoundReply("Пользователь не найден.")), nil
	}

	h.logger.Info().Int64("removed_chat_id", chatID).Msg("Subscriber removed by admin")
	return one(okReply("Пользователь удалён.", nil)), nil
}

// Stop handles /stop and the stop_chat button
func (h *Handlers) Stop(ctx context.Context, ev dto.InboundEvent, _ string) ([]Reply, error) {
	if err := h.uc.Forget(ctx, ev.ChatID); err != nil {
		return nil, err
	}
	return one(okReply(farewellText, nil)), nil
}

// Leads handles /leads and the list_leads button
func (h *Handlers) Leads(ctx context.Context, _ dto.InboundEvent, _ string) ([]Reply, error) {
	return h.leadsPage(ctx, h.pages.DefaultPage)
}

// LeadsPage handles leads_page:<n>
func (h *Handlers) LeadsPage(ctx context.Context, ev dto.InboundEvent, _ string) ([]Reply, error) {
	_, number, ok := pagination.ParseToken(ev.Data)
	if !ok {
		return one(usageReply("Неизвестная команда")), nil
	}
	return h.leadsPage(ctx, number)
}

// UsersPage handles users_page:<n>
func (h *Handlers) UsersPage(ctx context.Context, ev dto.InboundEvent, _ string) ([]Reply, error) {
	_, number, ok := pagination.ParseToken(ev.Data)
	if !ok {
		return one(usageReply("Неизвестная команда")), nil
	}
	return h.usersPage(ctx, number)
}

// SearchByIDPrompt handles the search_by_id button
func (h *Handlers) SearchByIDPrompt(_ context.Context, _ dto.InboundEvent, _ string) ([]Reply, error) {
	return one(okReply("Введите: /user_id <id>\nНапример: /user_id 1", nil)), nil
}

// SearchByPhonePrompt handles the search_by_phone button
func (h *Handlers) SearchByPhonePrompt(_ context.Context, _ dto.InboundEvent, _ string) ([]Reply, error) {
	return one(okReply("Введите: /by_phone <телефон>\nНапример: /by_phone +7(999)123-45-67", nil)), nil
}

func (h *Handlers) leadsPage(ctx context.Context, number int) ([]Reply, error) {
	page, err := h.uc.ListLeads(ctx, h.pages.Window(number))
	if err != nil {
		return nil, err
	}
	if page.Empty() {
		return one(okReply("Заявок нет.", nil)), nil
	}

	return one(okReply(formatLeadsPage(page), navigation(pagination.Controls(consts.NamespaceLeads, page)))), nil
}

func (h *Handlers) usersPage(ctx context.Context, number int) ([]Reply, error) {
	page, err := h.uc.ListSubscribers(ctx, h.pages.Window(number))
	if err != nil {
		return nil, err
	}
	if page.Empty() {
		return one(okReply("Пользователей нет.", nil)), nil
	}

	return one(okReply(formatUsersPage(page), navigation(pagination.Controls(consts.NamespaceUsers, page)))), nil
}
