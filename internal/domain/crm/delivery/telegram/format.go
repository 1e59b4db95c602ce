package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/consts"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/phone"
)

const leadTimeLayout = "2006-01-02 15:04"

func formatLead(l entities.Lead) string {
	created := "-"
	if !l.CreatedAt.IsZero() {
		created = l.CreatedAt.Format(leadTimeLayout)
	}

	return fmt.Sprintf("#%d | %s | %s | %s | %s | кол-во=%d | сумма=%s | %s",
		l.ID, l.Fio, l.Phone, l.District, l.Source, l.Quantity, l.Amount.StringFixed(2), created)
}

func formatUserShort(u entities.User) string {
	chatID := "-"
	if u.ChatID != nil {
		chatID = strconv.FormatInt(*u.ChatID, 10)
	}

	username := "-"
	if u.Username != "" {
		username = "@" + u.Username
	}

	tel := "-"
	if u.Phone != "" {
		tel = phone.Normalize(u.Phone)
	}

	return fmt.Sprintf("%d | chatId=%s | %s | %s | notify=%t", u.ID, chatID, username, tel, u.Notify)
}

// formatUser adds CRM fields for contacts that have them
func formatUser(u entities.User) string {
	line := formatUserShort(u)
	if u.Fio == "" {
		return line
	}

	quantity := "-"
	if u.Quantity != nil {
		quantity = strconv.Itoa(*u.Quantity)
	}
	return fmt.Sprintf("%s\n%s | %s | %s | кол-во=%s", line, u.Fio, orDash(u.District), orDash(u.Source), quantity)
}

func formatLeadsPage(page pagination.Page[entities.Lead]) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Последние заявки (страница %d):\n\n", page.Number+1)
	for _, l := range page.Items {
		sb.WriteString(formatLead(l))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func formatUsersPage(page pagination.Page[entities.User]) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Подписчики (страница %d):\n\n", page.Number+1)
	for _, u := range page.Items {
		sb.WriteString(formatUserShort(u))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func formatContacts(title string, page pagination.Page[entities.User]) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	for _, u := range page.Items {
		sb.WriteString(formatUser(u))
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Показано %d из %d", len(page.Items), page.Total)
	return sb.String()
}

func helpText() string {
	var sb strings.Builder
	sb.WriteString("Доступные команды:\n\n")
	for _, c := range consts.LookupCommands {
		fmt.Fprintf(&sb, "%s — %s\n", c.Usage(), c.Description)
	}
	sb.WriteString("\nПодписка на рассылку:\n")
	for _, c := range consts.SubscriptionCommands {
		fmt.Fprintf(&sb, "%s — %s\n", c.Usage(), c.Description)
	}
	return sb.String()
}

func mainMenu() [][]dto.Button {
	return [][]dto.Button{
		{{Text: "Поиск по id", Data: consts.CallbackSearchByID}},
		{{Text: "Поиск по телефону", Data: consts.CallbackSearchByPhone}},
		{{Text: "Список заявок", Data: consts.CallbackListLeads}},
		{{Text: "Подписчики", Data: consts.CallbackListUsers}},
		{{Text: "Прекратить общение", Data: consts.CallbackStopChat}},
	}
}

// navigation renders page controls as a single button row
func navigation(controls []pagination.Control) [][]dto.Button {
	if len(controls) == 0 {
		return nil
	}

	row := make([]dto.Button, 0, len(controls))
	for _, c := range controls {
		row = append(row, dto.Button{Text: c.Label, Data: c.Token})
	}
	return [][]dto.Button{row}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
