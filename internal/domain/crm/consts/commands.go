// Package consts contains constants for the CRM domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Args        string
	Description string
}

// Bot commands
var (
	CommandStart      = Command{Name: "/start", Description: "главное меню"}
	CommandHelp       = Command{Name: "/help", Description: "список команд"}
	CommandUserID     = Command{Name: "/user_id", Args: "<id>", Description: "поиск контакта по id"}
	CommandByPhone    = Command{Name: "/by_phone", Args: "<телефон>", Description: "поиск контакта по телефону"}
	CommandByDistrict = Command{Name: "/by_district", Args: "<район>", Description: "контакты по району"}
	CommandBySource   = Command{Name: "/by_source", Args: "<источник>", Description: "контакты по источнику"}
	CommandAdd        = Command{Name: "/add", Args: "ФИО; телефон; район; источник; количество", Description: "добавить контакт"}
	CommandNotifyMe   = Command{Name: "/notify_me", Description: "подписать текущий чат на рассылку уведомлений"}
	CommandNotifyOff  = Command{Name: "/notify_off", Description: "отписаться от рассылки"}
	CommandNotifyList = Command{Name: "/notify_list", Description: "список подписанных пользователей (для админов)"}
	CommandRemove     = Command{Name: "/remove", Args: "<chatId>", Description: "удалить подписчика (для админов)"}
	CommandStop       = Command{Name: "/stop", Description: "прекратить общение и удалить ваши данные"}
	CommandLeads      = Command{Name: "/leads", Description: "последние заявки"}
)

// LookupCommands are listed in the first block of the help text
var LookupCommands = []Command{
	CommandUserID,
	CommandByPhone,
	CommandByDistrict,
	CommandBySource,
	CommandAdd,
	CommandLeads,
}

// SubscriptionCommands are listed in the second block of the help text
var SubscriptionCommands = []Command{
	CommandNotifyMe,
	CommandNotifyOff,
	CommandNotifyList,
	CommandRemove,
	CommandStop,
}

// TakesArgs reports whether text after the command is passed to its handler.
// Commands without arguments match only when sent bare.
func (c Command) TakesArgs() bool {
	return c.Args != ""
}

// Usage returns the command with its argument placeholder
func (c Command) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// Callback tokens sent by inline buttons
const (
	CallbackSearchByID    = "search_by_id"
	CallbackSearchByPhone = "search_by_phone"
	CallbackListLeads     = "list_leads"
	CallbackListUsers     = "list_users"
	CallbackStopChat      = "stop_chat"
)

// Pagination namespaces used in "<namespace>:<n>" callback tokens
const (
	NamespaceLeads = "leads_page"
	NamespaceUsers = "users_page"
)

// Command outcome labels for logs and metrics
const (
	ResultOK       = "ok"
	ResultUsage    = "usage"
	ResultNotFound = "not_found"
	ResultDenied   = "denied"
	ResultFailure  = "failure"
)
