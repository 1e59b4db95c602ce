package business

import (
	"fmt"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
)

const leadNotificationTemplate = "🔔 Новая заявка #%d\nФИО: %s\nТелефон: %s\nРайон: %s\nSource: %s\nКол-во: %d\nСумма: %s"

// FormatLeadNotification renders the broadcast text for a stored lead
func FormatLeadNotification(lead *entities.Lead) string {
	return fmt.Sprintf(leadNotificationTemplate,
		lead.ID,
		lead.Fio,
		lead.Phone,
		lead.District,
		lead.Source,
		lead.Quantity,
		lead.Amount.StringFixed(2),
	)
}
