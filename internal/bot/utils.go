package bot

import (
	"fmt"

	"mediadesk/internal/models"
	"mediadesk/internal/service"
)

func (b *Bot) isManager(userID int64) bool {
	for _, id := range b.config.Managers {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) isBlacklisted(userID int64) bool {
	for _, id := range b.config.Blacklist {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) notify(chatID int64, n service.Notification) {
	prefix := "✅ "
	if n.Severity == service.SeverityError {
		prefix = "⚠️ "
	}
	b.sendMessage(chatID, prefix+n.Text)
}

func statusIcon(status string) string {
	switch status {
	case models.StatusPending:
		return "🕒"
	case models.StatusConfirmed:
		return "📌"
	case models.StatusPaid:
		return "💰"
	case models.StatusUnpaid:
		return "💸"
	case models.StatusCompleted:
		return "✅"
	case models.StatusCancelled:
		return "❌"
	default:
		return "▫️"
	}
}

func statusTitle(status string) string {
	switch status {
	case "":
		return "All Bookings"
	case models.StatusPending:
		return "Pending Bookings"
	case models.StatusConfirmed:
		return "Confirmed Bookings"
	case models.StatusPaid:
		return "Paid Bookings"
	case models.StatusUnpaid:
		return "Unpaid Bookings"
	case models.StatusCompleted:
		return "Completed Bookings"
	case models.StatusCancelled:
		return "Cancelled Bookings"
	default:
		return fmt.Sprintf("%s Bookings", status)
	}
}

// emptyStateText matches the table's empty state exactly; the all-statuses
// page drops the qualifier.
func emptyStateText(status string) string {
	if status == "" {
		return "No bookings found"
	}
	return fmt.Sprintf("No %s bookings found", status)
}
