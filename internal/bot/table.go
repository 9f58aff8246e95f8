package bot

import (
	"fmt"
	"strconv"
	"strings"

	"mediadesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// tableParams is everything renderBookingsTable needs; building it from a
// session snapshot keeps the render itself free of locking.
type tableParams struct {
	Status   string
	Page     int // 1-based
	PageSize int
	Total    int
	Loading  bool
	Filtered bool
	Bookings []models.DisplayBooking
	Expanded map[int64]bool
}

func priceText(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// renderBookingsTable renders one page of bookings as a Markdown message plus
// its inline keyboard. Collapsed rows show the essentials; expanded rows add
// the rest of the record.
func renderBookingsTable(p tableParams) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%s*\n", statusTitle(p.Status)))
	if p.Filtered {
		sb.WriteString("_Filters applied_\n")
	}

	if p.Loading {
		sb.WriteString("\n⏳ Loading...")
		return sb.String(), tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
			),
		)
	}

	if len(p.Bookings) == 0 {
		sb.WriteString("\n" + emptyStateText(p.Status))
	}

	var rows [][]tgbotapi.InlineKeyboardButton

	for _, bk := range p.Bookings {
		sb.WriteString(fmt.Sprintf("\n%s *%d.* %s — %s\n", statusIcon(bk.Status), bk.SerialNo, bk.Customer, bk.Service))
		sb.WriteString(fmt.Sprintf("   📅 %s  💵 %s\n", bk.EventDate, priceText(bk.Price)))

		toggleLabel := fmt.Sprintf("▸ #%d", bk.ID)
		if p.Expanded[bk.ID] {
			toggleLabel = fmt.Sprintf("▾ #%d", bk.ID)
			sb.WriteString(fmt.Sprintf("   🕐 %s  📍 %s\n", bk.EventTime, bk.Location))
			sb.WriteString(fmt.Sprintf("   📞 %s  🗓 booked %s\n", bk.Contact, bk.Booked))
			sb.WriteString(fmt.Sprintf("   status: %s\n", bk.Status))
		}

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, fmt.Sprintf("row:%d", bk.ID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️", fmt.Sprintf("edit:%d", bk.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("del:%d", bk.ID)),
		))
	}

	pages := totalPages(p.Total, p.PageSize)
	sb.WriteString(fmt.Sprintf("\nPage %d of %d (%d total)", p.Page, pages, p.Total))

	var nav []tgbotapi.InlineKeyboardButton
	if p.Page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", fmt.Sprintf("page:%s:%d", p.Status, p.Page-1)))
	}
	if p.Page < pages {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("page:%s:%d", p.Status, p.Page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(nav...))
	}

	actions := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➕ New booking", "create"),
	}
	if p.Status == models.StatusCompleted {
		actions = append(actions,
			tgbotapi.NewInlineKeyboardButtonData("🔍 Search", "search"),
			tgbotapi.NewInlineKeyboardButtonData("📤 Export", "export"),
		)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(actions...))

	if p.Status == models.StatusCompleted {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📏 Page size: %d", p.PageSize), "psize"),
			tgbotapi.NewInlineKeyboardButtonData("♻️ Clear filters", "clearf"),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Menu", "menu"),
	))

	return sb.String(), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
