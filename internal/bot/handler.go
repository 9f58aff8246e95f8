package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mediadesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.From.ID, msg.Command())
		return
	}

	state, err := b.stateService.GetDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load dialog state")
		b.sendMessage(chatID, msgGenericError)
		return
	}
	if state == nil || state.CurrentStep == "" {
		b.sendMainMenu(chatID)
		return
	}

	b.handleDialogText(ctx, chatID, state, strings.TrimSpace(msg.Text))
}

func (b *Bot) handleCommand(ctx context.Context, chatID, userID int64, command string) {
	if b.metrics != nil {
		b.metrics.CommandsProcessed.WithLabelValues(command).Inc()
	}

	// Отзывы доступны всем, страницы бронирований только менеджерам.
	switch command {
	case "start":
		b.sendMainMenu(chatID)
		return
	case "reviews":
		b.openReviews(ctx, chatID)
		return
	}

	if !b.isManager(userID) {
		b.sendMessage(chatID, msgAccessDenied)
		return
	}

	switch command {
	case "bookings":
		b.openStatusPage(ctx, chatID, "")
	case "pending":
		b.openStatusPage(ctx, chatID, models.StatusPending)
	case "confirmed":
		b.openStatusPage(ctx, chatID, models.StatusConfirmed)
	case "paid":
		b.openStatusPage(ctx, chatID, models.StatusPaid)
	case "unpaid":
		b.openStatusPage(ctx, chatID, models.StatusUnpaid)
	case "completed":
		b.openStatusPage(ctx, chatID, models.StatusCompleted)
	case "cancelled":
		b.openStatusPage(ctx, chatID, models.StatusCancelled)
	case "history":
		b.showHistory(ctx, chatID)
	default:
		b.sendMessage(chatID, "Unknown command. Try /start.")
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID
	data := cb.Data

	if err := b.tgService.AnswerCallback(cb.ID, ""); err != nil {
		b.logger.Debug().Err(err).Msg("Failed to answer callback")
	}

	action, arg := splitCallback(data)

	// Кнопки отзывов открыты для всех.
	switch action {
	case "rev":
		switch arg {
		case "prev", "next":
			b.navigateReviews(chatID, arg)
		case "write":
			b.startReviewDialog(ctx, chatID)
		case "open":
			b.openReviews(ctx, chatID)
		}
		return
	case "rsvc", "star":
		state, err := b.stateService.GetDialogState(ctx, chatID)
		if err != nil || state == nil {
			return
		}
		b.handleReviewCallback(ctx, chatID, state, action, arg)
		return
	case "menu":
		b.sendMainMenu(chatID)
		return
	case "cancel":
		if err := b.stateService.ClearDialogState(ctx, chatID); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to cancel dialog")
		}
		b.sendMessage(chatID, "Cancelled.")
		return
	}

	if !b.isManager(userID) {
		return
	}

	switch action {
	case "open":
		b.openStatusPage(ctx, chatID, arg)
	case "page":
		// "page::2" — страница всех статусов.
		status, pageStr := splitCallback(arg)
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return
		}
		b.gotoPage(ctx, chatID, status, page)
	case "row":
		id, _ := strconv.ParseInt(arg, 10, 64)
		b.toggleRow(chatID, id)
	case "create":
		b.startCreateDialog(ctx, chatID)
	case "edit":
		id, _ := strconv.ParseInt(arg, 10, 64)
		b.startUpdateDialog(ctx, chatID, id)
	case "del":
		id, _ := strconv.ParseInt(arg, 10, 64)
		b.startDeleteDialog(ctx, chatID, id)
	case "search":
		b.startSearchDialog(ctx, chatID)
	case "searchnow":
		b.searchNow(ctx, chatID)
	case "clearf":
		b.clearFilters(ctx, chatID)
	case "psize":
		b.cyclePageSize(ctx, chatID)
	case "export":
		b.exportBookings(ctx, chatID)
	case "usr", "svc", "bstatus", "confirm", "fld":
		state, err := b.stateService.GetDialogState(ctx, chatID)
		if err != nil || state == nil {
			return
		}
		b.handleDialogCallback(ctx, chatID, state, action, arg)
	}
}

// splitCallback cuts "action:rest" on the first colon; rest keeps any
// further colons.
func splitCallback(data string) (string, string) {
	if i := strings.Index(data, ":"); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, ""
}

func (b *Bot) sendMainMenu(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕒 Pending", "open:"+models.StatusPending),
			tgbotapi.NewInlineKeyboardButtonData("📌 Confirmed", "open:"+models.StatusConfirmed),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Paid", "open:"+models.StatusPaid),
			tgbotapi.NewInlineKeyboardButtonData("💸 Unpaid", "open:"+models.StatusUnpaid),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Completed", "open:"+models.StatusCompleted),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancelled", "open:"+models.StatusCancelled),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 All bookings", "open:"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Reviews", "rev:open"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "*Booking desk*\nPick a section:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send main menu")
	}
}

// showHistory prints the most recent journaled admin actions.
func (b *Bot) showHistory(ctx context.Context, chatID int64) {
	if b.journal == nil {
		b.sendMessage(chatID, "Action history is not enabled.")
		return
	}

	entries, err := b.journal.Recent(ctx, 10)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load action history")
		b.sendMessage(chatID, msgGenericError)
		return
	}
	if len(entries) == 0 {
		b.sendMessage(chatID, "No recorded actions yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent actions:\n")
	for _, e := range entries {
		icon := "✅"
		if e.Outcome == models.OutcomeError {
			icon = "⚠️"
		}
		sb.WriteString(fmt.Sprintf("\n%s %s", icon, e.Action))
		if e.BookingID != 0 {
			sb.WriteString(fmt.Sprintf(" #%d", e.BookingID))
		}
		sb.WriteString(fmt.Sprintf(" — %s", e.CreatedAt.Format("02.01 15:04")))
		if e.Detail != "" {
			sb.WriteString("\n   " + e.Detail)
		}
	}
	b.sendMessage(chatID, sb.String())
}
