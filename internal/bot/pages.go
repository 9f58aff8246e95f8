package bot

import (
	"context"

	"mediadesk/internal/backend"
	"mediadesk/internal/format"
	"mediadesk/internal/models"
)

// pageSizeOptions is the cycle the "page size" button walks through on the
// completed page.
var pageSizeOptions = []int{5, 10, 20}

// openStatusPage resets the chat onto a fresh status page and loads page 1.
func (b *Bot) openStatusPage(ctx context.Context, chatID int64, status string) {
	s := b.getSession(chatID)
	s.stopCarousel()

	s.mu.Lock()
	s.status = status
	s.page = 1
	s.expanded = make(map[int64]bool)
	s.messageID = 0
	if status != models.StatusCompleted {
		s.filterUsername = ""
		s.filterService = ""
		s.filterLocation = ""
		if s.debounce != nil {
			s.debounce.stop()
		}
	}
	s.mu.Unlock()

	b.loadPage(ctx, chatID, s)
}

// loadPage fetches the session's current page and repaints the table. A
// generation counter guards against slow responses landing after the user
// has already moved on.
func (b *Bot) loadPage(ctx context.Context, chatID int64, s *pageSession) {
	gen := s.nextGeneration()

	s.mu.Lock()
	s.loading = true
	query := backend.BookingQuery{
		Status:   s.status,
		Page:     s.page,
		PageSize: s.pageSize,
		Username: s.filterUsername,
		Service:  s.filterService,
		Location: s.filterLocation,
	}
	s.mu.Unlock()

	b.renderPage(chatID, s)

	page, err := b.bookingAPI.ListBookings(ctx, query)

	if !s.isCurrentGeneration(gen) {
		return
	}

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.bookings = page.Results
		s.total = page.Count
	}
	s.mu.Unlock()

	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("status", query.Status).Msg("Failed to load bookings page")
		b.sendMessage(chatID, msgLoadBookingsFail)
		return
	}

	b.renderPage(chatID, s)
}

// renderPage edits the table message in place when one exists, otherwise
// sends a new one and remembers its id.
func (b *Bot) renderPage(chatID int64, s *pageSession) {
	s.mu.Lock()
	p := tableParams{
		Status:   s.status,
		Page:     s.page,
		PageSize: s.pageSize,
		Total:    s.total,
		Loading:  s.loading,
		Filtered: s.filterUsername != "" || s.filterService != "" || s.filterLocation != "",
		Bookings: format.Bookings(s.bookings),
		Expanded: s.expanded,
	}
	messageID := s.messageID
	s.mu.Unlock()

	text, keyboard := renderBookingsTable(p)

	if messageID != 0 {
		if _, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard); err == nil {
			return
		}
		// Сообщение могло быть удалено пользователем; отправляем заново.
	}

	msg, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to render bookings page")
		return
	}

	s.mu.Lock()
	s.messageID = msg.MessageID
	s.mu.Unlock()
}

func (b *Bot) gotoPage(ctx context.Context, chatID int64, status string, page int) {
	s := b.getSession(chatID)

	s.mu.Lock()
	s.status = status
	if page < 1 {
		page = 1
	}
	s.page = page
	s.expanded = make(map[int64]bool)
	s.mu.Unlock()

	b.loadPage(ctx, chatID, s)
}

func (b *Bot) toggleRow(chatID int64, bookingID int64) {
	s := b.getSession(chatID)

	s.mu.Lock()
	s.expanded[bookingID] = !s.expanded[bookingID]
	s.mu.Unlock()

	b.renderPage(chatID, s)
}

func (b *Bot) cyclePageSize(ctx context.Context, chatID int64) {
	s := b.getSession(chatID)

	s.mu.Lock()
	next := pageSizeOptions[0]
	for i, v := range pageSizeOptions {
		if v == s.pageSize {
			next = pageSizeOptions[(i+1)%len(pageSizeOptions)]
			break
		}
	}
	s.pageSize = next
	s.page = 1
	s.mu.Unlock()

	b.loadPage(ctx, chatID, s)
}

// refreshPage repaints the current page after a mutation.
func (b *Bot) refreshPage(ctx context.Context, chatID int64) {
	s := b.getSession(chatID)
	b.loadPage(ctx, chatID, s)
}
