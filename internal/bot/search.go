package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// debouncer owns a single pending timer; every trigger replaces the previous
// one, so only the last value inside the window fires. The timer belongs to
// the page session, never to a handler invocation.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// flush cancels any pending timer and runs fn immediately. Used by the
// manual search button to bypass the debounce window.
func (d *debouncer) flush(fn func()) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	fn()
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// startSearchDialog puts the chat into filter-entry mode. Filters are typed
// as "field value" lines, one per message.
func (b *Bot) startSearchDialog(ctx context.Context, chatID int64) {
	if err := b.stateService.SetDialogState(ctx, chatID, stepSearchInput, map[string]interface{}{}); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to enter search mode")
		b.sendMessage(chatID, msgGenericError)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔎 Search now", "searchnow"),
			tgbotapi.NewInlineKeyboardButtonData("♻️ Clear filters", "clearf"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "cancel"),
		),
	)

	text := "Type a filter as `field value`, e.g.:\n" +
		"`user anna`\n`service wedding`\n`location moscow`\n\n" +
		"Results refresh shortly after you stop typing."
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send search prompt")
	}
}

// handleSearchInput applies one typed filter and schedules a debounced
// reload; every keystroke inside the window resets the timer.
func (b *Bot) handleSearchInput(ctx context.Context, chatID int64, text string) {
	s := b.getSession(chatID)

	field, value := parseFilterInput(text)

	s.mu.Lock()
	switch field {
	case "user":
		s.filterUsername = value
	case "service":
		s.filterService = value
	case "location":
		s.filterLocation = value
	default:
		s.mu.Unlock()
		b.sendMessage(chatID, "Unknown filter. Use `user`, `service` or `location`.")
		return
	}
	s.page = 1
	if s.debounce == nil {
		s.debounce = newDebouncer(time.Duration(b.config.Bot.DebounceMillis) * time.Millisecond)
	}
	d := s.debounce
	s.mu.Unlock()

	d.trigger(func() {
		b.loadPage(context.Background(), chatID, s)
	})
}

// searchNow runs the current filters immediately, skipping the debounce.
func (b *Bot) searchNow(ctx context.Context, chatID int64) {
	s := b.getSession(chatID)

	s.mu.Lock()
	s.page = 1
	d := s.debounce
	s.mu.Unlock()

	if err := b.stateService.ClearDialogState(ctx, chatID); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to leave search mode")
	}

	if d != nil {
		d.flush(func() { b.loadPage(ctx, chatID, s) })
		return
	}
	b.loadPage(ctx, chatID, s)
}

// clearFilters resets every filter field and returns to page 1.
func (b *Bot) clearFilters(ctx context.Context, chatID int64) {
	s := b.getSession(chatID)

	s.mu.Lock()
	s.filterUsername = ""
	s.filterService = ""
	s.filterLocation = ""
	s.page = 1
	if s.debounce != nil {
		s.debounce.stop()
	}
	s.mu.Unlock()

	if err := b.stateService.ClearDialogState(ctx, chatID); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to leave search mode")
	}

	b.loadPage(ctx, chatID, s)
}

func parseFilterInput(text string) (field, value string) {
	text = strings.TrimSpace(text)
	parts := strings.SplitN(text, " ", 2)
	field = strings.ToLower(parts[0])
	if len(parts) == 2 {
		value = strings.TrimSpace(parts[1])
	}
	return field, value
}
