package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"mediadesk/internal/events"
	"mediadesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// carousel rotates review chunks inside a single message. Manual navigation
// pauses the auto-advance for a couple of intervals, then rotation resumes.
type carousel struct {
	mu         sync.Mutex
	chunks     [][]models.Review
	index      int
	pauseUntil time.Time
	messageID  int
	interval   time.Duration
	done       chan struct{}
	stopOnce   sync.Once
}

func (c *carousel) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// chunkReviews splits reviews into groups of size; the last chunk may be
// shorter. A nil or empty input yields no chunks.
func chunkReviews(reviews []models.Review, size int) [][]models.Review {
	if size <= 0 || len(reviews) == 0 {
		return nil
	}
	var chunks [][]models.Review
	for start := 0; start < len(reviews); start += size {
		end := start + size
		if end > len(reviews) {
			end = len(reviews)
		}
		chunks = append(chunks, reviews[start:end])
	}
	return chunks
}

func starBar(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("⭐", rating) + strings.Repeat("▫️", 5-rating)
}

// renderReviewChunk renders one carousel position.
func renderReviewChunk(chunks [][]models.Review, index int) string {
	if len(chunks) == 0 {
		return "*Reviews*\n\nNo reviews yet. Be the first to write one!"
	}
	if index < 0 || index >= len(chunks) {
		index = 0
	}

	var sb strings.Builder
	sb.WriteString("*Reviews*\n")
	for _, r := range chunks[index] {
		name := r.User.Username
		if name == "" {
			name = "Anonymous"
		}
		sb.WriteString(fmt.Sprintf("\n%s\n%s", starBar(r.Rating), name))
		if r.ServiceDetails.Category != "" {
			sb.WriteString(" · " + r.ServiceDetails.Category)
		}
		sb.WriteString("\n")
		if r.Comment != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", r.Comment))
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d / %d", index+1, len(chunks)))
	return sb.String()
}

func reviewKeyboard(hasChunks bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if hasChunks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️", "rev:prev"),
			tgbotapi.NewInlineKeyboardButtonData("▶️", "rev:next"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✍️ Write a review", "rev:write"),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// openReviews fetches the public review list and starts the carousel for
// this chat, replacing any carousel already running there.
func (b *Bot) openReviews(ctx context.Context, chatID int64) {
	s := b.getSession(chatID)
	s.stopCarousel()

	reviews, err := b.reviewAPI.ListReviews(ctx)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load reviews")
		b.sendMessage(chatID, "Failed to load reviews.")
		return
	}

	chunks := chunkReviews(reviews, b.config.Bot.CarouselChunk)

	text := renderReviewChunk(chunks, 0)
	msg, err := b.tgService.SendWithInlineKeyboard(chatID, text, reviewKeyboard(len(chunks) > 1))
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reviews carousel")
		return
	}

	c := &carousel{
		chunks:    chunks,
		messageID: msg.MessageID,
		interval:  time.Duration(b.config.Bot.CarouselInterval) * time.Second,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.carousel = c
	s.mu.Unlock()

	if len(chunks) > 1 {
		go b.runCarousel(chatID, c)
	}
}

// runCarousel advances the message on a fixed interval until stopped. Ticks
// inside a manual-navigation pause are skipped, not queued.
func (b *Bot) runCarousel(chatID int64, c *carousel) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if time.Now().Before(c.pauseUntil) {
				c.mu.Unlock()
				continue
			}
			c.index = (c.index + 1) % len(c.chunks)
			text := renderReviewChunk(c.chunks, c.index)
			messageID := c.messageID
			hasNav := len(c.chunks) > 1
			c.mu.Unlock()

			keyboard := reviewKeyboard(hasNav)
			if _, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard); err != nil {
				b.logger.Debug().Err(err).Int64("chat_id", chatID).Msg("Carousel edit failed, stopping rotation")
				return
			}
		}
	}
}

// navigateReviews handles the manual prev/next buttons and pauses the
// rotation for two intervals.
func (b *Bot) navigateReviews(chatID int64, direction string) {
	s := b.getSession(chatID)

	s.mu.Lock()
	c := s.carousel
	s.mu.Unlock()
	if c == nil {
		return
	}

	c.mu.Lock()
	if len(c.chunks) == 0 {
		c.mu.Unlock()
		return
	}
	if direction == "next" {
		c.index = (c.index + 1) % len(c.chunks)
	} else {
		c.index = (c.index - 1 + len(c.chunks)) % len(c.chunks)
	}
	c.pauseUntil = time.Now().Add(2 * c.interval)
	text := renderReviewChunk(c.chunks, c.index)
	messageID := c.messageID
	hasNav := len(c.chunks) > 1
	c.mu.Unlock()

	keyboard := reviewKeyboard(hasNav)
	if _, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to navigate reviews")
	}
}

// startReviewDialog opens the submission form. The auth gate fires here, at
// the moment of the submit attempt, with a fixed message and no backend
// call.
func (b *Bot) startReviewDialog(ctx context.Context, chatID int64) {
	if !b.auth.IsAuthenticated(ctx, chatID) {
		b.sendMessage(chatID, msgLoginRequired)
		return
	}

	services, err := b.reviewAPI.PublicServices(ctx)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load services for review form")
		b.sendMessage(chatID, msgGenericError)
		return
	}

	if err := b.stateService.SetDialogState(ctx, chatID, stepReviewService, map[string]interface{}{}); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to open review form")
		b.sendMessage(chatID, msgGenericError)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(svc.Name, fmt.Sprintf("rsvc:%d", svc.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", "cancel"),
	))
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Which service are you reviewing?", tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send review service picker")
	}
}

// handleReviewCallback routes the review form's buttons by step.
func (b *Bot) handleReviewCallback(ctx context.Context, chatID int64, state *models.DialogState, action, arg string) {
	switch state.CurrentStep {
	case stepReviewService:
		if action == "rsvc" {
			id, _ := strconv.ParseInt(arg, 10, 64)
			b.advanceDialog(ctx, chatID, state, "service_id", id, stepReviewRating)
			b.sendStarPicker(chatID)
		}
	case stepReviewRating:
		if action == "star" {
			rating, _ := strconv.Atoi(arg)
			if rating < 1 || rating > 5 {
				return
			}
			b.advanceDialog(ctx, chatID, state, "rating", rating, stepReviewComment)
			b.sendMessage(chatID, fmt.Sprintf("%s\n\nNow tell us a few words about it:", starBar(rating)))
		}
	}
}

func (b *Bot) sendStarPicker(chatID int64) {
	var row []tgbotapi.InlineKeyboardButton
	for i := 1; i <= 5; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(strings.Repeat("⭐", i), fmt.Sprintf("star:%d", i)))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Your rating:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send star picker")
	}
}

// handleReviewComment takes the free-text comment and submits the review.
// On success the form resets and the carousel reloads; on failure the form
// stays so the comment is not lost.
func (b *Bot) handleReviewComment(ctx context.Context, chatID int64, state *models.DialogState, comment string) {
	serviceID := state.GetInt64("service_id")
	rating := state.GetInt("rating")

	if err := b.reviewAPI.SubmitReview(ctx, serviceID, rating, comment); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Review submission failed")
		b.sendMessage(chatID, "⚠️ Failed to submit your review. Please try again.")
		return
	}

	if err := b.stateService.ClearDialogState(ctx, chatID); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to reset review form")
	}

	if b.metrics != nil {
		b.metrics.ReviewsSubmitted.Inc()
	}
	_ = b.eventBus.PublishJSON(events.EventReviewSubmitted, map[string]interface{}{
		"service_id": serviceID,
		"rating":     rating,
		"chat_id":    chatID,
	})

	b.sendMessage(chatID, "✅ Thank you! Your review has been submitted.")
	b.openReviews(ctx, chatID)
}
