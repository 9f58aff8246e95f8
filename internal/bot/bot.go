// Package bot is the operator-facing surface of the desk: status pages,
// booking dialogs, the public reviews carousel and the export flow, all
// rendered over Telegram.
package bot

import (
	"context"
	"os"
	"sync"
	"time"

	"mediadesk/internal/config"
	"mediadesk/internal/domain"
	"mediadesk/internal/events"
	"mediadesk/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tgService    domain.TelegramService
	config       *config.Config
	stateService domain.StateManager
	bookingAPI   domain.BookingAPI
	reviewAPI    domain.ReviewAPI
	actions      *service.BookingActions
	journal      domain.ActionJournal
	eventBus     domain.EventPublisher
	auth         domain.Authenticator
	metrics      *Metrics
	logger       *zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*pageSession
}

func NewBot(
	tgService domain.TelegramService,
	cfg *config.Config,
	stateService domain.StateManager,
	bookingAPI domain.BookingAPI,
	reviewAPI domain.ReviewAPI,
	actions *service.BookingActions,
	journal domain.ActionJournal,
	eventBus domain.EventPublisher,
	auth domain.Authenticator,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService:    tgService,
		config:       cfg,
		stateService: stateService,
		bookingAPI:   bookingAPI,
		reviewAPI:    reviewAPI,
		actions:      actions,
		journal:      journal,
		eventBus:     eventBus,
		auth:         auth,
		metrics:      metrics,
		logger:       logger,
		sessions:     make(map[int64]*pageSession),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			b.stopAllCarousels()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		if update.Message != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil {
			userID = update.CallbackQuery.From.ID
		}

		if userID == 0 {
			return
		}

		if b.isBlacklisted(userID) {
			return
		}

		if !b.isManager(userID) {
			allowed, err := b.stateService.CheckRateLimit(updateCtx, userID, b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
			if err != nil {
				b.logger.Error().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
			} else if !allowed {
				b.logger.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
				if update.Message != nil {
					b.sendMessage(update.Message.Chat.ID, "You are sending messages too fast. Please slow down.")
				}
				return
			}
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		if update.Message != nil {
			b.handleMessage(updateCtx, update)
		}
	})
}

func (b *Bot) withRecovery(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	fn()
}

func (b *Bot) stopAllCarousels() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sessions {
		s.stopCarousel()
	}
}
