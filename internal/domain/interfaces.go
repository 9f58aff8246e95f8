package domain

import (
	"context"
	"time"

	"mediadesk/internal/backend"
	"mediadesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BookingAPI is the admin-dashboard surface of the remote backend.
type BookingAPI interface {
	ListBookings(ctx context.Context, q backend.BookingQuery) (*backend.BookingPage, error)
	ExportBookings(ctx context.Context, q backend.BookingQuery) ([]models.Booking, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	CreateBooking(ctx context.Context, payload models.BookingPayload) error
	UpdateBooking(ctx context.Context, id int64, payload models.BookingPayload) error
	DeleteBooking(ctx context.Context, id int64) error
}

// ReviewAPI is the public reviews surface of the remote backend.
type ReviewAPI interface {
	ListReviews(ctx context.Context) ([]models.Review, error)
	PublicServices(ctx context.Context) ([]models.Service, error)
	SubmitReview(ctx context.Context, serviceID int64, rating int, comment string) error
}

// StateRepository persists per-chat dialog state.
type StateRepository interface {
	GetState(ctx context.Context, chatID int64) (*models.DialogState, error)
	SetState(ctx context.Context, state *models.DialogState) error
	ClearState(ctx context.Context, chatID int64) error
	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

// StateManager is the service-level view over dialog state.
type StateManager interface {
	GetDialogState(ctx context.Context, chatID int64) (*models.DialogState, error)
	SetDialogState(ctx context.Context, chatID int64, step string, data map[string]interface{}) error
	ClearDialogState(ctx context.Context, chatID int64) error
	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

// Authenticator answers whether a chat belongs to an authenticated viewer.
// Authentication itself is an external concern.
type Authenticator interface {
	IsAuthenticated(ctx context.Context, chatID int64) bool
}

// EventPublisher publishes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ActionJournal records admin actions locally for traceability.
type ActionJournal interface {
	Record(ctx context.Context, entry models.JournalEntry) error
	Recent(ctx context.Context, limit int) ([]models.JournalEntry, error)
}

// SheetsMirror replaces the mirrored bookings sheet wholesale.
type SheetsMirror interface {
	ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error
}

// TelegramService wraps the bot API surface the front-end uses.
type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendDocument(chatID int64, path string) error
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
