package models

// Canonical booking status vocabulary. Filter and display logic must not use
// any spelling outside this set ("canceled" in particular).
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPaid      = "paid"
	StatusUnpaid    = "unpaid"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// AllStatuses lists the canonical statuses in dashboard order.
var AllStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusPaid,
	StatusUnpaid,
	StatusCompleted,
	StatusCancelled,
}

// IsValidStatus reports whether s belongs to the canonical vocabulary.
func IsValidStatus(s string) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// DefaultRedisTTL время жизни состояния диалога в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultBookingsPageSize строк таблицы на страницу
	DefaultBookingsPageSize = 5

	// DebounceWindowMillis окно дебаунса для поискового фильтра
	DebounceWindowMillis = 500

	// CarouselChunkSize количество отзывов в одной карточке карусели
	CarouselChunkSize = 3

	// CarouselIntervalSeconds интервал автопрокрутки карусели
	CarouselIntervalSeconds = 5

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// ReferenceCacheTTL время жизни кэша публичных справочников
	ReferenceCacheTTL = 5 * 60 // 5 минут в секундах
)
