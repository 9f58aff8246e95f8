package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"mediadesk/internal/backend"
	"mediadesk/internal/config"
	"mediadesk/internal/events"
	"mediadesk/internal/models"
	"mediadesk/internal/repository"
	"mediadesk/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeTelegram records outgoing traffic instead of talking to Telegram.
type fakeTelegram struct {
	mu     sync.Mutex
	sent   []string
	edits  []string
	docs   []string
	nextID int
}

func (f *fakeTelegram) record(dst *[]string, text string) tgbotapi.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	*dst = append(*dst, text)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	return f.record(&f.sent, text), nil
}

func (f *fakeTelegram) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return f.record(&f.sent, text), nil
}

func (f *fakeTelegram) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return f.record(&f.edits, text), nil
}

func (f *fakeTelegram) SendDocument(chatID int64, path string) error {
	f.record(&f.docs, path)
	return nil
}

func (f *fakeTelegram) AnswerCallback(callbackID, text string) error { return nil }

func (f *fakeTelegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTelegram) GetSelf() tgbotapi.User { return tgbotapi.User{UserName: "testbot"} }

func (f *fakeTelegram) StopReceivingUpdates() {}

func (f *fakeTelegram) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeTelegram) editTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.edits...)
}

// stubBookingAPI serves canned pages and records the queries it saw.
type stubBookingAPI struct {
	mu      sync.Mutex
	queries []backend.BookingQuery
	pages   []*backend.BookingPage // consumed in order; last one repeats
	delays  []time.Duration
	err     error
	created []models.BookingPayload
	updated []int64
	deleted []int64

	userFetches    int
	serviceFetches int
}

func (s *stubBookingAPI) ListBookings(ctx context.Context, q backend.BookingQuery) (*backend.BookingPage, error) {
	s.mu.Lock()
	call := len(s.queries)
	s.queries = append(s.queries, q)
	var delay time.Duration
	if call < len(s.delays) {
		delay = s.delays[call]
	}
	page := &backend.BookingPage{}
	if len(s.pages) > 0 {
		if call < len(s.pages) {
			page = s.pages[call]
		} else {
			page = s.pages[len(s.pages)-1]
		}
	}
	err := s.err
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return page, err
}

func (s *stubBookingAPI) ExportBookings(ctx context.Context, q backend.BookingQuery) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.pages) > 0 {
		return s.pages[0].Results, nil
	}
	return nil, nil
}

func (s *stubBookingAPI) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	s.userFetches++
	s.mu.Unlock()
	return []models.User{{ID: 1, Username: "anna"}}, nil
}

func (s *stubBookingAPI) ListServices(ctx context.Context) ([]models.Service, error) {
	s.mu.Lock()
	s.serviceFetches++
	s.mu.Unlock()
	return []models.Service{{ID: 2, Name: "Wedding"}}, nil
}

func (s *stubBookingAPI) refFetches() (users, services int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userFetches, s.serviceFetches
}

func (s *stubBookingAPI) CreateBooking(ctx context.Context, payload models.BookingPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, payload)
	return s.err
}

func (s *stubBookingAPI) UpdateBooking(ctx context.Context, id int64, payload models.BookingPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, id)
	return s.err
}

func (s *stubBookingAPI) DeleteBooking(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubBookingAPI) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *stubBookingAPI) lastQuery() backend.BookingQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return backend.BookingQuery{}
	}
	return s.queries[len(s.queries)-1]
}

// stubReviewAPI serves a fixed review list and counts submissions.
type stubReviewAPI struct {
	mu       sync.Mutex
	reviews  []models.Review
	listed   int
	submits  int
	services []models.Service
	err      error
}

func (s *stubReviewAPI) ListReviews(ctx context.Context) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed++
	return s.reviews, s.err
}

func (s *stubReviewAPI) PublicServices(ctx context.Context) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.services, s.err
}

func (s *stubReviewAPI) SubmitReview(ctx context.Context, serviceID int64, rating int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits++
	return s.err
}

func (s *stubReviewAPI) submitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submits
}

type fixture struct {
	bot      *Bot
	tg       *fakeTelegram
	bookings *stubBookingAPI
	reviews  *stubReviewAPI
}

const (
	testManagerID = int64(100)
	testViewerID  = int64(200)
)

func newTestBot(t *testing.T) *fixture {
	t.Helper()

	logger := zerolog.Nop()

	cfg := &config.Config{}
	cfg.Managers = []int64{testManagerID}
	cfg.Bot.PageSize = 5
	cfg.Bot.DebounceMillis = 30
	cfg.Bot.CarouselChunk = 3
	cfg.Bot.CarouselInterval = 1
	cfg.Bot.RateLimitMessages = 100
	cfg.Bot.RateLimitWindow = 60
	cfg.Exports.Path = t.TempDir()

	tg := &fakeTelegram{}
	bookings := &stubBookingAPI{}
	reviews := &stubReviewAPI{services: []models.Service{{ID: 2, Name: "Wedding"}}}

	repo := repository.NewMemoryStateRepository(time.Hour)
	states := service.NewStateService(repo, &logger)
	bus := events.NewEventBus()
	actions := service.NewBookingActions(bookings, nil, bus, &logger)
	auth := service.NewStaticAuthenticator([]int64{testManagerID})
	metrics := NewMetrics(prometheus.NewRegistry())

	b, err := NewBot(tg, cfg, states, bookings, reviews, actions, nil, bus, auth, metrics, &logger)
	require.NoError(t, err)
	t.Cleanup(b.stopAllCarousels)

	return &fixture{bot: b, tg: tg, bookings: bookings, reviews: reviews}
}

func makeBookings(n int) []models.Booking {
	out := make([]models.Booking, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Booking{
			ID:        int64(i),
			User:      &models.UserRef{ID: int64(i), Username: fmt.Sprintf("user%d", i)},
			Service:   &models.ServiceRef{ID: 2, Name: "Wedding"},
			EventDate: "2026-09-01",
			Status:    models.StatusPending,
		})
	}
	return out
}
