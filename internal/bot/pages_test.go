package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"mediadesk/internal/backend"
	"mediadesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStatusPageLoadsFirstPage(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(3), Count: 3},
	}

	f.bot.openStatusPage(context.Background(), testManagerID, models.StatusPending)

	require.Equal(t, 1, f.bookings.queryCount())
	q := f.bookings.lastQuery()
	assert.Equal(t, models.StatusPending, q.Status)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 5, q.PageSize)

	s := f.bot.getSession(testManagerID)
	_, _, _, list := s.snapshot()
	assert.Len(t, list, 3)
}

func TestStaleResponseIsDropped(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(5), Count: 25}, // slow page 1
		{Results: makeBookings(2), Count: 25}, // fast page 2
	}
	f.bookings.delays = []time.Duration{150 * time.Millisecond, 0}

	s := f.bot.getSession(testManagerID)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.bot.openStatusPage(context.Background(), testManagerID, models.StatusPending)
	}()

	// пока первый запрос висит, пользователь уходит на вторую страницу
	time.Sleep(30 * time.Millisecond)
	f.bot.gotoPage(context.Background(), testManagerID, models.StatusPending, 2)
	wg.Wait()

	// медленный ответ первой страницы не должен затереть вторую
	_, page, _, list := s.snapshot()
	assert.Equal(t, 2, page)
	assert.Len(t, list, 2)
}

func TestToggleRowRerendersWithoutRefetch(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(2), Count: 2},
	}

	f.bot.openStatusPage(context.Background(), testManagerID, models.StatusPending)
	before := f.bookings.queryCount()

	f.bot.toggleRow(testManagerID, 1)

	assert.Equal(t, before, f.bookings.queryCount())

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	expanded := s.expanded[1]
	s.mu.Unlock()
	assert.True(t, expanded)

	f.bot.toggleRow(testManagerID, 1)
	s.mu.Lock()
	expanded = s.expanded[1]
	s.mu.Unlock()
	assert.False(t, expanded)
}

func TestCyclePageSizeResetsToFirstPage(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(5), Count: 40},
	}

	f.bot.openStatusPage(context.Background(), testManagerID, models.StatusCompleted)
	f.bot.gotoPage(context.Background(), testManagerID, models.StatusCompleted, 3)

	f.bot.cyclePageSize(context.Background(), testManagerID)

	q := f.bookings.lastQuery()
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, 1, q.Page)
}

func TestClearFiltersResetsFieldsAndPage(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(1), Count: 1},
	}

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.status = models.StatusCompleted
	s.page = 4
	s.filterUsername = "anna"
	s.filterService = "wedding"
	s.filterLocation = "moscow"
	s.mu.Unlock()

	f.bot.clearFilters(context.Background(), testManagerID)

	q := f.bookings.lastQuery()
	assert.Equal(t, 1, q.Page)
	assert.Empty(t, q.Username)
	assert.Empty(t, q.Service)
	assert.Empty(t, q.Location)
}

func TestSearchInputDebouncesBurst(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(1), Count: 1},
	}

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.status = models.StatusCompleted
	s.mu.Unlock()

	ctx := context.Background()
	for _, text := range []string{"user a", "user an", "user anna"} {
		f.bot.handleSearchInput(ctx, testManagerID, text)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return f.bookings.queryCount() == 1
	}, time.Second, 10*time.Millisecond)

	// окно дебаунса прошло, других запросов не появилось
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, f.bookings.queryCount())
	assert.Equal(t, "anna", f.bookings.lastQuery().Username)
}

func TestSearchNowBypassesDebounce(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(1), Count: 1},
	}

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.status = models.StatusCompleted
	s.mu.Unlock()

	ctx := context.Background()
	f.bot.handleSearchInput(ctx, testManagerID, "service wedding")
	f.bot.searchNow(ctx, testManagerID)

	assert.Equal(t, 1, f.bookings.queryCount())
	assert.Equal(t, "wedding", f.bookings.lastQuery().Service)

	// отложенный таймер отменён, второго запроса не будет
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, f.bookings.queryCount())
}
