package bot

import (
	"sync"

	"mediadesk/internal/models"
)

// pageSession is per-chat view state that never needs to survive a restart:
// the currently rendered list, expanded rows, in-flight generation counter,
// search debounce and the reviews carousel. Durable dialog state lives in
// the state service instead.
type pageSession struct {
	mu sync.Mutex

	status    string // "" renders the all-statuses page
	page      int    // 1-based
	pageSize  int
	total     int
	bookings  []models.Booking
	loading   bool
	busy      bool
	expanded  map[int64]bool
	messageID int

	// Каждая загрузка страницы получает новый номер поколения; ответы
	// устаревших поколений отбрасываются.
	generation uint64

	filterUsername string
	filterService  string
	filterLocation string
	debounce       *debouncer

	carousel *carousel
}

func (b *Bot) getSession(chatID int64) *pageSession {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[chatID]
	if !ok {
		s = &pageSession{
			page:     1,
			pageSize: b.config.Bot.PageSize,
			expanded: make(map[int64]bool),
		}
		b.sessions[chatID] = s
	}
	return s
}

// nextGeneration invalidates every response still in flight for this page.
func (s *pageSession) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *pageSession) isCurrentGeneration(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

func (s *pageSession) setBusy(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = v
}

func (s *pageSession) isBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *pageSession) snapshot() (status string, page, pageSize int, bookings []models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.page, s.pageSize, s.bookings
}

func (s *pageSession) stopCarousel() {
	s.mu.Lock()
	c := s.carousel
	s.carousel = nil
	s.mu.Unlock()
	if c != nil {
		c.stop()
	}
}
