// Package worker refreshes the Sheets mirror in the background so booking
// mutations never wait on Google.
package worker

import (
	"context"
	"errors"
	"time"

	"mediadesk/internal/backend"
	"mediadesk/internal/domain"
	"mediadesk/internal/models"

	"github.com/rs/zerolog"
)

// RetryPolicy controls how failed mirror refreshes back off before the
// worker gives up.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns the pause before the given attempt (1-based):
// InitialDelay multiplied by BackoffFactor per completed attempt,
// clamped at MaxDelay.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	delay := p.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 2
	}
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * factor)
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return delay
}

// SyncWorker coalesces mirror-refresh requests and applies them with
// retry/backoff. Multiple requests arriving while a refresh is running
// collapse into a single pending one.
type SyncWorker struct {
	api         domain.BookingAPI
	mirror      domain.SheetsMirror
	retryPolicy RetryPolicy
	pending     chan struct{}
	logger      *zerolog.Logger
}

// NewSyncWorker builds a worker with sane retry defaults.
func NewSyncWorker(api domain.BookingAPI, mirror domain.SheetsMirror, retry RetryPolicy, logger *zerolog.Logger) *SyncWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SyncWorker{
		api:         api,
		mirror:      mirror,
		retryPolicy: retry,
		pending:     make(chan struct{}, 1),
		logger:      logger,
	}
}

// EnqueueRefresh schedules a mirror refresh. Never blocks: a refresh
// already pending absorbs the request.
func (w *SyncWorker) EnqueueRefresh(ctx context.Context) error {
	if w == nil {
		return nil
	}
	select {
	case w.pending <- struct{}{}:
	default:
	}
	return nil
}

// Start consumes refresh requests until the context is cancelled.
func (w *SyncWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.pending:
			if err := w.refresh(ctx); err != nil {
				w.logger.Error().Err(err).Msg("sheets mirror refresh gave up")
			}
		}
	}
}

func (w *SyncWorker) refresh(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.refreshOnce(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) {
			return lastErr
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("retry_in", delay).Msg("sheets mirror refresh failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (w *SyncWorker) refreshOnce(ctx context.Context) error {
	bookings, err := w.api.ExportBookings(ctx, backend.BookingQuery{Status: models.StatusCompleted})
	if err != nil {
		return err
	}
	return w.mirror.ReplaceBookingsSheet(ctx, bookings)
}
