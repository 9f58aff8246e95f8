package repository

import (
	"context"
	"sync/atomic"
	"time"

	"mediadesk/internal/domain"
	"mediadesk/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStateRepository serves dialog state from the primary store and
// silently degrades to the fallback when the primary errors, probing the
// primary again after a cool-down.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) GetState(ctx context.Context, chatID int64) (*models.DialogState, error) {
	if !r.isDown.Load() {
		state, err := r.primary.GetState(ctx, chatID)
		if err == nil {
			return state, nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		state, err := r.primary.GetState(ctx, chatID)
		if err == nil {
			r.isDown.Store(false)
			return state, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetState(ctx, chatID)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.DialogState) error {
	if !r.isDown.Load() {
		err := r.primary.SetState(ctx, state)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetState(ctx, state)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, chatID int64) error {
	if !r.isDown.Load() {
		err := r.primary.ClearState(ctx, chatID)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.ClearState(ctx, chatID)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, chatID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, chatID, limit, window)
}
