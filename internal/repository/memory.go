package repository

import (
	"context"
	"sync"
	"time"

	"mediadesk/internal/models"
)

type MemoryStateRepository struct {
	states     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl: ttl,
	}
}

func (r *MemoryStateRepository) GetState(ctx context.Context, chatID int64) (*models.DialogState, error) {
	val, ok := r.states.Load(chatID)
	if !ok {
		return nil, nil
	}
	return val.(*models.DialogState), nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.DialogState) error {
	r.states.Store(state.ChatID, state)
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, chatID int64) error {
	r.states.Delete(chatID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(chatID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(chatID, entry)
	return entry.count <= limit, nil
}
