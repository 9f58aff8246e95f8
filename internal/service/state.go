package service

import (
	"context"
	"time"

	"mediadesk/internal/domain"
	"mediadesk/internal/models"

	"github.com/rs/zerolog"
)

// StateService is the service-level view over the dialog-state repository.
type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, logger *zerolog.Logger) *StateService {
	return &StateService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

func (s *StateService) GetDialogState(ctx context.Context, chatID int64) (*models.DialogState, error) {
	state, err := s.stateRepo.GetState(ctx, chatID)
	if err != nil {
		s.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to get dialog state")
		return nil, err
	}

	return state, nil
}

func (s *StateService) SetDialogState(ctx context.Context, chatID int64, step string, data map[string]interface{}) error {
	state := &models.DialogState{
		ChatID:      chatID,
		CurrentStep: step,
		Data:        data,
	}
	return s.stateRepo.SetState(ctx, state)
}

func (s *StateService) ClearDialogState(ctx context.Context, chatID int64) error {
	return s.stateRepo.ClearState(ctx, chatID)
}

func (s *StateService) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	return s.stateRepo.CheckRateLimit(ctx, chatID, limit, window)
}
