package service

import (
	"context"
	"io"
	"testing"
	"time"

	"mediadesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStateService() *StateService {
	logger := zerolog.New(io.Discard)
	return NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)
}

func TestStateServiceRoundTrip(t *testing.T) {
	svc := newStateService()
	ctx := context.Background()

	err := svc.SetDialogState(ctx, 5, "update_confirm", map[string]interface{}{"booking_id": int64(9)})
	require.NoError(t, err)

	state, err := svc.GetDialogState(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "update_confirm", state.CurrentStep)
	assert.Equal(t, int64(9), state.GetInt64("booking_id"))
}

func TestStateServiceClear(t *testing.T) {
	svc := newStateService()
	ctx := context.Background()

	require.NoError(t, svc.SetDialogState(ctx, 7, "any", nil))
	require.NoError(t, svc.ClearDialogState(ctx, 7))

	state, err := svc.GetDialogState(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, state)
}
