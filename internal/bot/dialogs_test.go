package bot

import (
	"context"
	"testing"

	"mediadesk/internal/backend"
	"mediadesk/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadFromState(t *testing.T) {
	// числа приходят как float64 после JSON round-trip
	state := &models.DialogState{Data: map[string]interface{}{
		"user_id":        float64(1),
		"service_id":     float64(2),
		"event_date":     "2026-09-01",
		"event_time":     "14:00:00",
		"event_location": "Moscow",
		"status":         models.StatusPaid,
	}}

	p := payloadFromState(state)
	assert.Equal(t, int64(1), p.UserID)
	assert.Equal(t, int64(2), p.ServiceID)
	assert.Equal(t, "2026-09-01", p.EventDate)
	assert.Equal(t, "14:00:00", p.EventTime)
	assert.Equal(t, "Moscow", p.EventLocation)
	assert.Equal(t, models.StatusPaid, p.Status)
}

func TestLookupNameAfterJSONRoundTrip(t *testing.T) {
	state := &models.DialogState{Data: map[string]interface{}{
		"user_names": map[string]interface{}{"1": "anna"},
	}}
	assert.Equal(t, "anna", lookupName(state, "user_names", 1))
	assert.Equal(t, "", lookupName(state, "user_names", 2))
	assert.Equal(t, "", lookupName(state, "missing", 1))
}

func TestStartUpdateDialogUnknownIDLeavesDialogClosed(t *testing.T) {
	f := newTestBot(t)

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.bookings = makeBookings(3)
	s.mu.Unlock()

	ctx := context.Background()
	f.bot.startUpdateDialog(ctx, testManagerID, 99)

	state, err := f.bot.stateService.GetDialogState(ctx, testManagerID)
	require.NoError(t, err)
	if state != nil {
		assert.Empty(t, state.CurrentStep)
	}
	assert.Empty(t, f.tg.sentTexts())
}

func TestStartUpdateDialogPrepopulatesFields(t *testing.T) {
	f := newTestBot(t)

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.bookings = makeBookings(3)
	s.mu.Unlock()

	ctx := context.Background()
	f.bot.startUpdateDialog(ctx, testManagerID, 2)

	state, err := f.bot.stateService.GetDialogState(ctx, testManagerID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, stepUpdateMenu, state.CurrentStep)
	assert.Equal(t, int64(2), state.GetInt64("booking_id"))
	assert.Equal(t, "2026-09-01", state.GetString("event_date"))
	assert.Equal(t, models.StatusPending, state.GetString("status"))
}

func TestCreateDateValidation(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	state := &models.DialogState{ChatID: testManagerID, CurrentStep: stepCreateDate, Data: map[string]interface{}{}}
	require.NoError(t, f.bot.stateService.SetDialogState(ctx, testManagerID, state.CurrentStep, state.Data))

	f.bot.handleDialogText(ctx, testManagerID, state, "01.09.2026")

	sent := f.tg.sentTexts()
	require.Len(t, sent, 1)
	assert.Equal(t, msgInvalidDate, sent[0])

	// шаг не сдвинулся
	got, err := f.bot.stateService.GetDialogState(ctx, testManagerID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stepCreateDate, got.CurrentStep)
}

func TestCreateTimeAppendsSeconds(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	state := &models.DialogState{ChatID: testManagerID, CurrentStep: stepCreateTime, Data: map[string]interface{}{}}
	require.NoError(t, f.bot.stateService.SetDialogState(ctx, testManagerID, state.CurrentStep, state.Data))

	f.bot.handleDialogText(ctx, testManagerID, state, "14:30")

	assert.Equal(t, "14:30:00", state.GetString("event_time"))
	assert.Equal(t, stepCreateLocation, state.CurrentStep)
}

func TestSubmitDeleteSplicesListPreservingOrder(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(4), Count: 4},
	}

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.bookings = makeBookings(4)
	s.total = 4
	s.mu.Unlock()

	ctx := context.Background()
	state := &models.DialogState{ChatID: testManagerID, CurrentStep: stepDeleteConfirm,
		Data: map[string]interface{}{"booking_id": int64(2)}}

	f.bot.submitDelete(ctx, testManagerID, state)

	assert.Equal(t, []int64{2}, f.bookings.deleted)

	_, _, _, list := s.snapshot()
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
	assert.Equal(t, int64(4), list[2].ID)

	// busy flag released
	assert.False(t, s.isBusy())
}

func TestSubmitDeleteFailureLeavesListUntouched(t *testing.T) {
	f := newTestBot(t)
	f.bookings.err = assert.AnError

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.bookings = makeBookings(3)
	s.mu.Unlock()

	ctx := context.Background()
	state := &models.DialogState{ChatID: testManagerID, CurrentStep: stepDeleteConfirm,
		Data: map[string]interface{}{"booking_id": int64(2)}}

	f.bot.submitDelete(ctx, testManagerID, state)

	_, _, _, list := s.snapshot()
	assert.Len(t, list, 3)
	assert.False(t, s.isBusy())
}

func TestSubmitUpdateSendsPayloadAndRefreshes(t *testing.T) {
	f := newTestBot(t)
	f.bookings.pages = []*backend.BookingPage{
		{Results: makeBookings(2), Count: 2},
	}

	s := f.bot.getSession(testManagerID)
	s.mu.Lock()
	s.status = models.StatusPending
	s.mu.Unlock()

	ctx := context.Background()
	state := &models.DialogState{ChatID: testManagerID, CurrentStep: stepUpdateMenu,
		Data: map[string]interface{}{
			"booking_id": int64(1),
			"user_id":    int64(1),
			"service_id": int64(2),
			"event_date": "2026-09-05",
			"status":     models.StatusPaid,
		}}

	f.bot.submitUpdate(ctx, testManagerID, state)

	assert.Equal(t, []int64{1}, f.bookings.updated)
	// full refetch after a successful update
	assert.Equal(t, 1, f.bookings.queryCount())
	assert.False(t, s.isBusy())
}

func TestSubmitWhileBusyIsIgnored(t *testing.T) {
	f := newTestBot(t)

	s := f.bot.getSession(testManagerID)
	s.setBusy(true)

	ctx := context.Background()
	state := &models.DialogState{ChatID: testManagerID, CurrentStep: stepDeleteConfirm,
		Data: map[string]interface{}{"booking_id": int64(1)}}

	f.bot.submitDelete(ctx, testManagerID, state)
	f.bot.submitUpdate(ctx, testManagerID, state)
	f.bot.submitCreate(ctx, testManagerID, state)

	assert.Empty(t, f.bookings.deleted)
	assert.Empty(t, f.bookings.updated)
	assert.Empty(t, f.bookings.created)
}

func TestSubmitCreateFailureKeepsDialogOpen(t *testing.T) {
	f := newTestBot(t)
	f.bookings.err = assert.AnError

	ctx := context.Background()
	data := map[string]interface{}{
		"user_id":    int64(1),
		"service_id": int64(2),
		"event_date": "2026-09-01",
		"status":     models.StatusPending,
	}
	state := &models.DialogState{ChatID: testManagerID, CurrentStep: stepCreateConfirm, Data: data}
	require.NoError(t, f.bot.stateService.SetDialogState(ctx, testManagerID, state.CurrentStep, data))

	f.bot.submitCreate(ctx, testManagerID, state)

	// ошибка показана внутри диалога, состояние не очищено
	got, err := f.bot.stateService.GetDialogState(ctx, testManagerID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stepCreateConfirm, got.CurrentStep)

	sent := f.tg.sentTexts()
	require.NotEmpty(t, sent)
	assert.Contains(t, sent[len(sent)-1], "Failed to create booking")
}

func TestBookingsMutatedCountsOnlySuccesses(t *testing.T) {
	f := newTestBot(t)
	f.bookings.err = assert.AnError

	ctx := context.Background()
	updateState := &models.DialogState{ChatID: testManagerID, CurrentStep: stepUpdateMenu,
		Data: map[string]interface{}{
			"booking_id": int64(1),
			"user_id":    int64(1),
			"service_id": int64(2),
			"event_date": "2026-09-05",
			"status":     models.StatusPaid,
		}}
	f.bot.submitUpdate(ctx, testManagerID, updateState)

	deleteState := &models.DialogState{ChatID: testManagerID, CurrentStep: stepDeleteConfirm,
		Data: map[string]interface{}{"booking_id": int64(1)}}
	f.bot.submitDelete(ctx, testManagerID, deleteState)

	// неудачные мутации не попадают в счётчик
	assert.Zero(t, testutil.ToFloat64(f.bot.metrics.BookingsMutated.WithLabelValues(models.ActionUpdate)))
	assert.Zero(t, testutil.ToFloat64(f.bot.metrics.BookingsMutated.WithLabelValues(models.ActionDelete)))

	f.bookings.err = nil
	f.bot.submitUpdate(ctx, testManagerID, updateState)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(f.bot.metrics.BookingsMutated.WithLabelValues(models.ActionUpdate)))
}

func TestCreateDialogFetchesReferenceDataOnce(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	f.bot.startCreateDialog(ctx, testManagerID)

	users, services := f.bookings.refFetches()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, services)

	state, err := f.bot.stateService.GetDialogState(ctx, testManagerID)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Equal(t, stepCreateUser, state.CurrentStep)

	// выбор клиента не тянет справочники повторно
	f.bot.handleDialogCallback(ctx, testManagerID, state, "usr", "1")

	users, services = f.bookings.refFetches()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, services)

	sent := f.tg.sentTexts()
	require.NotEmpty(t, sent)
	assert.Equal(t, "Pick a service:", sent[len(sent)-1])
}

func TestServicesFromStateSurvivesJSONRoundTrip(t *testing.T) {
	state := &models.DialogState{Data: map[string]interface{}{
		"service_order": []interface{}{float64(2), float64(7)},
		"service_names": map[string]interface{}{"2": "Wedding", "7": "Portrait"},
	}}

	services := servicesFromState(state)
	require.Len(t, services, 2)
	assert.Equal(t, models.Service{ID: 2, Name: "Wedding"}, services[0])
	assert.Equal(t, models.Service{ID: 7, Name: "Portrait"}, services[1])
}
