package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"mediadesk/internal/format"
	"mediadesk/internal/models"
	"mediadesk/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Dialog steps. Booking dialogs keep their progress in the state service;
// review steps live in reviews.go.
const (
	stepCreateUser     = "create_user"
	stepCreateService  = "create_service"
	stepCreateDate     = "create_date"
	stepCreateTime     = "create_time"
	stepCreateLocation = "create_location"
	stepCreateStatus   = "create_status"
	stepCreateConfirm  = "create_confirm"

	stepUpdateMenu     = "update_menu"
	stepUpdateUser     = "update_user"
	stepUpdateService  = "update_service"
	stepUpdateDate     = "update_date"
	stepUpdateTime     = "update_time"
	stepUpdateLocation = "update_location"
	stepUpdateStatus   = "update_status"

	stepDeleteConfirm = "delete_confirm"

	stepSearchInput = "search_input"

	stepReviewService = "review_service"
	stepReviewRating  = "review_rating"
	stepReviewComment = "review_comment"
)

// startCreateDialog opens the create form. Users and services are fetched
// fresh on every open so stale reference data never seeds a form.
func (b *Bot) startCreateDialog(ctx context.Context, chatID int64) {
	s := b.getSession(chatID)
	if s.isBusy() {
		return
	}

	users, services, ok := b.fetchReferenceData(ctx, chatID)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"user_names":    userNames(users),
		"service_names": serviceNames(services),
		"service_order": serviceOrder(services),
	}
	if err := b.stateService.SetDialogState(ctx, chatID, stepCreateUser, data); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to open create dialog")
		b.sendMessage(chatID, msgGenericError)
		return
	}

	b.sendUserPicker(chatID, users, "New booking — pick a customer:")
}

// startUpdateDialog opens the edit form pre-populated from the row the
// operator clicked. The id is resolved against the page's local list; a
// miss means the row is gone and no dialog opens.
func (b *Bot) startUpdateDialog(ctx context.Context, chatID int64, bookingID int64) {
	s := b.getSession(chatID)
	if s.isBusy() {
		return
	}

	_, _, _, list := s.snapshot()
	booking, ok := service.Select(bookingID, list)
	if !ok {
		b.logger.Warn().Int64("chat_id", chatID).Int64("booking_id", bookingID).Msg("Edit requested for a booking not on the page")
		return
	}

	users, services, ok := b.fetchReferenceData(ctx, chatID)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"booking_id":     booking.ID,
		"event_date":     booking.EventDate,
		"event_time":     booking.EventTime,
		"event_location": booking.EventLocation,
		"status":         booking.Status,
		"user_names":     userNames(users),
		"service_names":  serviceNames(services),
	}
	if booking.User != nil {
		data["user_id"] = booking.User.ID
	}
	if booking.Service != nil {
		data["service_id"] = booking.Service.ID
	}

	if err := b.stateService.SetDialogState(ctx, chatID, stepUpdateMenu, data); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to open update dialog")
		b.sendMessage(chatID, msgGenericError)
		return
	}

	state, err := b.stateService.GetDialogState(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, msgGenericError)
		return
	}
	b.sendUpdateMenu(chatID, state, "")
}

// startDeleteDialog asks for confirmation before removing a booking.
func (b *Bot) startDeleteDialog(ctx context.Context, chatID int64, bookingID int64) {
	s := b.getSession(chatID)
	if s.isBusy() {
		return
	}

	_, _, _, list := s.snapshot()
	booking, ok := service.Select(bookingID, list)
	if !ok {
		b.logger.Warn().Int64("chat_id", chatID).Int64("booking_id", bookingID).Msg("Delete requested for a booking not on the page")
		return
	}

	if err := b.stateService.SetDialogState(ctx, chatID, stepDeleteConfirm, map[string]interface{}{
		"booking_id": booking.ID,
	}); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to open delete dialog")
		b.sendMessage(chatID, msgGenericError)
		return
	}

	customer := format.NotAvailable
	if booking.User != nil && booking.User.Username != "" {
		customer = booking.User.Username
	}
	svc := format.UnknownService
	if booking.Service != nil && booking.Service.Name != "" {
		svc = booking.Service.Name
	}

	text := fmt.Sprintf("Delete booking *#%d*?\n%s — %s, %s", booking.ID, customer, svc, booking.EventDate)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", "confirm:delete"),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "cancel"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send delete confirmation")
	}
}

// handleDialogCallback routes picker and confirm buttons by the current
// dialog step.
func (b *Bot) handleDialogCallback(ctx context.Context, chatID int64, state *models.DialogState, action string, arg string) {
	switch state.CurrentStep {
	case stepCreateUser:
		if action == "usr" {
			id, _ := strconv.ParseInt(arg, 10, 64)
			b.advanceDialog(ctx, chatID, state, "user_id", id, stepCreateService)
			b.promptCreateService(chatID, state)
		}
	case stepCreateService:
		if action == "svc" {
			id, _ := strconv.ParseInt(arg, 10, 64)
			b.advanceDialog(ctx, chatID, state, "service_id", id, stepCreateDate)
			b.sendMessage(chatID, "Event date? (YYYY-MM-DD)")
		}
	case stepCreateStatus:
		if action == "bstatus" && models.IsValidStatus(arg) {
			b.advanceDialog(ctx, chatID, state, "status", arg, stepCreateConfirm)
			b.sendCreateSummary(chatID, state, "")
		}
	case stepCreateConfirm:
		if action == "confirm" && arg == "create" {
			b.submitCreate(ctx, chatID, state)
		}
	case stepUpdateMenu:
		b.handleUpdateMenuCallback(ctx, chatID, state, action, arg)
	case stepUpdateUser:
		if action == "usr" {
			id, _ := strconv.ParseInt(arg, 10, 64)
			b.advanceDialog(ctx, chatID, state, "user_id", id, stepUpdateMenu)
			b.sendUpdateMenu(chatID, state, "")
		}
	case stepUpdateService:
		if action == "svc" {
			id, _ := strconv.ParseInt(arg, 10, 64)
			b.advanceDialog(ctx, chatID, state, "service_id", id, stepUpdateMenu)
			b.sendUpdateMenu(chatID, state, "")
		}
	case stepUpdateStatus:
		if action == "bstatus" && models.IsValidStatus(arg) {
			b.advanceDialog(ctx, chatID, state, "status", arg, stepUpdateMenu)
			b.sendUpdateMenu(chatID, state, "")
		}
	case stepDeleteConfirm:
		if action == "confirm" && arg == "delete" {
			b.submitDelete(ctx, chatID, state)
		}
	}
}

// handleDialogText consumes free-text answers for the steps that take one.
func (b *Bot) handleDialogText(ctx context.Context, chatID int64, state *models.DialogState, text string) {
	switch state.CurrentStep {
	case stepCreateDate, stepUpdateDate:
		if _, err := time.Parse("2006-01-02", text); err != nil {
			b.sendMessage(chatID, msgInvalidDate)
			return
		}
		if state.CurrentStep == stepCreateDate {
			b.advanceDialog(ctx, chatID, state, "event_date", text, stepCreateTime)
			b.sendMessage(chatID, "Event time? (HH:MM)")
		} else {
			b.advanceDialog(ctx, chatID, state, "event_date", text, stepUpdateMenu)
			b.sendUpdateMenu(chatID, state, "")
		}
	case stepCreateTime, stepUpdateTime:
		if _, err := time.Parse("15:04", text); err != nil {
			b.sendMessage(chatID, msgInvalidTime)
			return
		}
		if state.CurrentStep == stepCreateTime {
			b.advanceDialog(ctx, chatID, state, "event_time", text+":00", stepCreateLocation)
			b.sendMessage(chatID, "Event location?")
		} else {
			b.advanceDialog(ctx, chatID, state, "event_time", text+":00", stepUpdateMenu)
			b.sendUpdateMenu(chatID, state, "")
		}
	case stepCreateLocation:
		b.advanceDialog(ctx, chatID, state, "event_location", text, stepCreateStatus)
		b.promptStatusPicker(chatID, "Booking status:")
	case stepUpdateLocation:
		b.advanceDialog(ctx, chatID, state, "event_location", text, stepUpdateMenu)
		b.sendUpdateMenu(chatID, state, "")
	case stepSearchInput:
		b.handleSearchInput(ctx, chatID, text)
	case stepReviewComment:
		b.handleReviewComment(ctx, chatID, state, text)
	}
}

func (b *Bot) handleUpdateMenuCallback(ctx context.Context, chatID int64, state *models.DialogState, action, arg string) {
	if action == "confirm" && arg == "update" {
		b.submitUpdate(ctx, chatID, state)
		return
	}
	if action != "fld" {
		return
	}

	switch arg {
	case "user":
		users, _, ok := b.fetchReferenceData(ctx, chatID)
		if !ok {
			return
		}
		b.setStep(ctx, chatID, state, stepUpdateUser)
		b.sendUserPicker(chatID, users, "Pick a customer:")
	case "service":
		_, services, ok := b.fetchReferenceData(ctx, chatID)
		if !ok {
			return
		}
		b.setStep(ctx, chatID, state, stepUpdateService)
		b.sendServicePicker(chatID, services, "Pick a service:")
	case "date":
		b.setStep(ctx, chatID, state, stepUpdateDate)
		b.sendMessage(chatID, "Event date? (YYYY-MM-DD)")
	case "time":
		b.setStep(ctx, chatID, state, stepUpdateTime)
		b.sendMessage(chatID, "Event time? (HH:MM)")
	case "location":
		b.setStep(ctx, chatID, state, stepUpdateLocation)
		b.sendMessage(chatID, "Event location?")
	case "status":
		b.setStep(ctx, chatID, state, stepUpdateStatus)
		b.promptStatusPicker(chatID, "Booking status:")
	}
}

func (b *Bot) submitCreate(ctx context.Context, chatID int64, state *models.DialogState) {
	s := b.getSession(chatID)
	if s.isBusy() {
		return
	}

	payload := payloadFromState(state)
	err := b.actions.Create(ctx, chatID, payload, b.actionHooks(ctx, chatID, s, models.ActionCreate))
	if err != nil {
		// Диалог остаётся открытым, ошибка показывается внутри него.
		b.sendCreateSummary(chatID, state, "⚠️ Failed to create booking. Check the fields and try again.")
		return
	}
}

func (b *Bot) submitUpdate(ctx context.Context, chatID int64, state *models.DialogState) {
	s := b.getSession(chatID)
	if s.isBusy() {
		return
	}

	id := state.GetInt64("booking_id")
	payload := payloadFromState(state)
	b.actions.ConfirmUpdate(ctx, id, chatID, payload, b.actionHooks(ctx, chatID, s, models.ActionUpdate))
}

func (b *Bot) submitDelete(ctx context.Context, chatID int64, state *models.DialogState) {
	s := b.getSession(chatID)
	if s.isBusy() {
		return
	}

	id := state.GetInt64("booking_id")
	_, _, _, list := s.snapshot()
	b.actions.ConfirmDelete(ctx, id, chatID, list, b.actionHooks(ctx, chatID, s, models.ActionDelete))
}

// actionHooks adapts this chat's session to the fixed contract the confirm
// helpers expect. The mutation counter ticks only on a success notification,
// so failed round-trips are never counted.
func (b *Bot) actionHooks(ctx context.Context, chatID int64, s *pageSession, action string) service.ActionHooks {
	return service.ActionHooks{
		Refresh: func(ctx context.Context) {
			b.loadPage(ctx, chatID, s)
		},
		SetList: func(list []models.Booking) {
			s.mu.Lock()
			s.bookings = list
			if s.total > 0 {
				s.total--
			}
			s.mu.Unlock()
			b.renderPage(chatID, s)
		},
		Notify: func(n service.Notification) {
			if n.Severity == service.SeveritySuccess && b.metrics != nil {
				b.metrics.BookingsMutated.WithLabelValues(action).Inc()
			}
			b.notify(chatID, n)
		},
		Close: func() {
			if err := b.stateService.ClearDialogState(ctx, chatID); err != nil {
				b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to close dialog")
			}
		},
		SetBusy: s.setBusy,
	}
}

func (b *Bot) fetchReferenceData(ctx context.Context, chatID int64) ([]models.User, []models.Service, bool) {
	users, err := b.bookingAPI.ListUsers(ctx)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load users")
		b.sendMessage(chatID, msgLoadRefDataFail)
		return nil, nil, false
	}
	services, err := b.bookingAPI.ListServices(ctx)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load services")
		b.sendMessage(chatID, msgLoadRefDataFail)
		return nil, nil, false
	}
	return users, services, true
}

func (b *Bot) advanceDialog(ctx context.Context, chatID int64, state *models.DialogState, key string, value interface{}, nextStep string) {
	state.Set(key, value)
	state.CurrentStep = nextStep
	if err := b.stateService.SetDialogState(ctx, chatID, nextStep, state.Data); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("step", nextStep).Msg("Failed to advance dialog")
	}
}

func (b *Bot) setStep(ctx context.Context, chatID int64, state *models.DialogState, step string) {
	state.CurrentStep = step
	if err := b.stateService.SetDialogState(ctx, chatID, step, state.Data); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("step", step).Msg("Failed to switch dialog step")
	}
}

func (b *Bot) sendUserPicker(chatID int64, users []models.User, title string) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, u := range users {
		label := u.Username
		if label == "" {
			label = fmt.Sprintf("user #%d", u.ID)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("usr:%d", u.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", "cancel"),
	))
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, title, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send user picker")
	}
}

func (b *Bot) sendServicePicker(chatID int64, services []models.Service, title string) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		label := svc.Name
		if label == "" {
			label = format.UnknownService
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("svc:%d", svc.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", "cancel"),
	))
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, title, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send service picker")
	}
}

// promptCreateService rebuilds the service picker from the reference data
// captured when the dialog opened, without a second fetch.
func (b *Bot) promptCreateService(chatID int64, state *models.DialogState) {
	b.sendServicePicker(chatID, servicesFromState(state), "Pick a service:")
}

func (b *Bot) promptStatusPicker(chatID int64, title string) {
	var row []tgbotapi.InlineKeyboardButton
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, st := range models.AllStatuses {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(statusIcon(st)+" "+st, "bstatus:"+st))
		if (i+1)%3 == 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, title, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send status picker")
	}
}

func (b *Bot) sendCreateSummary(chatID int64, state *models.DialogState, errLine string) {
	text := "*New booking*\n" + summaryLines(state)
	if errLine != "" {
		text += "\n" + errLine
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Create", "confirm:create"),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "cancel"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send create summary")
	}
}

func (b *Bot) sendUpdateMenu(chatID int64, state *models.DialogState, errLine string) {
	text := fmt.Sprintf("*Edit booking #%d*\n", state.GetInt64("booking_id")) + summaryLines(state)
	if errLine != "" {
		text += "\n" + errLine
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Customer", "fld:user"),
			tgbotapi.NewInlineKeyboardButtonData("🎬 Service", "fld:service"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Date", "fld:date"),
			tgbotapi.NewInlineKeyboardButtonData("🕐 Time", "fld:time"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📍 Location", "fld:location"),
			tgbotapi.NewInlineKeyboardButtonData("🏷 Status", "fld:status"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", "confirm:update"),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "cancel"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send update menu")
	}
}

func summaryLines(state *models.DialogState) string {
	userName := lookupName(state, "user_names", state.GetInt64("user_id"))
	serviceName := lookupName(state, "service_names", state.GetInt64("service_id"))
	if serviceName == "" {
		serviceName = format.UnknownService
	}
	if userName == "" {
		userName = format.NotAvailable
	}
	return fmt.Sprintf(
		"👤 %s\n🎬 %s\n📅 %s  🕐 %s\n📍 %s\n🏷 %s",
		userName,
		serviceName,
		orNA(state.GetString("event_date")),
		orNA(state.GetString("event_time")),
		orNA(state.GetString("event_location")),
		orNA(state.GetString("status")),
	)
}

// lookupName resolves an id against the name map captured when the picker
// was built. JSON round-trips turn the map into map[string]interface{}.
func lookupName(state *models.DialogState, mapKey string, id int64) string {
	raw, ok := state.Data[mapKey]
	if !ok {
		return ""
	}
	key := strconv.FormatInt(id, 10)
	switch m := raw.(type) {
	case map[string]string:
		return m[key]
	case map[string]interface{}:
		if v, ok := m[key].(string); ok {
			return v
		}
	}
	return ""
}

func orNA(s string) string {
	if s == "" {
		return format.NotAvailable
	}
	return s
}

func payloadFromState(state *models.DialogState) models.BookingPayload {
	return models.BookingPayload{
		UserID:        state.GetInt64("user_id"),
		ServiceID:     state.GetInt64("service_id"),
		EventDate:     state.GetString("event_date"),
		EventTime:     state.GetString("event_time"),
		EventLocation: state.GetString("event_location"),
		Status:        state.GetString("status"),
	}
}

func userNames(users []models.User) map[string]string {
	m := make(map[string]string, len(users))
	for _, u := range users {
		m[strconv.FormatInt(u.ID, 10)] = u.Username
	}
	return m
}

func serviceNames(services []models.Service) map[string]string {
	m := make(map[string]string, len(services))
	for _, svc := range services {
		m[strconv.FormatInt(svc.ID, 10)] = svc.Name
	}
	return m
}

func serviceOrder(services []models.Service) []int64 {
	ids := make([]int64, 0, len(services))
	for _, svc := range services {
		ids = append(ids, svc.ID)
	}
	return ids
}

// servicesFromState restores the ordered service list stored at dialog
// open. После JSON round-trip срез приходит как []interface{} из float64.
func servicesFromState(state *models.DialogState) []models.Service {
	var ids []int64
	switch raw := state.Data["service_order"].(type) {
	case []int64:
		ids = raw
	case []interface{}:
		for _, v := range raw {
			if f, ok := v.(float64); ok {
				ids = append(ids, int64(f))
			}
		}
	}

	out := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Service{ID: id, Name: lookupName(state, "service_names", id)})
	}
	return out
}
