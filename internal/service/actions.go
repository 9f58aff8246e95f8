package service

import (
	"context"
	"fmt"

	"mediadesk/internal/domain"
	"mediadesk/internal/events"
	"mediadesk/internal/models"

	"github.com/rs/zerolog"
)

// Notification severities surfaced to the operator.
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Notification is a user-facing outcome message for a booking action.
type Notification struct {
	Severity string
	Text     string
}

// ActionHooks is the fixed contract every page supplies to the shared
// confirm helpers. Each page adapts to these signatures; the helpers never
// accept ad hoc handler shapes.
type ActionHooks struct {
	// Refresh triggers a full refetch of the page's slice.
	Refresh func(ctx context.Context)
	// SetList replaces the page's local list copy.
	SetList func(list []models.Booking)
	// Notify surfaces an outcome to the operator.
	Notify func(n Notification)
	// Close closes the open dialog.
	Close func()
	// SetBusy toggles the busy flag guarding re-submission.
	SetBusy func(busy bool)
}

// BookingActions implements the shared update/delete round-trips behind the
// status pages.
type BookingActions struct {
	api     domain.BookingAPI
	journal domain.ActionJournal
	events  domain.EventPublisher
	logger  *zerolog.Logger
}

func NewBookingActions(api domain.BookingAPI, journal domain.ActionJournal, bus domain.EventPublisher, logger *zerolog.Logger) *BookingActions {
	return &BookingActions{
		api:     api,
		journal: journal,
		events:  bus,
		logger:  logger,
	}
}

// Select locates a booking by identifier in a page-scoped list. Callers
// must pass a bare id; they extract it from whatever object they hold.
// The second return is false when no entry matches, in which case no dialog
// should be opened.
func Select(targetID int64, list []models.Booking) (models.Booking, bool) {
	for _, b := range list {
		if b.ID == targetID {
			return b, true
		}
	}
	return models.Booking{}, false
}

// Create performs the create round-trip. Unlike update and delete the error
// is returned, so the dialog can stay open and show it inline instead of
// closing.
func (a *BookingActions) Create(ctx context.Context, actorID int64, payload models.BookingPayload, hooks ActionHooks) error {
	hooks.SetBusy(true)
	defer hooks.SetBusy(false)

	err := a.api.CreateBooking(ctx, payload)
	a.record(ctx, models.ActionCreate, 0, actorID, err)

	if err != nil {
		a.logger.Error().Err(err).Msg("booking create failed")
		return err
	}

	_ = a.events.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		Status:  payload.Status,
		ActorID: actorID,
	})

	hooks.Refresh(ctx)
	hooks.Notify(Notification{Severity: SeveritySuccess, Text: "Booking created."})
	hooks.Close()
	return nil
}

// ConfirmUpdate performs the update round-trip: busy flag on, PUT to the
// backend, full refresh, notification, dialog close. The busy flag is
// cleared on every path, success or failure. Failures are local: they are
// logged, journaled and turned into an error notification, never returned.
func (a *BookingActions) ConfirmUpdate(ctx context.Context, id int64, actorID int64, payload models.BookingPayload, hooks ActionHooks) {
	hooks.SetBusy(true)
	defer hooks.SetBusy(false)

	err := a.api.UpdateBooking(ctx, id, payload)
	a.record(ctx, models.ActionUpdate, id, actorID, err)

	if err != nil {
		a.logger.Error().Err(err).Int64("booking_id", id).Msg("booking update failed")
		hooks.Notify(Notification{Severity: SeverityError, Text: "Failed to update booking."})
		hooks.Close()
		return
	}

	_ = a.events.PublishJSON(events.EventBookingUpdated, events.BookingEventPayload{
		BookingID: id,
		Status:    payload.Status,
		ActorID:   actorID,
	})

	hooks.Refresh(ctx)
	hooks.Notify(Notification{Severity: SeveritySuccess, Text: "Booking updated."})
	hooks.Close()
}

// ConfirmDelete performs the delete round-trip. On success exactly the
// matching entry is spliced out of the page's local copy, preserving the
// relative order of the rest; on failure the list is left untouched. The
// busy flag is cleared unconditionally.
func (a *BookingActions) ConfirmDelete(ctx context.Context, id int64, actorID int64, list []models.Booking, hooks ActionHooks) {
	hooks.SetBusy(true)
	defer hooks.SetBusy(false)

	err := a.api.DeleteBooking(ctx, id)
	a.record(ctx, models.ActionDelete, id, actorID, err)

	if err != nil {
		a.logger.Error().Err(err).Int64("booking_id", id).Msg("booking delete failed")
		hooks.Notify(Notification{Severity: SeverityError, Text: "Failed to delete booking."})
		hooks.Close()
		return
	}

	remaining := make([]models.Booking, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			remaining = append(remaining, b)
		}
	}
	hooks.SetList(remaining)

	_ = a.events.PublishJSON(events.EventBookingDeleted, events.BookingEventPayload{
		BookingID: id,
		ActorID:   actorID,
	})

	hooks.Notify(Notification{Severity: SeveritySuccess, Text: fmt.Sprintf("Booking #%d deleted.", id)})
	hooks.Close()
}

func (a *BookingActions) record(ctx context.Context, action string, bookingID, actorID int64, opErr error) {
	if a.journal == nil {
		return
	}
	entry := models.JournalEntry{
		Action:    action,
		BookingID: bookingID,
		ActorID:   actorID,
		Outcome:   models.OutcomeOK,
	}
	if opErr != nil {
		entry.Outcome = models.OutcomeError
		entry.Detail = opErr.Error()
	}
	if err := a.journal.Record(ctx, entry); err != nil {
		a.logger.Error().Err(err).Msg("failed to journal action")
	}
}
