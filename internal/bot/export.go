package bot

import (
	"context"
	"os"

	"mediadesk/internal/backend"
	"mediadesk/internal/events"
	"mediadesk/internal/export"
	"mediadesk/internal/metrics"
	"mediadesk/internal/models"
)

// exportBookings replays the page's current filters against the export
// endpoint (which ignores pagination), writes an xlsx and sends it back as a
// document.
func (b *Bot) exportBookings(ctx context.Context, chatID int64) {
	s := b.getSession(chatID)

	s.mu.Lock()
	query := backend.BookingQuery{
		Status:   s.status,
		Username: s.filterUsername,
		Service:  s.filterService,
		Location: s.filterLocation,
	}
	s.mu.Unlock()

	b.sendMessage(chatID, "⏳ Preparing export...")

	bookings, err := b.bookingAPI.ExportBookings(ctx, query)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Export fetch failed")
		b.recordExport(ctx, chatID, err)
		b.sendMessage(chatID, msgExportFail)
		return
	}

	path, err := export.WriteFile(b.config.Exports.Path, bookings)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Export file write failed")
		b.recordExport(ctx, chatID, err)
		b.sendMessage(chatID, msgExportFail)
		return
	}
	defer os.Remove(path)

	if err := b.tgService.SendDocument(chatID, path); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Export send failed")
		b.recordExport(ctx, chatID, err)
		b.sendMessage(chatID, msgExportFail)
		return
	}

	b.recordExport(ctx, chatID, nil)
	metrics.IncExport()
	_ = b.eventBus.PublishJSON(events.EventExportProduced, map[string]interface{}{
		"chat_id": chatID,
		"status":  query.Status,
		"rows":    len(bookings),
	})

	b.logger.Info().Int64("chat_id", chatID).Int("rows", len(bookings)).Msg("Export sent")
}

func (b *Bot) recordExport(ctx context.Context, chatID int64, opErr error) {
	if b.journal == nil {
		return
	}
	entry := models.JournalEntry{
		Action:  models.ActionExport,
		ActorID: chatID,
		Outcome: models.OutcomeOK,
	}
	if opErr != nil {
		entry.Outcome = models.OutcomeError
		entry.Detail = opErr.Error()
	}
	if err := b.journal.Record(ctx, entry); err != nil {
		b.logger.Error().Err(err).Msg("Failed to journal export")
	}
}
