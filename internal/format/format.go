// Package format projects raw backend booking records into the flattened
// shape the dashboard tables render.
package format

import "mediadesk/internal/models"

// Fallback literals used when a backend record misses an optional field.
const (
	UnknownService = "Unknown Service"
	NotAvailable   = "N/A"
)

// Bookings maps raw records into display records, in order, one for one.
// Every optional field maps to a fixed fallback; the function never panics
// on missing nested references and has no side effects on its input.
func Bookings(raw []models.Booking) []models.DisplayBooking {
	out := make([]models.DisplayBooking, 0, len(raw))
	for i, b := range raw {
		d := models.DisplayBooking{
			ID:        b.ID,
			SerialNo:  i + 1,
			Service:   UnknownService,
			Location:  NotAvailable,
			EventDate: NotAvailable,
			EventTime: NotAvailable,
			Booked:    NotAvailable,
			Contact:   NotAvailable,
			Status:    b.Status,
		}
		if b.User != nil {
			d.Customer = b.User.Username
		}
		if b.Service != nil {
			if b.Service.Name != "" {
				d.Service = b.Service.Name
			}
			d.Price = b.Service.Price
		}
		if b.EventLocation != "" {
			d.Location = b.EventLocation
		}
		if b.EventDate != "" {
			d.EventDate = b.EventDate
		}
		if b.EventTime != "" {
			d.EventTime = b.EventTime
		}
		if b.BookedAt != "" {
			d.Booked = b.BookedAt
		}
		if b.Phone != "" {
			d.Contact = b.Phone
		}
		out = append(out, d)
	}
	return out
}
