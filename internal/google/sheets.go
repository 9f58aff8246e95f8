// Package google mirrors the completed-bookings slice into a Google
// spreadsheet for stakeholders who live in Sheets rather than the desk.
package google

import (
	"context"
	"fmt"
	"os"

	"mediadesk/internal/format"
	"mediadesk/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type SheetsService struct {
	service         *sheets.Service
	bookingsSheetID string
}

// NewSheetsService builds a Sheets client from a service-account
// credentials file.
func NewSheetsService(ctx context.Context, credentialsFile, bookingsSheetID string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &SheetsService{
		service:         srv,
		bookingsSheetID: bookingsSheetID,
	}, nil
}

// TestConnection reads the first cell to verify access.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, "Bookings!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ReplaceBookingsSheet clears and rewrites the Bookings sheet with the
// given slice, in display shape.
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error {
	display := format.Bookings(bookings)

	values := [][]interface{}{
		{"#", "ID", "Customer", "Service", "Location", "Event Date", "Event Time", "Price", "Status", "Booked At", "Contact"},
	}
	for _, d := range display {
		values = append(values, []interface{}{
			d.SerialNo, d.ID, d.Customer, d.Service, d.Location,
			d.EventDate, d.EventTime, d.Price, d.Status, d.Booked, d.Contact,
		})
	}

	clearCall := s.service.Spreadsheets.Values.Clear(s.bookingsSheetID, "Bookings!A:K", &sheets.ClearValuesRequest{})
	if _, err := clearCall.Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear bookings sheet: %w", err)
	}

	rangeData := fmt.Sprintf("Bookings!A1:K%d", len(values))
	valueRange := &sheets.ValueRange{Values: values}

	_, err := s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update bookings sheet: %w", err)
	}
	return nil
}
