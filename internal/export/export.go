// Package export renders booking slices into xlsx workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mediadesk/internal/format"
	"mediadesk/internal/models"

	"github.com/xuri/excelize/v2"
)

// Headers is the column layout of the exported workbook.
var Headers = []string{
	"#", "ID", "Customer", "Service", "Location",
	"Event Date", "Event Time", "Price", "Status", "Booked", "Contact",
}

const sheetName = "Bookings"

// WriteFile renders bookings into a timestamped xlsx under dir and returns
// the file path.
func WriteFile(dir string, bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, d := range format.Bookings(bookings) {
		values := []interface{}{
			d.SerialNo, d.ID, d.Customer, d.Service, d.Location,
			d.EventDate, d.EventTime, d.Price, d.Status, d.Booked, d.Contact,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return "", fmt.Errorf("write row %d: %w", rowIdx+1, err)
			}
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_15-04-05")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save export: %w", err)
	}
	return path, nil
}
