package bot

import (
	"strings"
	"testing"

	"mediadesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, totalPages(0, 5))
	assert.Equal(t, 1, totalPages(5, 5))
	assert.Equal(t, 2, totalPages(6, 5))
	assert.Equal(t, 5, totalPages(23, 5))
	assert.Equal(t, 1, totalPages(10, 0))
}

func TestRenderBookingsTableEmptyState(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   string
	}{
		{"pending", models.StatusPending, "No pending bookings found"},
		{"completed", models.StatusCompleted, "No completed bookings found"},
		{"all statuses", "", "No bookings found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, _ := renderBookingsTable(tableParams{
				Status:   tt.status,
				Page:     1,
				PageSize: 5,
			})
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestRenderBookingsTableLoading(t *testing.T) {
	text, _ := renderBookingsTable(tableParams{
		Status:  models.StatusPending,
		Page:    1,
		Loading: true,
	})
	assert.Contains(t, text, "Loading")
	assert.NotContains(t, text, "No pending bookings found")
}

func TestRenderBookingsTableCollapsedAndExpandedRows(t *testing.T) {
	bookings := []models.DisplayBooking{
		{ID: 7, SerialNo: 1, Customer: "anna", Service: "Wedding", Location: "Moscow",
			EventDate: "2026-09-01", EventTime: "14:00:00", Price: 1500, Status: models.StatusPaid,
			Booked: "2026-08-01", Contact: "+7 900 000-00-00"},
		{ID: 8, SerialNo: 2, Customer: "boris", Service: "Portrait", Location: "Kazan",
			EventDate: "2026-09-03", EventTime: "10:00:00", Price: 500, Status: models.StatusPaid,
			Booked: "2026-08-02", Contact: "+7 900 111-11-11"},
	}

	collapsed, _ := renderBookingsTable(tableParams{
		Status: models.StatusPaid, Page: 1, PageSize: 5, Total: 2,
		Bookings: bookings, Expanded: map[int64]bool{},
	})
	assert.Contains(t, collapsed, "anna")
	assert.NotContains(t, collapsed, "+7 900 000-00-00")

	expanded, _ := renderBookingsTable(tableParams{
		Status: models.StatusPaid, Page: 1, PageSize: 5, Total: 2,
		Bookings: bookings, Expanded: map[int64]bool{7: true},
	})
	assert.Contains(t, expanded, "+7 900 000-00-00")
	// only the toggled row is expanded
	assert.NotContains(t, expanded, "+7 900 111-11-11")
}

func TestRenderBookingsTableKeyboard(t *testing.T) {
	bookings := []models.DisplayBooking{
		{ID: 7, SerialNo: 1, Customer: "anna", Service: "Wedding", Status: models.StatusCompleted},
	}

	_, keyboard := renderBookingsTable(tableParams{
		Status: models.StatusCompleted, Page: 2, PageSize: 5, Total: 23,
		Bookings: bookings, Expanded: map[int64]bool{},
	})

	var callbacks []string
	for _, row := range keyboard.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				callbacks = append(callbacks, *btn.CallbackData)
			}
		}
	}
	joined := strings.Join(callbacks, " ")

	assert.Contains(t, joined, "row:7")
	assert.Contains(t, joined, "edit:7")
	assert.Contains(t, joined, "del:7")
	assert.Contains(t, joined, "page:completed:1")
	assert.Contains(t, joined, "page:completed:3")
	// completed page carries search, export and page-size controls
	assert.Contains(t, joined, "search")
	assert.Contains(t, joined, "export")
	assert.Contains(t, joined, "psize")
	assert.Contains(t, joined, "clearf")
}

func TestRenderBookingsTablePendingHasNoCompletedExtras(t *testing.T) {
	_, keyboard := renderBookingsTable(tableParams{
		Status: models.StatusPending, Page: 1, PageSize: 5, Total: 1,
		Bookings: []models.DisplayBooking{{ID: 1, SerialNo: 1, Customer: "anna", Service: "Wedding", Status: models.StatusPending}},
		Expanded: map[int64]bool{},
	})

	for _, row := range keyboard.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				assert.NotEqual(t, "export", *btn.CallbackData)
				assert.NotEqual(t, "psize", *btn.CallbackData)
			}
		}
	}
}
