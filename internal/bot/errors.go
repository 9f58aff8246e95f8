package bot

// User-facing strings are fixed so tests and operators can rely on them.
const (
	msgGenericError     = "Something went wrong. Please try again later."
	msgLoadBookingsFail = "Failed to load bookings."
	msgLoadRefDataFail  = "Failed to load users and services."
	msgExportFail       = "Failed to export bookings."
	msgLoginRequired    = "You must be logged in to submit a review."
	msgAccessDenied     = "This command is available to managers only."
	msgInvalidDate      = "Invalid date. Please use the YYYY-MM-DD format."
	msgInvalidTime      = "Invalid time. Please use the HH:MM format."
)
