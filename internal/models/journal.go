package models

import "time"

// Journal action names.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

// Journal outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// JournalEntry is one locally recorded admin action.
type JournalEntry struct {
	ID        int64
	Action    string
	BookingID int64
	ActorID   int64
	Outcome   string
	Detail    string
	CreatedAt time.Time
}
