package domain

import "time"

// TicketStatusLog is an immutable audit record written once per
// successful status transition. Entries are append-only and live as
// long as their parent ticket.
type TicketStatusLog struct {
	ID        int64
	TicketID  int64
	OldStatus TicketStatus
	NewStatus TicketStatus
	ChangedBy int64
	ChangedAt time.Time
}
