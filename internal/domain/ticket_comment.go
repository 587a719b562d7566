package domain

import "time"

// TicketComment is a comment on a ticket thread. Comments carry no
// lifecycle of their own; they are mutable only through an explicit
// edit by the author or a MANAGER.
type TicketComment struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Comment   string
	CreatedAt time.Time

	// Author is hydrated by the repository for response mapping.
	Author *User
}
