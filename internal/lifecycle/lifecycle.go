// Package lifecycle owns the ticket status state machine. The
// transition graph is strictly linear: each status has at most one
// successor and CLOSED has none. No skips, no reversals.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/navidmash/support-ticket-api/internal/domain"
)

// successors is the explicit transition table. CLOSED is present with
// a nil successor so the terminal case is modeled rather than implied
// by a missing key.
var successors = map[domain.TicketStatus]*domain.TicketStatus{
	domain.TicketStatusOpen:       statusPtr(domain.TicketStatusInProgress),
	domain.TicketStatusInProgress: statusPtr(domain.TicketStatusResolved),
	domain.TicketStatusResolved:   statusPtr(domain.TicketStatusClosed),
	domain.TicketStatusClosed:     nil,
}

func statusPtr(s domain.TicketStatus) *domain.TicketStatus {
	return &s
}

// NextStatus returns the unique legal successor of current, or false
// when current is terminal.
func NextStatus(current domain.TicketStatus) (domain.TicketStatus, bool) {
	next, ok := successors[current]
	if !ok || next == nil {
		return "", false
	}
	return *next, true
}

// NoOpTransitionError reports a request for the status the ticket
// already holds.
type NoOpTransitionError struct {
	Status domain.TicketStatus
}

func (e *NoOpTransitionError) Error() string {
	return fmt.Sprintf("ticket is already in status %q", e.Status)
}

// InvalidTransitionError reports a request that is not the unique
// successor of the current status. Allowed is nil when the current
// status is terminal.
type InvalidTransitionError struct {
	Current   domain.TicketStatus
	Requested domain.TicketStatus
	Allowed   *domain.TicketStatus
}

func (e *InvalidTransitionError) Error() string {
	next := "none"
	if e.Allowed != nil {
		next = string(*e.Allowed)
	}
	return fmt.Sprintf("invalid status transition: %s -> %s, allowed: %s -> %s",
		e.Current, e.Requested, e.Current, next)
}

// ValidateTransition decides whether requested is the legal successor
// of current. It is a total function of the two statuses alone:
// callers, ticket content and time never influence the outcome.
func ValidateTransition(current, requested domain.TicketStatus) error {
	if requested == current {
		return &NoOpTransitionError{Status: current}
	}
	allowed, ok := NextStatus(current)
	if !ok {
		return &InvalidTransitionError{Current: current, Requested: requested}
	}
	if requested != allowed {
		return &InvalidTransitionError{Current: current, Requested: requested, Allowed: &allowed}
	}
	return nil
}

// NewStatusLog builds the audit entry for a validated transition. The
// entry must be committed in the same atomic unit as the status
// update itself.
func NewStatusLog(ticketID int64, old, new domain.TicketStatus, changedBy int64, at time.Time) domain.TicketStatusLog {
	return domain.TicketStatusLog{
		TicketID:  ticketID,
		OldStatus: old,
		NewStatus: new,
		ChangedBy: changedBy,
		ChangedAt: at,
	}
}
