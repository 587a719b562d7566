// Package policy is the single home for every role- and
// relationship-scoped access decision. Each function is pure: it takes
// the caller identity and the minimal resource state it needs, does no
// I/O, and returns allow/deny. Services translate a deny into a
// FORBIDDEN error; they never re-implement these rules inline.
package policy

import "github.com/navidmash/support-ticket-api/internal/domain"

// CanCreateTicket allows MANAGER and USER. SUPPORT handles tickets but
// never opens them.
func CanCreateTicket(role domain.Role) bool {
	return role == domain.RoleManager || role == domain.RoleUser
}

// CanViewTicket is the shared visibility predicate: MANAGER sees
// everything, SUPPORT sees tickets assigned to them, USER sees tickets
// they created.
func CanViewTicket(caller domain.Identity, ticket *domain.Ticket) bool {
	switch caller.Role {
	case domain.RoleManager:
		return true
	case domain.RoleSupport:
		return ticket.AssignedTo != nil && *ticket.AssignedTo == caller.UserID
	case domain.RoleUser:
		return ticket.CreatedBy == caller.UserID
	default:
		return false
	}
}

// CanAssignTicket gates the assignment operation by role only. The
// assignee-must-not-be-USER rule is the assignment rule's own check,
// applied after this one.
func CanAssignTicket(role domain.Role) bool {
	return role == domain.RoleManager || role == domain.RoleSupport
}

// CanUpdateStatus denies USER outright; SUPPORT additionally needs the
// ticket assigned to them. MANAGER is unrestricted.
func CanUpdateStatus(caller domain.Identity, ticket *domain.Ticket) bool {
	switch caller.Role {
	case domain.RoleManager:
		return true
	case domain.RoleSupport:
		return ticket.AssignedTo != nil && *ticket.AssignedTo == caller.UserID
	default:
		return false
	}
}

// CanDeleteTicket is MANAGER only.
func CanDeleteTicket(role domain.Role) bool {
	return role == domain.RoleManager
}

// CanManageUsers gates user creation and listing, MANAGER only.
func CanManageUsers(role domain.Role) bool {
	return role == domain.RoleManager
}

// CanCommentOnTicket mirrors ticket visibility: whoever may view a
// ticket may comment on it and list its comments.
func CanCommentOnTicket(caller domain.Identity, ticket *domain.Ticket) bool {
	return CanViewTicket(caller, ticket)
}

// CanModerateComment allows edit and delete for the comment author or
// any MANAGER, independent of ticket visibility.
func CanModerateComment(caller domain.Identity, comment *domain.TicketComment) bool {
	return caller.Role == domain.RoleManager || comment.UserID == caller.UserID
}
